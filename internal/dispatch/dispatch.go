package dispatch

import (
	"context"
	"time"

	raleighsl "github.com/ehrlich-b/raleighsl"
	"github.com/ehrlich-b/raleighsl/internal/store"
)

// readOnlyOps are object operations that only observe state; the
// dispatcher takes the object's read gate for these instead of its
// write gate (spec §4.10 step: "acquire object lock (read for queries,
// write for mutations)").
var readOnlyOps = map[string]bool{"get": true, "test": true, "count": true}

// kindFactories maps a Create request's "kind" string to the
// ObjectPluginFactory the store should instantiate. Generalizes the
// teacher's registry-by-name pattern for backend construction.
var kindFactories = map[string]store.ObjectPluginFactory{
	"counter": store.NewCounterPlugin,
	"bitmap":  store.NewBitmapPlugin,
}

// Dispatcher routes decoded requests to a store.Store, one request at
// a time per call (the rpc.InboundReader's Exec callback is expected
// to invoke Handle once per completed frame).
type Dispatcher struct {
	st       *store.Store
	observer raleighsl.Observer
}

// New returns a Dispatcher bound to st. A nil observer is replaced with
// a no-op.
func New(st *store.Store, observer raleighsl.Observer) *Dispatcher {
	if observer == nil {
		observer = raleighsl.NoOpObserver{}
	}
	return &Dispatcher{st: st, observer: observer}
}

// Create handles an object-creation request.
func (d *Dispatcher) Create(req Request) Response {
	factory, ok := kindFactories[req.Kind]
	if !ok {
		return Response{ErrCode: string(raleighsl.CodeNotSupported)}
	}
	obj, err := d.st.Create(req.Name, factory)
	if err != nil {
		return errResponse(err, nil)
	}
	return Response{Result: obj.OID}
}

// Handle routes one operation request through the store: lookup the
// named object, then either apply a read-only op ("get", "test",
// "count") directly under the object's read gate, or apply a mutating
// op inside a fresh single-operation transaction and commit it (spec
// §4.10).
func (d *Dispatcher) Handle(req Request) Response {
	if req.OpKind == "create" {
		return d.Create(req)
	}

	start := time.Now()
	obj, err := d.st.Lookup(req.Name)
	if err != nil {
		return errResponse(err, nil)
	}
	defer d.st.Release(obj)

	readOnly := readOnlyOps[req.OpKind]
	if readOnly {
		obj.Sem.AcquireRead()
		defer obj.Sem.ReleaseRead()

		atom, err := obj.Plugin.Apply(obj.State, toOp(req))
		latency := uint64(time.Since(start).Nanoseconds())
		if err != nil {
			d.observer.ObserveGet(latency, false)
			return errResponse(err, obj)
		}
		d.observer.ObserveGet(latency, true)
		return atomResponse(atom)
	}

	tx := store.NewTransaction()
	if err := d.st.Operate(tx, obj, toOp(req)); err != nil {
		d.observer.ObserveSet(uint64(time.Since(start).Nanoseconds()), false)
		return errResponse(err, obj)
	}
	if err := tx.Commit(context.Background()); err != nil {
		tx.Rollback()
		d.observer.ObserveAbort()
		d.observer.ObserveCommit(uint64(time.Since(start).Nanoseconds()), false)
		return errResponse(err, obj)
	}
	latency := uint64(time.Since(start).Nanoseconds())
	d.observer.ObserveSet(latency, true)
	d.observer.ObserveCommit(latency, true)

	atom, _ := lastAtomFor(obj, req.OpKind)
	return atomResponse(atom)
}

func toOp(req Request) store.Op {
	args := make(map[string]any)
	if req.hasValue {
		args["value"] = req.Value
	}
	if req.hasDelta {
		args["delta"] = req.Delta
	}
	if req.hasExpected {
		args["expected"] = req.Expected
	}
	if req.hasBit {
		args["bit"] = req.Bit
	}
	return store.Op{Kind: req.OpKind, Args: args}
}

// lastAtomFor re-derives the result atom for a response after commit,
// since Transaction.Commit clears its entry log once applied. For a
// Counter the atom carries the committed value/cas; for a Bitmap it
// carries no result, so the response's Result is 0.
func lastAtomFor(obj *store.Object, kind string) (store.Atom, bool) {
	switch s := obj.State.(type) {
	case *store.CounterState:
		return store.Atom{Kind: kind, After: *s}, true
	case *store.BitmapState:
		return store.Atom{Kind: kind, After: nil}, true
	default:
		return store.Atom{}, false
	}
}

func atomResponse(atom store.Atom) Response {
	switch v := atom.After.(type) {
	case store.CounterState:
		return Response{Result: v.Value, CAS: v.CAS, HasCAS: true}
	case bool:
		if v {
			return Response{Result: 1}
		}
		return Response{Result: 0}
	case uint64:
		return Response{Result: v}
	default:
		return Response{}
	}
}

// errResponse reports err's code and, for a Counter object, the
// object's current (unchanged by the failed op) value/cas — required
// for a cas-mismatch response, whose caller still needs the live token
// to retry (spec §4.8 Counter table, scenario B).
func errResponse(err error, obj *store.Object) Response {
	resp := Response{ErrCode: string(raleighsl.CodeIO)}
	if e, ok := err.(*raleighsl.Error); ok {
		resp.ErrCode = string(e.Code)
	}
	if obj != nil {
		if s, ok := obj.State.(*store.CounterState); ok {
			resp.Result = s.Value
			resp.CAS = s.CAS
			resp.HasCAS = true
		}
	}
	return resp
}
