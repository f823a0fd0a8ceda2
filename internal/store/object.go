package store

import (
	"github.com/ehrlich-b/raleighsl/internal/concurrency"
)

// Object is one object-id's live state: its RwCSem concurrency gate,
// the plugin that interprets it, and the plugin-owned state blob the
// surrounding scaffolding never inspects (spec §4.8).
type Object struct {
	OID    uint64
	Plugin ObjectPlugin
	State  any
	Sem    concurrency.RwCSem

	// pending holds atoms applied but not yet committed or rolled
	// back, in application order.
	pending []Atom
}

// NewObject constructs an object of the given kind, already
// initialized via the plugin's NewState.
func NewObject(oid uint64, plugin ObjectPlugin) *Object {
	return &Object{
		OID:    oid,
		Plugin: plugin,
		State:  plugin.NewState(),
	}
}

// Op is a single operation request directed at an object, e.g. an
// incr/decr/cas on a Counter or a set/clear on a Bitmap. Kind and
// Args are plugin-specific; the store itself never interprets them.
type Op struct {
	Kind string
	Args map[string]any
}

// Atom is the record of one applied operation's effect, enough to
// reconstruct the pre-apply state during rollback. Plugins populate
// Before/After however suits their own Revert logic.
type Atom struct {
	Kind   string
	Before any
	After  any
}

// applyPending appends atom to the object's pending list in
// application order. transaction.go clears the list on commit and on
// rollback; rollback reverts atoms from the transaction's own entry log.
func (o *Object) applyPending(atom Atom) {
	o.pending = append(o.pending, atom)
}

// clearPending drops the pending atom list, called once a transaction
// has either committed or rolled back every entry.
func (o *Object) clearPending() {
	o.pending = nil
}
