package store

import (
	"sync/atomic"

	"github.com/ehrlich-b/raleighsl/internal/collections"
	raleighsl "github.com/ehrlich-b/raleighsl"
)

// Config wires together one store's plugin set (spec §4.8 step 1:
// mount). Object and Key/Semantic plugins are fixed per store; Device
// and Space back the object bodies; object kinds are resolved per-OID
// from the global registry in plugin.go.
type Config struct {
	Semantic SemanticPlugin
	Key      KeyPlugin
	Device   DevicePlugin
	Space    SpacePlugin
}

// Store is the object store orchestrator: it owns the name index, the
// live object cache, and the oid allocator, and walks every object
// operation through create/lookup/operate/commit/rollback/unlink
// (spec §4.8 steps 1-6). The object cache reuses collections.ChMap
// directly rather than a bespoke wrapper: its try-insert/lookup/
// remove-by-refcount contract already matches spec §4.9 verbatim.
type Store struct {
	cfg Config

	names   *collections.Skiplist[string, uint64]
	objects *collections.ChMap[*Object]
	nextOID atomic.Uint64
}

// Open mounts a store against cfg, initializing every plugin in turn.
// The name index is ordered by the configured Key plugin over the
// configured Semantic plugin's derived keys, not by the raw name
// string, so both plugin families are actually exercised on every
// create/lookup/unlink rather than carried as Init-only decoration
// (spec §4.8 step 1, §3's SemanticEntry{oid, key} ordered by key).
func Open(cfg Config) (*Store, error) {
	for _, p := range []Plugin{cfg.Semantic, cfg.Key, cfg.Device, cfg.Space} {
		if p == nil {
			continue
		}
		if err := p.Init(); err != nil {
			return nil, raleighsl.WrapError("store.open", raleighsl.CodeIO, err)
		}
	}
	return &Store{
		cfg: cfg,
		names: collections.NewSkiplist[string, uint64](func(a, b string) int {
			return cfg.Key.Compare([]byte(a), []byte(b))
		}),
		objects: collections.NewChMap[*Object](64),
	}, nil
}

// semanticKey runs name through the configured Semantic plugin, the
// same key every name-index lookup is ordered by (spec §3's
// key:[32]byte = sha256(name) for the default flat semantic).
func (s *Store) semanticKey(name string) (string, error) {
	key, err := s.cfg.Semantic.KeyFor([]byte(name))
	if err != nil {
		return "", err
	}
	return string(key), nil
}

// Create allocates a new object under name whose plugin is built by kind
// (an ObjectPluginFactory such as NewCounterPlugin), failing with
// CodeAlreadyExists if name is already bound (spec §4.8 step 2).
func (s *Store) Create(name string, kind ObjectPluginFactory) (*Object, error) {
	key, err := s.semanticKey(name)
	if err != nil {
		return nil, raleighsl.WrapError("store.create", raleighsl.CodeInvalidArgument, err)
	}
	if _, ok := s.names.Find(key); ok {
		return nil, raleighsl.NewError("store.create", raleighsl.CodeAlreadyExists, "name already bound: "+name)
	}
	plugin := kind()
	if err := plugin.Init(); err != nil {
		return nil, raleighsl.WrapError("store.create", raleighsl.CodeIO, err)
	}

	oid := s.nextOID.Add(1)
	obj := NewObject(oid, plugin)
	if !s.objects.TryInsert(oid, obj) {
		return nil, raleighsl.NewError("store.create", raleighsl.CodeAlreadyExists, "oid collision")
	}
	s.names.Insert(key, oid)
	return obj, nil
}

// Lookup resolves name to its live object, bumping the object cache's
// refcount; callers must pair a successful Lookup with Release (spec
// §4.8 step 3).
func (s *Store) Lookup(name string) (*Object, error) {
	key, err := s.semanticKey(name)
	if err != nil {
		return nil, raleighsl.WrapError("store.lookup", raleighsl.CodeInvalidArgument, err)
	}
	oid, ok := s.names.Find(key)
	if !ok {
		return nil, raleighsl.NewError("store.lookup", raleighsl.CodeNotFound, "no such name: "+name)
	}
	obj, ok := s.objects.Lookup(oid)
	if !ok {
		return nil, raleighsl.NewError("store.lookup", raleighsl.CodeNotFound, "dangling name: "+name)
	}
	return obj, nil
}

// Release drops the reference acquired by Lookup.
func (s *Store) Release(obj *Object) {
	s.objects.Release(obj.OID)
}

// Operate acquires obj's write gate, runs op through its plugin inside
// tx, and releases the gate. Write ops serialize per-object through
// RwCSem's WRITE bit; read-only "get"/"test"/"count" ops could instead
// take AcquireRead, left to the dispatcher's call classification
// (spec §4.8 step 4).
func (s *Store) Operate(tx *Transaction, obj *Object, op Op) error {
	obj.Sem.AcquireWrite()
	defer obj.Sem.ReleaseWrite()
	return tx.Apply(obj, op)
}

// Unlink removes name's binding and, if no other reference to the
// object remains, drops it from the cache entirely (spec §4.8 step 6).
func (s *Store) Unlink(name string) error {
	key, err := s.semanticKey(name)
	if err != nil {
		return raleighsl.WrapError("store.unlink", raleighsl.CodeInvalidArgument, err)
	}
	oid, ok := s.names.Find(key)
	if !ok {
		return raleighsl.NewError("store.unlink", raleighsl.CodeNotFound, "no such name: "+name)
	}
	s.names.Delete(key)
	if !s.objects.Remove(oid) {
		return raleighsl.NewError("store.unlink", raleighsl.CodeConcurrencyConflict, "object still referenced")
	}
	return nil
}

// Close unloads every plugin in the store's configuration.
func (s *Store) Close() error {
	for _, p := range []Plugin{s.cfg.Semantic, s.cfg.Key, s.cfg.Device, s.cfg.Space} {
		if p == nil {
			continue
		}
		if err := p.Unload(); err != nil {
			return raleighsl.WrapError("store.close", raleighsl.CodeIO, err)
		}
	}
	return nil
}
