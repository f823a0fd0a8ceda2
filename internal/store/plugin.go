// Package store implements the pluggable object store: the Semantic,
// Key, Object, Space, Device and Format plugin families, the object
// cache, and the transaction/atom commit model (spec §4.8-§4.9).
package store

import (
	"github.com/google/uuid"
)

// Plugin is the base contract every plugin family embeds, mirroring the
// teacher's Backend interface shape: a small lifecycle surface the
// store calls at mount/unmount time, with all domain-specific behavior
// living in the family-specific interfaces below.
type Plugin interface {
	Init() error
	Load() error
	Unload() error
	Sync() error
}

// SemanticPlugin maps a user-supplied name to the 32-byte key the rest
// of the store indexes objects by. The default flat semantic (see
// semantic_flat.go) hashes the name with SHA-256; other semantics could
// apply a directory-like namespace instead.
type SemanticPlugin interface {
	Plugin
	KeyFor(name []byte) ([]byte, error)
}

// KeyPlugin compares and orders the byte keys the semantic layer
// produces. Split out from SemanticPlugin because a key's comparison
// rule is a distinct concern from how it is derived (spec §4.8).
type KeyPlugin interface {
	Plugin
	Compare(a, b []byte) int
}

// ObjectPlugin implements one object kind's operation set: Counter,
// Bitmap, or any future kind. State is an opaque blob the object
// scaffolding never inspects, matching the teacher's own opaque,
// pluggable Backend payload.
type ObjectPlugin interface {
	Plugin
	// NewState returns a freshly initialized state blob for an object
	// of this kind.
	NewState() any
	// Apply executes op against state, returning the result atom to
	// push onto the transaction for eventual commit or rollback.
	Apply(state any, op Op) (Atom, error)
	// Revert undoes atom's effect on state, restoring the pre-apply
	// value recorded in the atom.
	Revert(state any, atom Atom)
}

// SpacePlugin allocates and frees extents of device address space for
// object bodies (spec §4.8 step 2's storage allocation).
type SpacePlugin interface {
	Plugin
	Alloc(size uint64) (offset uint64, err error)
	Free(offset, size uint64)
}

// DevicePlugin is the raw block I/O surface a Space plugin allocates
// against, generalizing the teacher's Backend ReadAt/WriteAt contract
// from disk sectors to arbitrary object-store extents.
type DevicePlugin interface {
	Plugin
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() int64
}

// FormatPlugin stamps and reads back the three plugin-identifying UUIDs
// (Semantic, Space, Key) a device carries once formatted. The interface
// does not check the UUIDs against registered plugins.
type FormatPlugin interface {
	Plugin
	Format(dev DevicePlugin, semantic, space, key uuid.UUID) error
	Probe(dev DevicePlugin) (semantic, space, key uuid.UUID, err error)
}

// ObjectPluginFactory constructs a fresh ObjectPlugin instance.
type ObjectPluginFactory func() ObjectPlugin

var objectPluginRegistry = map[uuid.UUID]ObjectPluginFactory{}

// RegisterObjectPlugin associates a plugin UUID with a constructor, the
// same registry-by-UUID indirection the format layer needs to resolve
// a stamped UUID back into a live plugin instance at mount time.
func RegisterObjectPlugin(id uuid.UUID, factory ObjectPluginFactory) {
	objectPluginRegistry[id] = factory
}

// NewObjectPlugin looks up and constructs the plugin registered under id.
func NewObjectPlugin(id uuid.UUID) (ObjectPlugin, bool) {
	factory, ok := objectPluginRegistry[id]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Well-known object plugin UUIDs, stamped into an object's on-disk
// format record so a later mount can resolve the right plugin without
// guessing from a type tag.
var (
	CounterPluginUUID = uuid.MustParse("3f9a2b70-6b8e-4c2a-9d3e-9a6f2e3b9c11")
	BitmapPluginUUID  = uuid.MustParse("7c1d4e20-2f5a-4a9b-8e6d-4b3a7c9f1e22")
)
