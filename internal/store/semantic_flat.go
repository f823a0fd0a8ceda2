package store

import "crypto/sha256"

// FlatSemantic is the default Semantic plugin: a name maps to the
// 32-byte SHA-256 of its bytes, giving every object a fixed-width key
// with no namespace structure (spec §4.8's minimal semantic).
type FlatSemantic struct{}

// NewFlatSemantic returns a FlatSemantic plugin instance.
func NewFlatSemantic() SemanticPlugin { return &FlatSemantic{} }

func (s *FlatSemantic) Init() error   { return nil }
func (s *FlatSemantic) Load() error   { return nil }
func (s *FlatSemantic) Unload() error { return nil }
func (s *FlatSemantic) Sync() error   { return nil }

func (s *FlatSemantic) KeyFor(name []byte) ([]byte, error) {
	sum := sha256.Sum256(name)
	return sum[:], nil
}

// FlatSemanticUUID is the plugin-identifying UUID stamped by the
// Format plugin when a device is formatted for the flat semantic.
var FlatSemanticUUID = mustUUID("a1e6c9c0-4f3d-4b2a-9c1e-2d7a5f8b6c10")
