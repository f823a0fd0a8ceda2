package store

import "bytes"

// FlatKey compares keys by plain byte-sequence ordering, the simplest
// KeyPlugin and the one every skiplist index in this package is built
// against (spec §4.8's minimal key plugin).
type FlatKey struct{}

// NewFlatKey returns a FlatKey plugin instance.
func NewFlatKey() KeyPlugin { return &FlatKey{} }

func (k *FlatKey) Init() error   { return nil }
func (k *FlatKey) Load() error   { return nil }
func (k *FlatKey) Unload() error { return nil }
func (k *FlatKey) Sync() error   { return nil }

func (k *FlatKey) Compare(a, b []byte) int { return bytes.Compare(a, b) }

// FlatKeyUUID is the plugin-identifying UUID stamped by the Format
// plugin when a device is formatted for the flat key ordering.
var FlatKeyUUID = mustUUID("b2f7d0d1-5a4e-4c3b-8d2f-3e8b6c9d7e21")
