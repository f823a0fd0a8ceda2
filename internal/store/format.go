package store

import (
	"github.com/google/uuid"

	raleighsl "github.com/ehrlich-b/raleighsl"
)

func mustUUID(s string) uuid.UUID { return uuid.MustParse(s) }

// formatMagic marks the start of a formatted device's header record.
const formatMagic = "RLSLFMT1"

// headerSize is the fixed on-disk size of a format record: the magic
// string followed by three 16-byte UUIDs.
const headerSize = len(formatMagic) + 3*16

// FlatFormat stamps and probes the three plugin-identifying UUIDs a
// device carries once formatted (spec §4.8's format step). Probe checks
// only the magic; it does not check the UUIDs against any registry, and
// Store.Open does not call it.
type FlatFormat struct{}

// NewFlatFormat returns a FlatFormat plugin instance.
func NewFlatFormat() FormatPlugin { return &FlatFormat{} }

func (f *FlatFormat) Init() error   { return nil }
func (f *FlatFormat) Load() error   { return nil }
func (f *FlatFormat) Unload() error { return nil }
func (f *FlatFormat) Sync() error   { return nil }

// Format writes the magic header and the three plugin UUIDs at offset
// zero of dev.
func (f *FlatFormat) Format(dev DevicePlugin, semantic, space, key uuid.UUID) error {
	buf := make([]byte, headerSize)
	copy(buf, formatMagic)
	off := len(formatMagic)
	copy(buf[off:], semantic[:])
	off += 16
	copy(buf[off:], space[:])
	off += 16
	copy(buf[off:], key[:])

	if dev.Size() < int64(headerSize) {
		return raleighsl.NewError("format.format", raleighsl.CodeInvalidArgument, "device too small for format header")
	}
	_, err := dev.WriteAt(buf, 0)
	if err != nil {
		return raleighsl.WrapError("format.format", raleighsl.CodeIO, err)
	}
	return nil
}

// Probe reads back the magic header and the three plugin UUIDs, failing
// with CodeCorrupt if the magic doesn't match.
func (f *FlatFormat) Probe(dev DevicePlugin) (semantic, space, key uuid.UUID, err error) {
	buf := make([]byte, headerSize)
	if dev.Size() < int64(headerSize) {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.NewError("format.probe", raleighsl.CodeCorrupt, "device too small to hold a format header")
	}
	if _, e := dev.ReadAt(buf, 0); e != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.WrapError("format.probe", raleighsl.CodeIO, e)
	}
	if string(buf[:len(formatMagic)]) != formatMagic {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.NewError("format.probe", raleighsl.CodeCorrupt, "bad format magic")
	}
	off := len(formatMagic)
	semantic, err = uuid.FromBytes(buf[off : off+16])
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.WrapError("format.probe", raleighsl.CodeCorrupt, err)
	}
	off += 16
	space, err = uuid.FromBytes(buf[off : off+16])
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.WrapError("format.probe", raleighsl.CodeCorrupt, err)
	}
	off += 16
	key, err = uuid.FromBytes(buf[off : off+16])
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, raleighsl.WrapError("format.probe", raleighsl.CodeCorrupt, err)
	}
	return semantic, space, key, nil
}
