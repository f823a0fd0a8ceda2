package store

import (
	"fmt"

	raleighsl "github.com/ehrlich-b/raleighsl"
)

// CounterState is the state blob a Counter object plugin manages: a
// 64-bit value plus a compare-and-swap token bumped on every mutation
// (spec §4.8 Counter object).
type CounterState struct {
	Value uint64
	CAS   uint64
}

// counterPlugin implements the Counter object kind: Get, Set, Cas,
// Incr, Decr, all wrapping uint64 on overflow the same way the
// teacher's own sector arithmetic wraps rather than panics.
type counterPlugin struct{}

// NewCounterPlugin returns a fresh Counter ObjectPlugin instance.
func NewCounterPlugin() ObjectPlugin { return &counterPlugin{} }

func init() { RegisterObjectPlugin(CounterPluginUUID, NewCounterPlugin) }

func (p *counterPlugin) Init() error   { return nil }
func (p *counterPlugin) Load() error   { return nil }
func (p *counterPlugin) Unload() error { return nil }
func (p *counterPlugin) Sync() error   { return nil }

func (p *counterPlugin) NewState() any { return &CounterState{} }

// Apply executes one Counter op against state. Recognized op kinds:
// "get", "set", "cas", "incr", "decr". Args for set/incr/decr carry a
// "delta" or "value" uint64; cas additionally carries "expected".
func (p *counterPlugin) Apply(state any, op Op) (Atom, error) {
	s := state.(*CounterState)
	before := *s

	switch op.Kind {
	case "get":
		return Atom{Kind: op.Kind, Before: before, After: *s}, nil

	case "set":
		v, _ := op.Args["value"].(uint64)
		s.Value = v
		s.CAS++
		return Atom{Kind: op.Kind, Before: before, After: *s}, nil

	case "cas":
		expected, _ := op.Args["expected"].(uint64)
		v, _ := op.Args["value"].(uint64)
		if s.CAS != expected {
			err := raleighsl.NewError("counter.cas", raleighsl.CodeConcurrencyConflict,
				fmt.Sprintf("cas mismatch, expected %d got %d", expected, s.CAS))
			return Atom{Kind: op.Kind, Before: before, After: before}, err
		}
		s.Value = v
		s.CAS++
		return Atom{Kind: op.Kind, Before: before, After: *s}, nil

	case "incr":
		delta, _ := op.Args["delta"].(uint64)
		s.Value += delta
		s.CAS++
		return Atom{Kind: op.Kind, Before: before, After: *s}, nil

	case "decr":
		delta, _ := op.Args["delta"].(uint64)
		s.Value -= delta
		s.CAS++
		return Atom{Kind: op.Kind, Before: before, After: *s}, nil

	default:
		return Atom{}, fmt.Errorf("counter: unknown op %q", op.Kind)
	}
}

func (p *counterPlugin) Revert(state any, atom Atom) {
	if atom.Kind == "get" {
		return
	}
	s := state.(*CounterState)
	before := atom.Before.(CounterState)
	*s = before
}
