package store

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// txEntry is one operation queued against one object within a
// Transaction, recording enough to apply, commit, or roll it back.
type txEntry struct {
	obj  *Object
	atom Atom
}

// Transaction batches operations across one or more objects, applying
// each immediately (so later ops in the same transaction see earlier
// ones' effects) while keeping enough history to roll every one of
// them back as a unit (spec §4.8's atom apply/revert model).
type Transaction struct {
	entries []txEntry
	touched map[uint64]*Object
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{touched: make(map[uint64]*Object)}
}

// Apply runs op against obj's plugin, appending the resulting atom to
// both the object's own pending list and this transaction's entry log
// in insertion order.
func (tx *Transaction) Apply(obj *Object, op Op) error {
	atom, err := obj.Plugin.Apply(obj.State, op)
	if err != nil {
		return err
	}
	obj.applyPending(atom)
	tx.entries = append(tx.entries, txEntry{obj: obj, atom: atom})
	tx.touched[obj.OID] = obj
	return nil
}

// Rollback undoes every applied atom in reverse insertion order, the
// mirror image of Apply's forward order.
func (tx *Transaction) Rollback() {
	for i := len(tx.entries) - 1; i >= 0; i-- {
		e := tx.entries[i]
		e.obj.Plugin.Revert(e.obj.State, e.atom)
	}
	for _, obj := range tx.touched {
		obj.clearPending()
	}
	tx.entries = nil
	tx.touched = make(map[uint64]*Object)
}

// Commit gates every touched object through its own RwCSem commit
// phase concurrently, fanning the per-object commits out across an
// errgroup the same way the teacher fans queue-runner shutdown out
// across goroutines, while still serializing each object's own
// SetCommitFlag/AcquireCommit/ReleaseCommit sequence.
func (tx *Transaction) Commit(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, obj := range tx.touched {
		obj := obj
		g.Go(func() error {
			obj.Sem.SetCommitFlag()
			obj.Sem.AcquireCommit()
			obj.clearPending()
			obj.Sem.ReleaseCommit()
			obj.Sem.ReleaseLock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	tx.entries = nil
	tx.touched = make(map[uint64]*Object)
	return nil
}
