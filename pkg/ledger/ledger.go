// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger maintains a node's view of unspent transaction outputs,
// keyed per ring member. It is used twice per node, once for confirmed
// state (UTXOs) and once for speculative state (pendingUTXOs), and the
// two views are kept consistent by the node package, which holds a lock
// around every mutation.
package ledger

import "github.com/nbc-chain/nbc/pkg/chain"

// Set is a UTXO set indexed by owner id.
type Set struct {
	UTXOs map[int][]chain.TransactionOutput
}

// New returns an empty ledger sized for n ring members.
func New(n int) *Set {
	s := &Set{UTXOs: make(map[int][]chain.TransactionOutput, n)}
	for i := 0; i < n; i++ {
		s.UTXOs[i] = nil
	}
	return s
}

// Balance sums an owner's unspent outputs.
func (s *Set) Balance(owner int) int64 {
	var total int64
	for _, o := range s.UTXOs[owner] {
		total += o.Amount
	}
	return total
}

// Clone deep-copies the set, the operation the node runs every time
// confirmed state changes to rebase pendingUTXOs.
func (s *Set) Clone() *Set {
	out := &Set{UTXOs: make(map[int][]chain.TransactionOutput, len(s.UTXOs))}
	for owner, outputs := range s.UTXOs {
		cp := make([]chain.TransactionOutput, len(outputs))
		copy(cp, outputs)
		out.UTXOs[owner] = cp
	}
	return out
}

// add appends an output to its recipient's list.
func (s *Set) add(o chain.TransactionOutput) {
	s.UTXOs[o.RecipientID] = append(s.UTXOs[o.RecipientID], o)
}

// has reports whether an identical output is already present, the check
// that makes AddUTXOs idempotent.
func (s *Set) has(o chain.TransactionOutput) bool {
	for _, existing := range s.UTXOs[o.RecipientID] {
		if existing == o {
			return true
		}
	}
	return false
}

// remove deletes the first output owned by owner that matches in, and
// reports whether one was found.
func (s *Set) remove(owner int, in chain.TransactionInput) bool {
	outputs := s.UTXOs[owner]
	for i, o := range outputs {
		if o.MatchesInput(owner, in) {
			s.UTXOs[owner] = append(outputs[:i:i], outputs[i+1:]...)
			return true
		}
	}
	return false
}

// SpendInputs removes every output the inputs claim to spend from owner's
// list, all-or-nothing: if any input has no matching output, every
// removal already performed in this call is reverted and ok is false.
// This is validateTransaction's input-matching step.
func (s *Set) SpendInputs(owner int, inputs []chain.TransactionInput) (removed []chain.TransactionOutput, ok bool) {
	removed = make([]chain.TransactionOutput, 0, len(inputs))
	for _, in := range inputs {
		outputs := s.UTXOs[owner]
		found := false
		for i, o := range outputs {
			if o.MatchesInput(owner, in) {
				removed = append(removed, o)
				s.UTXOs[owner] = append(outputs[:i:i], outputs[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			// Revert whatever this call already removed.
			for _, o := range removed {
				s.add(o)
			}
			return nil, false
		}
	}
	return removed, true
}

// CreditOutputs appends each output to its recipient's list.
func (s *Set) CreditOutputs(outputs []chain.TransactionOutput) {
	for _, o := range outputs {
		s.add(o)
	}
}

// ApplyBlock mutates confirmed UTXOs for every transaction in a committed
// block: inputs are removed if still present (already-removed inputs are
// tolerated, since speculative application may have beaten this call to
// it), outputs are added unless an identical one is already there. It is
// idempotent by construction: replaying an already-applied block is a
// no-op.
func ApplyBlock(s *Set, b *chain.Block) {
	for _, tx := range b.Transactions {
		for _, in := range tx.Inputs {
			s.remove(in.OwnerID, in)
		}
		for _, out := range tx.Outputs {
			if !s.has(out) {
				s.add(out)
			}
		}
	}
}

// UndoBlocks reverses ApplyBlock over a run of blocks, newest first: every
// output a block created is removed, and every input it spent is
// re-credited to its original owner. undo(apply(b)) is the identity on
// UTXOs, which is exactly what fork resolution needs to roll back an
// abandoned suffix.
func UndoBlocks(s *Set, blocks []chain.Block) {
	for i := len(blocks) - 1; i >= 0; i-- {
		txs := blocks[i].Transactions
		for j := len(txs) - 1; j >= 0; j-- {
			tx := txs[j]
			for _, out := range tx.Outputs {
				s.removeExact(out)
			}
			for _, in := range tx.Inputs {
				s.add(chain.TransactionOutput{ID: in.PreviousOutputID, RecipientID: in.OwnerID, Amount: in.Amount})
			}
		}
	}
}

// removeExact deletes one output equal to o from its recipient's list, if
// present; a missing output is tolerated the same way ApplyBlock tolerates
// an already-spent input, so undo is safe to call even against a
// partially-applied block.
func (s *Set) removeExact(o chain.TransactionOutput) {
	outputs := s.UTXOs[o.RecipientID]
	for i, existing := range outputs {
		if existing == o {
			s.UTXOs[o.RecipientID] = append(outputs[:i:i], outputs[i+1:]...)
			return
		}
	}
}

// TotalSupply sums every owner's balance, used by tests to check the
// conservation invariant holds across the whole ledger, not just one
// owner at a time.
func (s *Set) TotalSupply() int64 {
	var total int64
	for owner := range s.UTXOs {
		total += s.Balance(owner)
	}
	return total
}
