// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"errors"
	"fmt"
	"time"

	"github.com/nbc-chain/nbc/pkg/chain"
)

// ErrInsufficientFunds is returned by CreateTransaction when the caller's
// own pending balance can't cover the requested amount.
var ErrInsufficientFunds = errors.New("node: insufficient funds")

// CreateTransaction builds and queues a new self-authored transaction
// paying amount to receiverID, selecting inputs from this node's own
// current speculative balance. It waits while a block is being mined,
// since the outputs it reads are about to be rewritten by whatever
// mineBlockLocked snapshots next.
func (n *Node) CreateTransaction(receiverID int, amount int64) (chain.Transaction, error) {
	for n.mining.Load() {
		time.Sleep(idlePoll)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	receiver, ok := n.Ring.Get(receiverID)
	if !ok {
		return chain.Transaction{}, fmt.Errorf("node: unknown ring member %d", receiverID)
	}
	self, ok := n.Ring.Get(n.ID)
	if !ok {
		return chain.Transaction{}, fmt.Errorf("node: self (%d) not found in ring", n.ID)
	}

	var inputs []chain.TransactionInput
	var total int64
	for _, o := range n.pending.UTXOs[n.ID] {
		inputs = append(inputs, chain.TransactionInput{PreviousOutputID: o.ID, OwnerID: n.ID, Amount: o.Amount})
		total += o.Amount
		if total >= amount {
			break
		}
	}
	if total < amount {
		return chain.Transaction{}, ErrInsufficientFunds
	}

	tx := chain.NewTransaction(self.PublicKey, receiver.PublicKey, n.ID, receiverID, amount, inputs, time.Now().UnixNano())
	if err := tx.Sign(n.Priv); err != nil {
		return chain.Transaction{}, fmt.Errorf("node: sign transaction: %w", err)
	}
	n.queue.PushBack(tx)
	return tx, nil
}
