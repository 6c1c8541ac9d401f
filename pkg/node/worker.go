// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"errors"
	"time"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/miner"
	"github.com/sirupsen/logrus"
)

// errDuplicate and errInvalidTransaction are drop reasons logged but
// never surfaced to a caller; both are treated as silent drops.
var (
	errDuplicate          = errors.New("transaction already confirmed or open")
	errInvalidTransaction = errors.New("signature or input validation failed")
)

// idlePoll is how long the worker sleeps between empty-queue checks, kept
// short enough that a node notices an inbound block or a freshly queued
// transaction promptly.
const idlePoll = 5 * time.Millisecond

// Run is the node's single mempool-consumer goroutine. It returns once
// Stop is called.
func (n *Node) Run() {
	for !n.stopped() {
		if n.resolvingConflicts.Load() {
			time.Sleep(idlePoll)
			continue
		}

		n.mu.Lock()
		empty := n.queue.Len() == 0
		n.mu.Unlock()

		if empty {
			if n.receivedBlock.Load() {
				n.mu.Lock()
				n.handleArrivalLocked()
				n.mu.Unlock()
				continue
			}
			time.Sleep(idlePoll)
			continue
		}

		n.processNext()
	}
}

// processNext pops one transaction and drives it through
// re-materialization, validation, broadcast, and block assembly, all
// under a single lock acquisition.
func (n *Node) processNext() {
	n.mu.Lock()

	if n.receivedBlock.Load() {
		n.handleArrivalLocked()
		n.mu.Unlock()
		return
	}

	tx, ok := n.queue.PopFront()
	if !ok {
		n.mu.Unlock()
		return
	}

	selfAuthored := n.isSelfAuthoredLocked(tx)
	if selfAuthored {
		rebuilt, err := n.rematerializeLocked(tx)
		if err != nil {
			n.mu.Unlock()
			n.logDrop(tx.ID, "rematerialize", err)
			return
		}
		tx = rebuilt
	}

	if n.isDuplicateLocked(tx.ID) {
		n.mu.Unlock()
		n.logDrop(tx.ID, "validate", errDuplicate)
		return
	}

	if !n.validateTransaction(tx) {
		n.mu.Unlock()
		n.logDrop(tx.ID, "validate", errInvalidTransaction)
		return
	}

	if selfAuthored && n.Broadcaster != nil {
		n.Broadcaster.BroadcastTransaction(context.Background(), n.Ring, n.ID, tx)
	}

	sealed, block := n.addTransactionToBlockLocked(tx)
	n.mu.Unlock()

	if sealed && n.Broadcaster != nil {
		n.Broadcaster.BroadcastBlock(context.Background(), n.Ring, n.ID, block)
	}
}

// isSelfAuthoredLocked reports whether t was sent by this node's own
// wallet address.
func (n *Node) isSelfAuthoredLocked(t chain.Transaction) bool {
	senderID, ok := n.Ring.IndexByAddress(t.SenderAddress)
	return ok && senderID == n.ID
}

// isDuplicateLocked reports whether t is already confirmed on chain or
// sitting in the open current block.
func (n *Node) isDuplicateLocked(id string) bool {
	for _, tx := range n.currentBlock.Transactions {
		if tx.ID == id {
			return true
		}
	}
	for _, b := range n.chain.Blocks {
		for _, tx := range b.Transactions {
			if tx.ID == id {
				return true
			}
		}
	}
	return false
}

// addTransactionToBlockLocked appends to the open block and synchronously
// seals it once full.
func (n *Node) addTransactionToBlockLocked(t chain.Transaction) (sealed bool, block chain.Block) {
	n.currentBlock.Transactions = append(n.currentBlock.Transactions, t)
	if !n.currentBlock.Full(n.Cfg.Capacity) {
		return false, chain.Block{}
	}
	return n.mineBlockLocked()
}

// mineBlockLocked runs the proof-of-work search synchronously, still
// holding n.mu. The miner is not a separate goroutine; it is this call,
// interruptible only because the flags it polls are atomics rather than
// fields behind the same lock.
func (n *Node) mineBlockLocked() (sealed bool, sealedBlock chain.Block) {
	n.mining.Store(true)
	defer n.mining.Store(false)

	b := n.currentBlock
	b.PreviousHash = n.chain.Last().CurrentHash
	b.Index = uint64(n.chain.Len())

	abort := func() bool {
		return n.resolvingConflicts.Load() || n.receivedBlock.Load()
	}

	if !miner.Search(&b, n.Cfg.Difficulty, miner.RandomNonce(), abort) {
		if n.receivedBlock.Load() {
			n.handleArrivalLocked()
		}
		return false, chain.Block{}
	}

	n.commitMinedBlockLocked(b)
	return true, b
}

// commitMinedBlockLocked finalizes a successfully mined block: seals the
// chain, opens a fresh current block, snapshots confirmed state from
// pending, and drops every queued transaction that isn't self-authored.
func (n *Node) commitMinedBlockLocked(b chain.Block) {
	n.chain.Append(b)
	n.currentBlock = chain.NewBlock(b.Index+1, b.CurrentHash)
	n.confirmed = n.pending.Clone()
	n.queue.Filter(func(tx chain.Transaction) bool {
		return n.isSelfAuthoredLocked(tx)
	})
}

func (n *Node) logDrop(txID, stage string, err error) {
	n.logger().WithFields(logrus.Fields{
		"node_id":   n.ID,
		"component": "mempool",
		"tx_id":     txID,
		"stage":     stage,
		"reason":    err.Error(),
	}).Debug("transaction dropped")
}
