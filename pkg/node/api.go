// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// This file holds the thin, lock-scoped accessors pkg/api calls into.
// No HTTP handler touches chain/ledger/queue fields directly; they all go
// through one of these methods, which take n.mu for exactly as long as it
// takes to read or append.
package node

import (
	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/peer"
)

// SubmitTransaction is the /transaction/receive handler's entry point: it
// appends to the mempool queue without validating. Validation happens
// when the worker pops the transaction.
func (n *Node) SubmitTransaction(tx chain.Transaction) {
	n.mu.Lock()
	n.queue.PushBack(tx)
	n.mu.Unlock()
}

// Balance reports ownerID's confirmed balance for the /balance endpoint.
func (n *Node) Balance(ownerID int) int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.confirmed.Balance(ownerID)
}

// Balances reports every ring member's confirmed balance, for the CLI's
// `balances` command.
func (n *Node) Balances() map[int]int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[int]int64, len(n.Ring))
	for _, p := range n.Ring {
		out[p.ID] = n.confirmed.Balance(p.ID)
	}
	return out
}

// OpenBlockTransactions returns the transactions sitting in the current,
// not-yet-sealed block, for the `/transactions/get` endpoint and the
// CLI's `view` command.
func (n *Node) OpenBlockTransactions() []chain.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]chain.Transaction, len(n.currentBlock.Transactions))
	copy(out, n.currentBlock.Transactions)
	return out
}

// Chain returns a snapshot of the confirmed chain and open block, the
// `/chain/get` response payload.
func (n *Node) Chain() peer.ChainSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return peer.ChainSnapshot{Chain: n.chain.Clone(), CurrentBlock: n.currentBlock}
}

// ChainLength returns the confirmed chain's length and block-hash list,
// the `/chain/length` response the scalable fork-resolution variant
// depends on.
func (n *Node) ChainLength() peer.ChainLength {
	n.mu.Lock()
	defer n.mu.Unlock()
	return peer.ChainLength{Length: n.chain.Len(), Hashes: n.chain.Hashes()}
}

// ChainSuffix returns the last count confirmed blocks plus the open
// current block, the `/chain/get/<n>` response.
func (n *Node) ChainSuffix(count int) peer.ChainSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	blocks := n.chain.Blocks
	if count < len(blocks) {
		blocks = blocks[len(blocks)-count:]
	}
	out := make([]chain.Block, len(blocks))
	copy(out, blocks)
	return peer.ChainSnapshot{Chain: chain.Chain{Blocks: out}, CurrentBlock: n.currentBlock}
}
