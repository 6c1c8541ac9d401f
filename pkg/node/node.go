// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node is the per-peer consensus engine: the single mutex that
// guards chain/ledger/mempool state, the worker loop that drains the
// mempool and triggers mining, the block-arrival handler, and fork
// resolution. Every exported method that mutates state takes Node.mu;
// HTTP handlers in pkg/api call straight into these methods and never
// touch the chain/ledger fields directly.
//
// The three signalling flags (mining, resolvingConflicts, receivedBlock)
// are atomic.Bool rather than fields guarded by mu: the miner holds mu for
// the whole of a PoW search, since mining runs synchronously from inside
// the transaction-admission path, which already holds the lock. That
// means a handler setting the inbound-block latch cannot itself wait on
// mu without deadlocking against the very miner it needs to interrupt.
// The flags are the one piece of state that must be observable without
// the big lock.
package node

import (
	"crypto/rsa"
	"sync"
	"sync/atomic"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
	"github.com/nbc-chain/nbc/pkg/mempool"
	"github.com/nbc-chain/nbc/pkg/peer"
	"github.com/sirupsen/logrus"
)

// Config carries the ring-wide sizing and difficulty values every node
// needs at construction time.
type Config struct {
	Capacity   int
	Difficulty int
	Scalable   bool
}

// Node is one ring member's complete consensus state.
type Node struct {
	ID   int
	Priv *rsa.PrivateKey
	Ring chain.Ring
	Cfg  Config

	Broadcaster peer.Broadcaster
	Querier     peer.Querier
	Log         *logrus.Entry

	mu           sync.Mutex
	chain        chain.Chain
	currentBlock chain.Block
	confirmed    *ledger.Set
	pending      *ledger.Set
	queue        *mempool.Queue

	mining             atomic.Bool
	resolvingConflicts atomic.Bool
	receivedBlock      atomic.Bool

	latchMu    sync.Mutex
	latchBlock *chain.Block

	stop chan struct{}
}

// New builds a node from the sealed ring, genesis chain, and the UTXO set
// bootstrap has already distributed. confirmed is owned by the returned
// Node from this point on (not copied).
func New(id int, priv *rsa.PrivateKey, ring chain.Ring, genesis chain.Chain, confirmed *ledger.Set, cfg Config, bc peer.Broadcaster, q peer.Querier, log *logrus.Entry) *Node {
	n := &Node{
		ID:          id,
		Priv:        priv,
		Ring:        ring,
		Cfg:         cfg,
		Broadcaster: bc,
		Querier:     q,
		Log:         log,
		chain:       genesis,
		confirmed:   confirmed,
		pending:     confirmed.Clone(),
		queue:       mempool.NewQueue(),
		stop:        make(chan struct{}),
	}
	last := n.chain.Last()
	n.currentBlock = chain.NewBlock(last.Index+1, last.CurrentHash)
	return n
}

// logger returns a safe-to-use logger even when Log is nil, so tests can
// build a Node without wiring logrus.
func (n *Node) logger() *logrus.Entry {
	if n.Log != nil {
		return n.Log
	}
	return logrus.NewEntry(logrus.New())
}

// Stop signals the worker loop to exit at its next poll.
func (n *Node) Stop() {
	close(n.stop)
}

// stopped reports whether Stop has been called.
func (n *Node) stopped() bool {
	select {
	case <-n.stop:
		return true
	default:
		return false
	}
}
