// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
	"github.com/sirupsen/logrus"
)

// resolveFork runs once handleArrivalLocked finds an inbound block that
// doesn't extend the local tip. The network-query phase (asking peers for
// their chain, or the scalable variant's length/hash probe) runs
// lock-free; only the mutation phase that splices in the adopted chain
// takes n.mu.
func (n *Node) resolveFork() {
	defer n.resolvingConflicts.Store(false)

	ctx := context.Background()
	if n.Cfg.Scalable {
		n.resolveForkScalable(ctx)
		return
	}
	n.resolveForkPlain(ctx)
}

// resolveForkPlain is the non-scalable fork-resolution variant: ask every
// peer for its full chain, adopt the longest one that beats our own.
func (n *Node) resolveForkPlain(ctx context.Context) {
	n.mu.Lock()
	localLen := n.chain.Len()
	n.mu.Unlock()

	bestLen := localLen
	var best chain.Chain
	found := false

	for _, p := range n.Ring {
		if p.ID == n.ID {
			continue
		}
		snap, ok := n.Querier.QueryChain(ctx, p)
		if !ok {
			continue
		}
		if snap.Chain.Len() > bestLen {
			bestLen = snap.Chain.Len()
			best = snap.Chain
			found = true
		}
	}
	if !found {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	ancestorIdx, blocksToAdd, ok := findCommonAncestor(n.chain, best)
	if !ok || blocksToAdd == 0 {
		return
	}
	adopted := best.Blocks[len(best.Blocks)-blocksToAdd:]
	n.applyForkLocked(ancestorIdx, adopted)
}

// resolveForkScalable is the scalable fork-resolution variant: probe
// every peer for (length, hash list) only, locally find the divergence
// point by walking our own tail, and request exactly the missing suffix.
func (n *Node) resolveForkScalable(ctx context.Context) {
	n.mu.Lock()
	localLen := n.chain.Len()
	localHashes := n.chain.Hashes()
	n.mu.Unlock()

	bestLen := localLen
	var bestPeer chain.RingEntry
	var bestHashes []string
	found := false

	for _, p := range n.Ring {
		if p.ID == n.ID {
			continue
		}
		cl, ok := n.Querier.QueryLength(ctx, p)
		if !ok {
			continue
		}
		if cl.Length > bestLen {
			bestLen = cl.Length
			bestPeer = p
			bestHashes = cl.Hashes
			found = true
		}
	}
	if !found {
		return
	}

	peerIndex := make(map[string]int, len(bestHashes))
	for i, h := range bestHashes {
		peerIndex[h] = i
	}

	ancestorLocalIdx, ancestorPeerIdx := -1, -1
	for i := len(localHashes) - 1; i >= 0; i-- {
		if idx, ok := peerIndex[localHashes[i]]; ok {
			ancestorLocalIdx, ancestorPeerIdx = i, idx
			break
		}
	}
	if ancestorLocalIdx < 0 {
		n.logger().WithFields(logrus.Fields{
			"node_id":   n.ID,
			"component": "resolve",
		}).Warn("scalable fork resolution found no common ancestor hash, aborting")
		return
	}

	requestLength := bestLen - 1 - ancestorPeerIdx
	if requestLength <= 0 {
		return
	}

	snap, ok := n.Querier.QuerySuffix(ctx, bestPeer, requestLength)
	if !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.applyForkLocked(ancestorLocalIdx, snap.Chain.Blocks)
}

// findCommonAncestor walks incoming from the tail backward and, for each
// incoming block, scans local from the tail backward, stopping at the
// first pair of equal current_hash.
func findCommonAncestor(local, incoming chain.Chain) (ancestorIdx, blocksToAdd int, ok bool) {
	for i := len(incoming.Blocks) - 1; i >= 0; i-- {
		for j := len(local.Blocks) - 1; j >= 0; j-- {
			if incoming.Blocks[i].CurrentHash == local.Blocks[j].CurrentHash {
				return j, len(incoming.Blocks) - 1 - i, true
			}
		}
	}
	return 0, 0, false
}

// applyForkLocked checks that the adopted suffix links onto the common
// ancestor and carries proof-of-work (leaving the local chain unchanged if
// not), then undoes the abandoned local suffix, applies the adopted
// suffix, re-queues orphaned transactions ahead of whatever is already
// pending, splices the chain, and rebases pending state. Callers must
// hold n.mu.
func (n *Node) applyForkLocked(ancestorIdx int, adopted []chain.Block) {
	if len(adopted) == 0 {
		return
	}
	prev := n.chain.Blocks[ancestorIdx]
	for _, b := range adopted {
		if !chain.ValidateBlock(b, prev, n.Cfg.Difficulty) {
			n.logger().WithFields(logrus.Fields{
				"node_id":   n.ID,
				"component": "resolve",
			}).Warn("adopted chain failed validation, keeping local chain")
			return
		}
		prev = b
	}
	abandoned := append([]chain.Block(nil), n.chain.Blocks[ancestorIdx+1:]...)

	ledger.UndoBlocks(n.confirmed, abandoned)
	for i := range adopted {
		ledger.ApplyBlock(n.confirmed, &adopted[i])
	}

	adoptedIDs := make(map[string]struct{})
	for _, b := range adopted {
		for id := range b.TransactionIDs() {
			adoptedIDs[id] = struct{}{}
		}
	}
	for i := len(abandoned) - 1; i >= 0; i-- {
		txs := abandoned[i].Transactions
		for j := len(txs) - 1; j >= 0; j-- {
			if _, inAdopted := adoptedIDs[txs[j].ID]; !inAdopted {
				n.queue.PushFront(txs[j])
			}
		}
	}

	n.chain.Truncate(ancestorIdx + 1)
	for _, b := range adopted {
		n.chain.Append(b)
	}
	last := n.chain.Last()
	n.currentBlock = chain.NewBlock(last.Index+1, last.CurrentHash)
	n.pending = n.confirmed.Clone()
}
