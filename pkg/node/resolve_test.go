// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"crypto/rsa"
	"testing"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
	"github.com/stretchr/testify/require"
)

func TestFindCommonAncestor(t *testing.T) {
	local := chain.Chain{Blocks: []chain.Block{
		{Index: 0, CurrentHash: "g"},
		{Index: 1, CurrentHash: "a1"},
		{Index: 2, CurrentHash: "a2"},
	}}
	incoming := chain.Chain{Blocks: []chain.Block{
		{Index: 0, CurrentHash: "g"},
		{Index: 1, CurrentHash: "a1"},
		{Index: 2, CurrentHash: "b2"},
		{Index: 3, CurrentHash: "b3"},
	}}

	ancestorIdx, blocksToAdd, ok := findCommonAncestor(local, incoming)
	require.True(t, ok)
	require.Equal(t, 1, ancestorIdx)
	require.Equal(t, 2, blocksToAdd)
}

func TestFindCommonAncestorNoOverlapBeyondGenesis(t *testing.T) {
	local := chain.Chain{Blocks: []chain.Block{{Index: 0, CurrentHash: "g"}, {Index: 1, CurrentHash: "a1"}}}
	incoming := chain.Chain{Blocks: []chain.Block{{Index: 0, CurrentHash: "g"}, {Index: 1, CurrentHash: "b1"}, {Index: 2, CurrentHash: "b2"}}}

	ancestorIdx, blocksToAdd, ok := findCommonAncestor(local, incoming)
	require.True(t, ok)
	require.Equal(t, 0, ancestorIdx)
	require.Equal(t, 2, blocksToAdd)
}

func TestApplyForkLockedUndoesAbandonedAndAppliesAdopted(t *testing.T) {
	ring, keys, genesis, confirmed := testWallets(2)
	nw := newFakeNetwork()
	n0 := newTestNode(0, ring, genesis, confirmed, keys, Config{Capacity: 1, Difficulty: 1}, nw)

	// Build the local (soon-to-be-abandoned) suffix: two self-mined blocks.
	txLocal := signedTransfer(t, ring, keys, 0, 1, 20, "genesis", 100, 1)
	block1Local := sealBlock(t, 1, genesis.Last().CurrentHash, txLocal, 1)
	ledger.ApplyBlock(n0.confirmed, &block1Local)
	n0.chain.Append(block1Local)

	txAbandoned := signedTransfer(t, ring, keys, 0, 1, 5, txLocal.ID, 80, 2)
	block2Local := sealBlock(t, 2, block1Local.CurrentHash, txAbandoned, 1)
	ledger.ApplyBlock(n0.confirmed, &block2Local)
	n0.chain.Append(block2Local)

	n0.pending = n0.confirmed.Clone()
	require.Equal(t, int64(75), n0.Balance(0))
	require.Equal(t, int64(125), n0.Balance(1))

	// Build the adopted suffix: two peer-mined blocks diverging right
	// after genesis.
	adoptedA := signedTransfer(t, ring, keys, 1, 0, 10, "genesis", 100, 3)
	blockA := sealBlock(t, 1, genesis.Last().CurrentHash, adoptedA, 1)
	adoptedB := signedTransfer(t, ring, keys, 0, 1, 15, "genesis", 100, 4)
	blockB := sealBlock(t, 2, blockA.CurrentHash, adoptedB, 1)

	ancestorIdx, blocksToAdd, ok := findCommonAncestor(n0.chain, chain.Chain{Blocks: []chain.Block{genesis.Last(), blockA, blockB}})
	require.True(t, ok)
	require.Equal(t, 0, ancestorIdx)
	require.Equal(t, 2, blocksToAdd)

	n0.applyForkLocked(ancestorIdx, []chain.Block{blockA, blockB})

	require.Equal(t, 95, int(n0.Balance(0)))
	require.Equal(t, 105, int(n0.Balance(1)))
	require.Equal(t, int64(200), n0.confirmed.TotalSupply())
	require.Equal(t, 3, n0.chain.Len())

	require.Equal(t, 2, n0.queue.Len())
	first, ok := n0.queue.PopFront()
	require.True(t, ok)
	require.Equal(t, txLocal.ID, first.ID)
	second, ok := n0.queue.PopFront()
	require.True(t, ok)
	require.Equal(t, txAbandoned.ID, second.ID)
}

func TestResolveForkPlainAdoptsLongerPeerChain(t *testing.T) {
	ring, keys, genesis, confirmed := testWallets(2)
	nw := newFakeNetwork()
	n0 := newTestNode(0, ring, genesis, confirmed, keys, Config{Capacity: 1, Difficulty: 1}, nw)
	n1 := newTestNode(1, ring, genesis, confirmed, keys, Config{Capacity: 1, Difficulty: 1}, nw)

	tx := signedTransfer(t, ring, keys, 1, 0, 20, "genesis", 100, 1)
	b := sealBlock(t, 1, genesis.Last().CurrentHash, tx, 1)
	ledger.ApplyBlock(n1.confirmed, &b)
	n1.chain.Append(b)
	n1.pending = n1.confirmed.Clone()

	n0.resolveFork()

	require.Equal(t, 2, n0.chain.Len())
	require.Equal(t, int64(120), n0.Balance(0))
	require.Equal(t, int64(80), n0.Balance(1))
	require.False(t, n0.resolvingConflicts.Load())
}

func TestResolveForkScalableAdoptsLongerPeerChain(t *testing.T) {
	ring, keys, genesis, confirmed := testWallets(2)
	nw := newFakeNetwork()
	cfg := Config{Capacity: 1, Difficulty: 1, Scalable: true}
	n0 := newTestNode(0, ring, genesis, confirmed, keys, cfg, nw)
	n1 := newTestNode(1, ring, genesis, confirmed, keys, cfg, nw)

	tx := signedTransfer(t, ring, keys, 1, 0, 20, "genesis", 100, 1)
	b := sealBlock(t, 1, genesis.Last().CurrentHash, tx, 1)
	ledger.ApplyBlock(n1.confirmed, &b)
	n1.chain.Append(b)
	n1.pending = n1.confirmed.Clone()

	n0.resolveFork()

	require.Equal(t, 2, n0.chain.Len())
	require.Equal(t, int64(120), n0.Balance(0))
	require.Equal(t, int64(80), n0.Balance(1))
}

func signedTransfer(t *testing.T, ring chain.Ring, keys map[int]*rsa.PrivateKey, senderID, receiverID int, amount int64, inputID string, inputAmount, creationTime int64) chain.Transaction {
	t.Helper()
	tx := chain.NewTransaction(ring[senderID].PublicKey, ring[receiverID].PublicKey, senderID, receiverID, amount,
		[]chain.TransactionInput{{PreviousOutputID: inputID, OwnerID: senderID, Amount: inputAmount}}, creationTime)
	require.NoError(t, tx.Sign(keys[senderID]))
	return tx
}

func sealBlock(t *testing.T, index uint64, previousHash string, tx chain.Transaction, difficulty int) chain.Block {
	t.Helper()
	b := chain.NewBlock(index, previousHash)
	b.Transactions = append(b.Transactions, tx)
	require.True(t, mineForTest(&b, difficulty))
	return b
}
