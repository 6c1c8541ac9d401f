// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"crypto/rsa"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
	"github.com/nbc-chain/nbc/pkg/miner"
	"github.com/nbc-chain/nbc/pkg/peer"
	"github.com/nbc-chain/nbc/pkg/walletkey"
)

// mineForTest seals a block built by hand in test setup code, e.g. a
// competing block simulating what another node would have broadcast.
func mineForTest(b *chain.Block, difficulty int) bool {
	return miner.Search(b, difficulty, miner.RandomNonce(), nil)
}

// fakeNetwork wires a handful of in-process Nodes directly to each
// other's exported methods, standing in for pkg/peer.HTTPClient in
// tests: direct in-process calls beat spinning up real sockets for unit
// speed.
type fakeNetwork struct {
	nodes map[int]*Node
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{nodes: make(map[int]*Node)}
}

func (nw *fakeNetwork) register(n *Node) {
	nw.nodes[n.ID] = n
}

func (nw *fakeNetwork) BroadcastTransaction(_ context.Context, peers chain.Ring, selfID int, tx chain.Transaction) {
	for _, p := range peers {
		if p.ID == selfID {
			continue
		}
		if target, ok := nw.nodes[p.ID]; ok {
			target.SubmitTransaction(tx)
		}
	}
}

func (nw *fakeNetwork) BroadcastBlock(_ context.Context, peers chain.Ring, selfID int, b chain.Block) {
	for _, p := range peers {
		if p.ID == selfID {
			continue
		}
		if target, ok := nw.nodes[p.ID]; ok {
			target.ReceiveBlock(b)
		}
	}
}

func (nw *fakeNetwork) QueryLength(_ context.Context, p chain.RingEntry) (peer.ChainLength, bool) {
	target, ok := nw.nodes[p.ID]
	if !ok {
		return peer.ChainLength{}, false
	}
	return target.ChainLength(), true
}

func (nw *fakeNetwork) QueryChain(_ context.Context, p chain.RingEntry) (peer.ChainSnapshot, bool) {
	target, ok := nw.nodes[p.ID]
	if !ok {
		return peer.ChainSnapshot{}, false
	}
	return target.Chain(), true
}

func (nw *fakeNetwork) QuerySuffix(_ context.Context, p chain.RingEntry, n int) (peer.ChainSnapshot, bool) {
	target, ok := nw.nodes[p.ID]
	if !ok {
		return peer.ChainSnapshot{}, false
	}
	return target.ChainSuffix(n), true
}

// testWallets builds n RSA keypairs and the ring entries derived from
// them, and a confirmed ledger crediting each member 100 coins directly
// from genesis; the seed-transaction redistribution pkg/bootstrap
// performs is out of scope for pkg/node's own tests.
func testWallets(n int) (chain.Ring, map[int]*rsa.PrivateKey, chain.Chain, *ledger.Set) {
	ring := make(chain.Ring, n)
	keys := make(map[int]*rsa.PrivateKey, n)

	for i := 0; i < n; i++ {
		priv, err := walletkey.Generate(1024)
		if err != nil {
			panic(err)
		}
		addr, err := walletkey.AddressOf(&priv.PublicKey)
		if err != nil {
			panic(err)
		}
		ring[i] = chain.RingEntry{ID: i, IP: "127.0.0.1", Port: 9000 + i, PublicKey: addr}
		keys[i] = priv
	}

	genesis := chain.NewChain(chain.NewGenesisBlock())
	confirmed := ledger.New(n)
	for i := 0; i < n; i++ {
		confirmed.CreditOutputs([]chain.TransactionOutput{{ID: "genesis", RecipientID: i, Amount: 100}})
	}
	return ring, keys, genesis, confirmed
}

func newTestNode(id int, ring chain.Ring, genesis chain.Chain, confirmed *ledger.Set, keys map[int]*rsa.PrivateKey, cfg Config, nw *fakeNetwork) *Node {
	n := New(id, keys[id], ring, genesis.Clone(), confirmed.Clone(), cfg, nw, nw, nil)
	nw.register(n)
	return n
}
