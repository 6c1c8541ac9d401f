// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bootstrap is the thin sequencing layer that turns registration
// into a running ring: the bootstrap node collects registrations until
// the ring is sealed, assembles the genesis chain and its single seed
// UTXO, and builds the N-1 transactions that redistribute the initial
// 100*N coin supply one wallet at a time. None of it touches HTTP
// directly; pkg/api's /node/register, /node/initialize, and /begin
// handlers call into this package and then drive pkg/peer/pkg/node with
// the results.
package bootstrap

import (
	"crypto/rsa"
	"fmt"
	"sync"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
)

// BootstrapID is the ring id the bootstrap node always assigns itself.
// The genesis output credits this id, and SeedTransactions pays out of
// it.
const BootstrapID = 0

// SeedAmount is the number of coins every ring member (bootstrap
// included) ends up holding once registration settles.
const SeedAmount int64 = 100

// Registrar accumulates /node/register calls and assigns sequential ids,
// starting at 1 (the bootstrap node pre-occupies id 0). It is safe for
// concurrent use by the HTTP handler goroutines pkg/api dispatches one
// per request.
type Registrar struct {
	mu    sync.Mutex
	total int
	ring  chain.Ring
}

// NewRegistrar seeds the ring with the bootstrap node's own entry and
// expects total-1 further registrations before the ring seals.
func NewRegistrar(total int, self chain.RingEntry) *Registrar {
	self.ID = BootstrapID
	return &Registrar{total: total, ring: chain.Ring{self}}
}

// Register assigns the next sequential id to a newly-registering peer and
// reports whether the ring has just reached its sealed size.
func (r *Registrar) Register(ip string, port int, pubkey chain.Address) (id int, full bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = len(r.ring)
	r.ring = append(r.ring, chain.RingEntry{ID: id, IP: ip, Port: port, PublicKey: pubkey})
	return id, len(r.ring) == r.total
}

// Full reports whether every expected peer has registered.
func (r *Registrar) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ring) == r.total
}

// Ring returns a snapshot of the ring assembled so far.
func (r *Registrar) Ring() chain.Ring {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ring.Clone()
}

// Genesis builds the sealed genesis block, the one-block chain it starts,
// and the confirmed ledger crediting the bootstrap node with the entire
// 100*total coin supply in a single UTXO.
func Genesis(total int) (chain.Chain, *ledger.Set) {
	c := chain.NewChain(chain.NewGenesisBlock())
	confirmed := ledger.New(total)
	confirmed.CreditOutputs([]chain.TransactionOutput{
		chain.GenesisSeedOutput(BootstrapID, SeedAmount*int64(total)),
	})
	return c, confirmed
}

// SeedTransactions builds the total-1 transactions that pay SeedAmount
// coins from the bootstrap wallet to every other ring member. Each
// transaction's inputs are selected against a
// speculative view that already reflects every transaction built earlier
// in the loop, so the second transaction correctly spends the first
// one's change output rather than the (by-then-already-spent) genesis
// UTXO. These are ordinary transactions once built: cmd/nbcnode queues
// them on the bootstrap node exactly like any client-authored transfer,
// letting the normal worker/miner pipeline seal them into blocks.
func SeedTransactions(ring chain.Ring, priv *rsa.PrivateKey, confirmed *ledger.Set, startCreationTime int64) ([]chain.Transaction, error) {
	self, ok := ring.Get(BootstrapID)
	if !ok {
		return nil, fmt.Errorf("bootstrap: ring has no member %d", BootstrapID)
	}

	pending := confirmed.Clone()
	txs := make([]chain.Transaction, 0, len(ring)-1)
	creationTime := startCreationTime

	for _, peer := range ring {
		if peer.ID == BootstrapID {
			continue
		}

		var inputs []chain.TransactionInput
		var total int64
		for _, o := range pending.UTXOs[BootstrapID] {
			inputs = append(inputs, chain.TransactionInput{PreviousOutputID: o.ID, OwnerID: BootstrapID, Amount: o.Amount})
			total += o.Amount
			if total >= SeedAmount {
				break
			}
		}
		if total < SeedAmount {
			return nil, fmt.Errorf("bootstrap: insufficient seed funds remaining for peer %d", peer.ID)
		}

		tx := chain.NewTransaction(self.PublicKey, peer.PublicKey, BootstrapID, peer.ID, SeedAmount, inputs, creationTime)
		if err := tx.Sign(priv); err != nil {
			return nil, fmt.Errorf("bootstrap: sign seed transaction for peer %d: %w", peer.ID, err)
		}

		if _, ok := pending.SpendInputs(BootstrapID, inputs); !ok {
			return nil, fmt.Errorf("bootstrap: inputs vanished building seed transaction for peer %d", peer.ID)
		}
		pending.CreditOutputs(tx.Outputs)

		txs = append(txs, tx)
		creationTime++
	}
	return txs, nil
}

// InitializePayload is the body of /node/initialize: everything a newly
// admitted peer needs to build its own *node.Node without having
// witnessed the registration process itself.
type InitializePayload struct {
	Ring         chain.Ring                        `json:"ring"`
	Chain        chain.Chain                       `json:"chain"`
	CurrentBlock chain.Block                       `json:"current_block"`
	UTXOs        map[int][]chain.TransactionOutput `json:"utxos"`
}

// NewInitializePayload snapshots the ring, genesis chain, and confirmed
// ledger into the wire shape /node/initialize broadcasts.
func NewInitializePayload(ring chain.Ring, c chain.Chain, currentBlock chain.Block, confirmed *ledger.Set) InitializePayload {
	return InitializePayload{
		Ring:         ring.Clone(),
		Chain:        c.Clone(),
		CurrentBlock: currentBlock,
		UTXOs:        confirmed.Clone().UTXOs,
	}
}

// Ledger rebuilds a *ledger.Set from the payload's UTXO snapshot; the
// client side of /node/initialize, consumed directly by node.New.
func (p InitializePayload) Ledger() *ledger.Set {
	return &ledger.Set{UTXOs: p.UTXOs}
}
