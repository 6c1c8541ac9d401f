// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bootstrap

import (
	"crypto/rsa"
	"testing"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/walletkey"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, chain.Address) {
	t.Helper()
	priv, err := walletkey.Generate(1024)
	require.NoError(t, err)
	addr, err := walletkey.AddressOf(&priv.PublicKey)
	require.NoError(t, err)
	return priv, addr
}

func TestRegistrarAssignsSequentialIDsAndSealsAtN(t *testing.T) {
	_, selfAddr := generateKey(t)
	r := NewRegistrar(3, chain.RingEntry{IP: "10.0.0.1", Port: 9000, PublicKey: selfAddr})

	_, addr1 := generateKey(t)
	id1, full1 := r.Register("10.0.0.2", 9001, addr1)
	require.Equal(t, 1, id1)
	require.False(t, full1)
	require.False(t, r.Full())

	_, addr2 := generateKey(t)
	id2, full2 := r.Register("10.0.0.3", 9002, addr2)
	require.Equal(t, 2, id2)
	require.True(t, full2)
	require.True(t, r.Full())

	ring := r.Ring()
	require.Len(t, ring, 3)
	require.Equal(t, BootstrapID, ring[0].ID)
	require.Equal(t, selfAddr, ring[0].PublicKey)
	require.Equal(t, addr1, ring[1].PublicKey)
	require.Equal(t, addr2, ring[2].PublicKey)
}

func TestGenesisCreditsBootstrapWithTotalSupply(t *testing.T) {
	c, confirmed := Genesis(5)
	require.Equal(t, 1, c.Len())
	require.Equal(t, int64(500), confirmed.Balance(BootstrapID))
	require.Equal(t, int64(500), confirmed.TotalSupply())
}

func TestSeedTransactionsPaySeedAmountToEveryOtherPeer(t *testing.T) {
	const n = 4
	ring := make(chain.Ring, n)
	var bootstrapPriv *rsa.PrivateKey
	for i := 0; i < n; i++ {
		priv, addr := generateKey(t)
		ring[i] = chain.RingEntry{ID: i, IP: "127.0.0.1", Port: 9000 + i, PublicKey: addr}
		if i == BootstrapID {
			bootstrapPriv = priv
		}
	}

	_, confirmed := Genesis(n)

	txs, err := SeedTransactions(ring, bootstrapPriv, confirmed, 1)
	require.NoError(t, err)
	require.Len(t, txs, n-1)

	seen := make(map[int]bool)
	for _, tx := range txs {
		require.Equal(t, SeedAmount, tx.Amount)
		require.True(t, tx.VerifySignature())

		recvIdx, found := ring.IndexByAddress(tx.ReceiverAddress)
		require.True(t, found)
		require.False(t, seen[recvIdx], "each peer should receive exactly one seed transaction")
		seen[recvIdx] = true
	}
	require.Len(t, seen, n-1)
	require.False(t, seen[BootstrapID])
}

func TestSeedTransactionsFailWhenRingMissingBootstrap(t *testing.T) {
	ring := chain.Ring{{ID: 1, IP: "127.0.0.1", Port: 9001}}
	priv, _ := generateKey(t)
	_, confirmed := Genesis(2)

	_, err := SeedTransactions(ring, priv, confirmed, 1)
	require.Error(t, err)
}

func TestInitializePayloadRoundTripsLedger(t *testing.T) {
	c, confirmed := Genesis(3)
	ring := chain.Ring{{ID: 0}, {ID: 1}, {ID: 2}}
	currentBlock := chain.NewBlock(1, c.Last().CurrentHash)

	payload := NewInitializePayload(ring, c, currentBlock, confirmed)
	require.Equal(t, confirmed.Balance(BootstrapID), payload.Ledger().Balance(BootstrapID))

	// Mutating the original ledger afterward must not leak into the
	// payload's snapshot.
	confirmed.CreditOutputs([]chain.TransactionOutput{{ID: "extra", RecipientID: 1, Amount: 1}})
	require.Equal(t, int64(0), payload.Ledger().Balance(1))
}
