// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
	"github.com/nbc-chain/nbc/pkg/walletkey"
	"github.com/stretchr/testify/require"
)

func TestRematerializePreservesID(t *testing.T) {
	priv, err := walletkey.Generate(1024)
	require.NoError(t, err)
	senderAddr, err := walletkey.AddressOf(&priv.PublicKey)
	require.NoError(t, err)

	original := chain.NewTransaction(senderAddr, "receiver-addr", 0, 1, 30, []chain.TransactionInput{
		{PreviousOutputID: "stale-tx", OwnerID: 0, Amount: 100},
	}, 555)

	pending := ledger.New(2)
	pending.CreditOutputs([]chain.TransactionOutput{{ID: "fresh-tx", RecipientID: 0, Amount: 80}})

	rebuilt, err := Rematerialize(original, 0, pending, priv)
	require.NoError(t, err)

	require.Equal(t, original.ID, rebuilt.ID, "id must survive rematerialization")
	require.Equal(t, original.CreationTime, rebuilt.CreationTime)
	require.Equal(t, []chain.TransactionInput{{PreviousOutputID: "fresh-tx", OwnerID: 0, Amount: 80}}, rebuilt.Inputs)
	require.Equal(t, int64(50), rebuilt.Outputs[0].Amount)
	require.Equal(t, int64(30), rebuilt.Outputs[1].Amount)
	require.True(t, rebuilt.VerifySignature())
}

func TestRematerializeInsufficientFunds(t *testing.T) {
	priv, err := walletkey.Generate(1024)
	require.NoError(t, err)
	senderAddr, err := walletkey.AddressOf(&priv.PublicKey)
	require.NoError(t, err)

	original := chain.NewTransaction(senderAddr, "receiver-addr", 0, 1, 30, []chain.TransactionInput{
		{PreviousOutputID: "stale-tx", OwnerID: 0, Amount: 100},
	}, 555)

	pending := ledger.New(2) // no UTXOs left for owner 0

	_, err = Rematerialize(original, 0, pending, priv)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}
