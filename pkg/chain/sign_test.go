// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/nbc-chain/nbc/pkg/walletkey"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifySignature(t *testing.T) {
	priv, err := walletkey.Generate(1024)
	require.NoError(t, err)
	addr, err := walletkey.AddressOf(&priv.PublicKey)
	require.NoError(t, err)

	other, err := walletkey.Generate(1024)
	require.NoError(t, err)
	receiverAddr, err := walletkey.AddressOf(&other.PublicKey)
	require.NoError(t, err)

	tx := NewTransaction(addr, receiverAddr, 0, 1, 10, nil, 1)
	require.NoError(t, tx.Sign(priv))
	require.True(t, tx.VerifySignature())

	tx.Amount = 9999 // tamper with a field after signing; the stored id is not recomputed
	require.True(t, tx.VerifySignature(), "signature only covers the id, matching validate_transaction's stated checks")

	tx2 := tx
	tx2.Signature = append([]byte(nil), tx.Signature...)
	tx2.Signature[0] ^= 0xFF
	require.False(t, tx2.VerifySignature())
}

func TestVerifySignatureFailsForWrongSender(t *testing.T) {
	priv, err := walletkey.Generate(1024)
	require.NoError(t, err)
	addr, err := walletkey.AddressOf(&priv.PublicKey)
	require.NoError(t, err)

	impostor, err := walletkey.Generate(1024)
	require.NoError(t, err)

	tx := NewTransaction(addr, addr, 0, 0, 10, nil, 1)
	require.NoError(t, tx.Sign(impostor))
	require.False(t, tx.VerifySignature())
}
