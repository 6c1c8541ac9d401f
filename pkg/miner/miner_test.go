// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miner

import (
	"testing"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsValidProofOfWork(t *testing.T) {
	b := chain.NewBlock(1, "prev-hash")

	ok := Search(&b, 1, 0, nil)
	require.True(t, ok)
	require.True(t, chain.HasProofOfWork(b.CurrentHash, 1))
	require.Equal(t, b.ComputeHash(), b.CurrentHash)
}

func TestSearchHonorsAbort(t *testing.T) {
	b := chain.NewBlock(1, "prev-hash")

	calls := 0
	ok := Search(&b, 64, 0, func() bool {
		calls++
		return calls > 3
	})
	require.False(t, ok)
}

func TestSearchZeroDifficultyAlwaysSucceeds(t *testing.T) {
	b := chain.NewBlock(1, "prev-hash")

	ok := Search(&b, 0, 0, nil)
	require.True(t, ok)
}

func TestRandomNonceVariesAcrossCalls(t *testing.T) {
	a := RandomNonce()
	b := RandomNonce()
	require.NotEqual(t, a, b, "two calls landing on the same nonce would indicate a broken random source")
}
