// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sealedBlock(index uint64, prev Block, difficulty int) Block {
	b := NewBlock(index, prev.CurrentHash)
	for nonce := uint64(0); ; nonce++ {
		b.Nonce = nonce
		b.CurrentHash = b.ComputeHash()
		if HasProofOfWork(b.CurrentHash, difficulty) {
			return b
		}
	}
}

func TestChainLinkageAndValidateBlock(t *testing.T) {
	genesis := NewGenesisBlock()
	c := NewChain(genesis)

	b1 := sealedBlock(1, genesis, 1)
	require.True(t, ValidateBlock(b1, genesis, 1))
	c.Append(b1)

	require.NoError(t, c.ValidateLinkage())
	require.Equal(t, 2, c.Len())
	require.Equal(t, b1.CurrentHash, c.Last().CurrentHash)
}

func TestValidateBlockRejectsBadLinkage(t *testing.T) {
	genesis := NewGenesisBlock()
	b1 := sealedBlock(1, genesis, 1)
	b1.PreviousHash = "not-the-genesis-hash"
	require.False(t, ValidateBlock(b1, genesis, 1))
}

func TestChainCloneIsIndependent(t *testing.T) {
	genesis := NewGenesisBlock()
	c := NewChain(genesis)
	clone := c.Clone()
	clone.Append(sealedBlock(1, genesis, 1))
	require.Equal(t, 1, c.Len())
	require.Equal(t, 2, clone.Len())
}

func TestRingLookup(t *testing.T) {
	r := Ring{
		{ID: 0, IP: "127.0.0.1", Port: 9000, PublicKey: "addr0"},
		{ID: 1, IP: "127.0.0.1", Port: 9001, PublicKey: "addr1"},
	}
	id, ok := r.IndexByAddress("addr1")
	require.True(t, ok)
	require.Equal(t, 1, id)

	_, ok = r.IndexByAddress("unknown")
	require.False(t, ok)

	entry, ok := r.Get(0)
	require.True(t, ok)
	require.Equal(t, "127.0.0.1", entry.IP)
}
