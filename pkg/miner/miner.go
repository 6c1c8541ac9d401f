// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package miner implements the proof-of-work search itself: given a
// candidate block, try nonces until the block's hash clears the
// configured difficulty, or an abort signal fires. It deliberately knows
// nothing about locks, queues, or the node: the node package calls Search
// synchronously from its single worker goroutine while holding the big
// lock, entering the search directly rather than handing off to another
// thread.
package miner

import (
	"crypto/rand"
	"encoding/binary"
	"math"

	"github.com/nbc-chain/nbc/pkg/chain"
)

// AbortFunc is polled between nonce attempts; Search returns false as soon
// as it reports true, leaving the block's nonce in whatever state the
// search had reached. The node uses this to interrupt mining when a
// competing block arrives mid-search.
type AbortFunc func() bool

// Search tries nonces starting at startNonce, incrementing by one each
// attempt, until the resulting hash clears difficulty or abort reports
// true. On success b.Nonce and b.CurrentHash are left set to the winning
// values and Search returns true.
func Search(b *chain.Block, difficulty int, startNonce uint64, abort AbortFunc) bool {
	for nonce := startNonce; ; nonce++ {
		if abort != nil && abort() {
			return false
		}
		b.Nonce = nonce
		hash := b.ComputeHash()
		if chain.HasProofOfWork(hash, difficulty) {
			b.CurrentHash = hash
			return true
		}
		if nonce == math.MaxUint64 {
			return false
		}
	}
}

// RandomNonce returns a cryptographically random starting nonce so that
// two nodes racing to mine the same block template don't walk the same
// sequence of candidates in lockstep.
func RandomNonce() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(buf[:])
}
