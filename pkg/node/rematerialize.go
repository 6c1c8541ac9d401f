// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/mempool"
)

// rematerializeLocked re-picks inputs for a self-authored transaction
// from this node's current pendingUTXOs, preserving its original id.
// Callers must hold n.mu.
func (n *Node) rematerializeLocked(tx chain.Transaction) (chain.Transaction, error) {
	return mempool.Rematerialize(tx, n.ID, n.pending, n.Priv)
}
