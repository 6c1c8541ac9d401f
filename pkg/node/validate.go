// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import "github.com/nbc-chain/nbc/pkg/chain"

// validateTransaction verifies the signature, recovers the sender's ring
// id, and atomically moves the claimed inputs out of pendingUTXOs into
// the two outputs the transaction creates. Callers must hold n.mu.
func (n *Node) validateTransaction(t chain.Transaction) bool {
	if !t.VerifySignature() {
		return false
	}
	senderID, ok := n.Ring.IndexByAddress(t.SenderAddress)
	if !ok {
		return false
	}
	if _, ok := n.pending.SpendInputs(senderID, t.Inputs); !ok {
		return false
	}
	n.pending.CreditOutputs(t.Outputs)
	return true
}

// validateBlockLocked checks a candidate block against the chain tip it
// claims to extend. Callers must hold n.mu.
func (n *Node) validateBlockLocked(b chain.Block) bool {
	return chain.ValidateBlock(b, n.chain.Last(), n.Cfg.Difficulty)
}
