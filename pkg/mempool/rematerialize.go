// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"crypto/rsa"
	"errors"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/ledger"
)

// ErrInsufficientFunds means the self-authored transaction's intent (pay
// amount to receiver) can no longer be funded from the owner's current
// speculative UTXOs.
var ErrInsufficientFunds = errors.New("mempool: insufficient funds to rematerialize transaction")

// Rematerialize rebuilds a self-authored transaction's inputs and outputs
// from the owner's current pending UTXO set, preserving the original
// transaction's id, sender/receiver addresses, amount, and creation time.
//
// This is necessarily an exception to "a transaction id is a pure
// function of its payload": after a fork resolution the owner's original
// inputs may no longer exist, so new inputs must be picked, but the id
// must NOT be recomputed from them, since downstream deduplication
// depends on the original id surviving the replay. A fresh signature is
// produced anyway, even though it will be byte-identical to the original
// since the signed digest is a function of the (unchanged) id.
func Rematerialize(original chain.Transaction, ownerID int, pending *ledger.Set, priv *rsa.PrivateKey) (chain.Transaction, error) {
	outputs := pending.UTXOs[ownerID]

	var inputs []chain.TransactionInput
	var total int64
	for _, o := range outputs {
		inputs = append(inputs, chain.TransactionInput{PreviousOutputID: o.ID, OwnerID: ownerID, Amount: o.Amount})
		total += o.Amount
		if total >= original.Amount {
			break
		}
	}
	if total < original.Amount {
		return chain.Transaction{}, ErrInsufficientFunds
	}

	var receiverID int
	for _, out := range original.Outputs {
		if out.RecipientID != ownerID {
			receiverID = out.RecipientID
			break
		}
	}

	rebuilt := chain.NewTransaction(original.SenderAddress, original.ReceiverAddress, ownerID, receiverID, original.Amount, inputs, original.CreationTime)
	rebuilt.ID = original.ID
	for i := range rebuilt.Outputs {
		rebuilt.Outputs[i].ID = original.ID
	}
	if err := rebuilt.Sign(priv); err != nil {
		return chain.Transaction{}, err
	}
	return rebuilt, nil
}
