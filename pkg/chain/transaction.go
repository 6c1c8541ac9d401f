// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain holds the wire types shared by every node: transactions,
// UTXO identities, blocks, the chain itself, and the sealed ring. None of
// these types know about locking, networking, or mining; they are the
// plain data model the rest of the system mutates under the node's lock,
// kept deliberately free of any RPC or wallet-lifecycle concerns.
package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/nbc-chain/nbc/pkg/walletkey"
)

// Address is a ring member's wire identity: the serialized form of its
// RSA public key.
type Address = walletkey.Address

// TransactionInput references a previously created TransactionOutput that
// is being spent. The triple (PreviousOutputID, OwnerID, Amount) must
// match the identity of the output it consumes.
type TransactionInput struct {
	PreviousOutputID string `json:"previous_output_id"`
	OwnerID          int    `json:"owner_id"`
	Amount           int64  `json:"amount"`
}

// TransactionOutput is a UTXO: a claim of Amount coins credited to
// RecipientID, created by the transaction whose id is ID. Two outputs are
// the "same" UTXO iff all three fields match; see matchesInput.
type TransactionOutput struct {
	ID          string `json:"id"`
	RecipientID int    `json:"recipient_id"`
	Amount      int64  `json:"amount"`
}

// matchesInput reports whether this output is the one an input claims to
// spend.
func (o TransactionOutput) matchesInput(owner int, in TransactionInput) bool {
	return o.ID == in.PreviousOutputID && o.RecipientID == owner && o.Amount == in.Amount
}

// MatchesInput exposes matchesInput for callers outside the package (the
// ledger needs it to locate the output an input consumes).
func (o TransactionOutput) MatchesInput(owner int, in TransactionInput) bool {
	return o.matchesInput(owner, in)
}

// Transaction moves Amount coins from SenderAddress to ReceiverAddress.
// Outputs always has exactly two entries once built by NewTransaction:
// the sender's change, then the receiver's credit.
type Transaction struct {
	ID              string              `json:"transaction_id"`
	SenderAddress   Address             `json:"sender_address"`
	ReceiverAddress Address             `json:"receiver_address"`
	Amount          int64               `json:"amount"`
	Inputs          []TransactionInput  `json:"inputs"`
	Outputs         []TransactionOutput `json:"outputs"`
	CreationTime    int64               `json:"creation_time"`
	Signature       []byte              `json:"signature"`
}

// NewTransaction builds a transaction spending inputs (already selected by
// the caller) to pay amount to receiverID, with change returning to
// senderID. The transaction is unsigned; call Sign before broadcasting it.
//
// senderID/receiverID are folded into the outputs but not stored directly
// on the transaction: validators recover the sender's id by matching
// SenderAddress against the ring rather than trusting a claimed id.
func NewTransaction(senderAddr, receiverAddr Address, senderID, receiverID int, amount int64, inputs []TransactionInput, creationTime int64) Transaction {
	id := computeTransactionID(senderAddr, receiverAddr, amount, inputs, creationTime)

	var total int64
	for _, in := range inputs {
		total += in.Amount
	}

	outputs := []TransactionOutput{
		{ID: id, RecipientID: senderID, Amount: total - amount},
		{ID: id, RecipientID: receiverID, Amount: amount},
	}

	return Transaction{
		ID:              id,
		SenderAddress:   senderAddr,
		ReceiverAddress: receiverAddr,
		Amount:          amount,
		Inputs:          inputs,
		Outputs:         outputs,
		CreationTime:    creationTime,
	}
}

// computeTransactionID hashes the payload with explicit field
// concatenation rather than a reflection-based encoder (encoding/gob,
// encoding/json) so that the digest is a stable function of these fields
// and nothing else; an extra struct tag or field reordering can't
// silently change every transaction id on the chain.
func computeTransactionID(sender, receiver Address, amount int64, inputs []TransactionInput, creationTime int64) string {
	h := sha256.New()
	h.Write([]byte(sender))
	h.Write([]byte(receiver))
	writeInt64(h, amount)
	for _, in := range inputs {
		h.Write([]byte(in.PreviousOutputID))
		writeInt64(h, int64(in.OwnerID))
		writeInt64(h, in.Amount)
	}
	writeInt64(h, creationTime)
	return hex.EncodeToString(h.Sum(nil))
}

func writeInt64(h interface{ Write([]byte) (int, error) }, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}
