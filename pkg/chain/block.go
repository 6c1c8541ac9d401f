// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"crypto/sha512"
	"encoding/hex"
)

// GenesisPreviousHash is the sentinel previous-hash value for the genesis
// block, which has no real predecessor.
const GenesisPreviousHash = "1"

// Block is a fixed-capacity batch of transactions sealed by proof-of-work.
// Genesis is index 0 and carries no transactions of its own; the bootstrap
// coin supply is seeded straight into the ledger (see GenesisSeedOutput)
// rather than wrapped in a synthetic, input-less transaction.
type Block struct {
	Index        uint64        `json:"index"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
	Nonce        uint64        `json:"nonce"`
	CurrentHash  string        `json:"current_hash"`
}

// NewBlock returns an open block ready to receive transactions.
func NewBlock(index uint64, previousHash string) Block {
	return Block{
		Index:        index,
		PreviousHash: previousHash,
		Transactions: make([]Transaction, 0),
	}
}

// NewGenesisBlock returns the sealed genesis block. Its hash is computed
// but carries no proof-of-work requirement; the PoW invariant only binds
// non-genesis blocks.
func NewGenesisBlock() Block {
	b := NewBlock(0, GenesisPreviousHash)
	b.CurrentHash = b.ComputeHash()
	return b
}

// GenesisSeedOutput is the single UTXO the genesis block credits to the
// bootstrap node: 100 coins per ring member, to be redistributed by the
// N-1 seed transactions bootstrap issues once the ring is sealed.
func GenesisSeedOutput(bootstrapID int, totalSupply int64) TransactionOutput {
	return TransactionOutput{ID: "genesis", RecipientID: bootstrapID, Amount: totalSupply}
}

// ComputeHash is the SHA-512 digest over (index, transactions, nonce,
// previous_hash), field for field, with the same explicit-encoding
// approach as transaction ids.
func (b *Block) ComputeHash() string {
	h := sha512.New()
	writeInt64(h, int64(b.Index))
	for _, tx := range b.Transactions {
		h.Write([]byte(tx.ID))
		h.Write([]byte(tx.SenderAddress))
		h.Write([]byte(tx.ReceiverAddress))
		writeInt64(h, tx.Amount)
		for _, in := range tx.Inputs {
			h.Write([]byte(in.PreviousOutputID))
			writeInt64(h, int64(in.OwnerID))
			writeInt64(h, in.Amount)
		}
		for _, out := range tx.Outputs {
			h.Write([]byte(out.ID))
			writeInt64(h, int64(out.RecipientID))
			writeInt64(h, out.Amount)
		}
		writeInt64(h, tx.CreationTime)
		h.Write(tx.Signature)
	}
	writeInt64(h, int64(b.Nonce))
	h.Write([]byte(b.PreviousHash))
	return hex.EncodeToString(h.Sum(nil))
}

// HasProofOfWork reports whether hashHex begins with difficulty hex zero
// digits.
func HasProofOfWork(hashHex string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hashHex) < difficulty {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hashHex[i] != '0' {
			return false
		}
	}
	return true
}

// Full reports whether the block has reached capacity and is ready to be
// sealed.
func (b *Block) Full(capacity int) bool {
	return len(b.Transactions) >= capacity
}

// TransactionIDs returns the set of transaction ids carried by the block,
// used to check whether a locally-known transaction was already confirmed
// by a peer's block.
func (b *Block) TransactionIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(b.Transactions))
	for _, tx := range b.Transactions {
		ids[tx.ID] = struct{}{}
	}
	return ids
}
