// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/nbc-chain/nbc/pkg/walletkey"
)

// Sign signs the transaction's id under priv and records the signature.
// The id, not the raw field list, is what gets signed: the id is already
// a digest of every field that must be covered, and signing it directly
// means re-materialization (which preserves the original id across a
// changed set of inputs) reproduces a verifiable signature without
// re-deriving the digest machinery.
func (t *Transaction) Sign(priv *rsa.PrivateKey) error {
	digest := sha256.Sum256([]byte(t.ID))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	if err != nil {
		return err
	}
	t.Signature = sig
	return nil
}

// VerifySignature reports whether Signature verifies under SenderAddress.
func (t *Transaction) VerifySignature() bool {
	pub, err := walletkey.ParseAddress(t.SenderAddress)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(t.ID))
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], t.Signature) == nil
}
