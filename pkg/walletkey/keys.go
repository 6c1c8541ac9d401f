// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package walletkey generates and serializes the RSA keypairs that back
// wallet addresses on the ring. The serialized public key doubles as the
// wallet's on-wire address, matching the original network's convention of
// using the address to mean "canonical serialized public key" rather than
// a hash of it.
package walletkey

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DefaultKeySize is the RSA modulus size used when a node generates its
// wallet keypair, matching the spec's 2048-4096 bit range.
const DefaultKeySize = 2048

// Address is the canonical wire form of a public key: the DER encoding of
// its SubjectPublicKeyInfo. Two addresses are equal iff the underlying
// public keys are equal, so Address is safe to use as a map key.
type Address string

// MarshalJSON encodes the address as base64 rather than a raw JSON
// string: Address holds arbitrary DER bytes, and a plain string encoding
// would silently corrupt any byte sequence that isn't valid UTF-8.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString([]byte(a)))
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *Address) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("walletkey: decode address: %w", err)
	}
	*a = Address(raw)
	return nil
}

// Generate creates a new RSA keypair of the given modulus size.
func Generate(bits int) (*rsa.PrivateKey, error) {
	if bits <= 0 {
		bits = DefaultKeySize
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("walletkey: generate key: %w", err)
	}
	return priv, nil
}

// AddressOf returns the wire address for a public key.
func AddressOf(pub *rsa.PublicKey) (Address, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("walletkey: marshal public key: %w", err)
	}
	return Address(der), nil
}

// ParseAddress recovers the public key a wire address was derived from.
func ParseAddress(addr Address) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey([]byte(addr))
	if err != nil {
		return nil, fmt.Errorf("walletkey: parse address: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("walletkey: address does not hold an RSA public key")
	}
	return pub, nil
}
