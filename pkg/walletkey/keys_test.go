// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package walletkey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressJSONRoundTrip(t *testing.T) {
	priv, err := Generate(1024)
	require.NoError(t, err)
	addr, err := AddressOf(&priv.PublicKey)
	require.NoError(t, err)

	data, err := json.Marshal(addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, addr, decoded)

	pub, err := ParseAddress(decoded)
	require.NoError(t, err)
	require.True(t, pub.Equal(&priv.PublicKey))
}

func TestAddressJSONRejectsInvalidBase64(t *testing.T) {
	var a Address
	err := json.Unmarshal([]byte(`"not-valid-base64!!"`), &a)
	require.Error(t, err)
}

func TestGenerateAndParseAddressRoundTrip(t *testing.T) {
	priv, err := Generate(1024)
	require.NoError(t, err)
	addr, err := AddressOf(&priv.PublicKey)
	require.NoError(t, err)
	pub, err := ParseAddress(addr)
	require.NoError(t, err)
	require.True(t, pub.Equal(&priv.PublicKey))
}
