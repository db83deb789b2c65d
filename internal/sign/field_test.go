// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saferwall/calcsign/internal/bigint"
)

func TestRabinSignatureFieldRoundTripFZero(t *testing.T) {
	sig := bigint.FromBytesLE([]byte{0x01, 0x02, 0x03})
	encoded := EncodeRabinSignature(sig, 0)

	require.Equal(t, []byte{0x02, 0x3E, 0x00, 0x03, 0x01, 0x02, 0x03, 0x00}, encoded)

	got, f, consumed, err := DecodeRabinSignature(encoded)
	require.NoError(t, err)
	require.Equal(t, 0, f)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, 0, got.Cmp(sig))
}

func TestRabinSignatureFieldRoundTripFNonZero(t *testing.T) {
	sig := bigint.FromBytesLE([]byte{0xAA, 0xBB})
	encoded := EncodeRabinSignature(sig, 3)

	require.Equal(t, []byte{0x02, 0x3E, 0x00, 0x02, 0xAA, 0xBB, 0x01, 0x03}, encoded)

	got, f, consumed, err := DecodeRabinSignature(encoded)
	require.NoError(t, err)
	require.Equal(t, 3, f)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, 0, got.Cmp(sig))
}

func TestRSASignatureFieldRoundTrip(t *testing.T) {
	sig := bigint.FromBytesLE([]byte{0x10, 0x20, 0x30, 0x40})
	encoded := EncodeRSASignature(sig)

	require.Equal(t, []byte{0x02, 0x3E, 0x00, 0x04, 0x10, 0x20, 0x30, 0x40}, encoded)

	got, consumed, err := DecodeRSASignature(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, 0, got.Cmp(sig))
}

func TestAcceptsSignatureTagAcceptsHistoricalNibble(t *testing.T) {
	// Known source ambiguity (i): 0x2D was used historically where 0x3E
	// is shipped; validators must accept either type nibble.
	sig := bigint.FromBytesLE([]byte{0x01})
	encoded := EncodeRSASignature(sig)
	encoded[1] = 0x2E // type nibble 0x2, same 0x0E length marker

	got, _, err := DecodeRSASignature(encoded)
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(sig))
}

func TestDecodeRabinSignatureRejectsWrongTag(t *testing.T) {
	_, _, _, err := DecodeRabinSignature([]byte{0x01, 0x3E, 0x00, 0x01, 0xAB, 0x00})
	require.ErrorIs(t, err, ErrNotASignature)
}

func TestDecodeRabinSignatureRejectsTruncatedBuffer(t *testing.T) {
	// Length claims 4 value bytes but only 1 is present.
	_, _, _, err := DecodeRabinSignature([]byte{0x02, 0x3E, 0x00, 0x04, 0xAB})
	require.ErrorIs(t, err, ErrNotASignature)
}
