// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

// rsaWideTestKey returns a private RSA key whose modulus is wider than a
// SHA-256 digest, so an image hash is below n as RSAValidate requires:
// p = 2^127-1 and q = 2^607-1 (both prime, neither === 1 mod 17).
func rsaWideTestKey() *calcimg.Key {
	k := calcimg.NewKey()
	k.P = mersenne(127)
	k.Q = mersenne(607)
	k.N = bigint.Mul(k.P, k.Q)
	return k
}

// mersenne returns 2^bits-1.
func mersenne(bits int) *bigint.Int {
	b := make([]byte, bits/8+1)
	for i := range b {
		b[i] = 0xFF
	}
	b[len(b)-1] = byte(1<<(bits%8) - 1)
	return bigint.FromBytesLE(b)
}

func TestSignValidateTI8xAppRoundTrip(t *testing.T) {
	key := rabinTestKey()
	img := calcimg.New()
	img.Data = []byte{0x80, 0x0F, 0, 0, 0, 6, 0x80, 0x80, 0x01, 0x2A}
	length := len(img.Data)

	require.NoError(t, SignTI8xApp(img, key, length, 0))
	require.Greater(t, len(img.Data), length)
	require.NoError(t, ValidateTI8xApp(img, key, length))
}

func TestSignTI8xAppRejectsTruncatedLength(t *testing.T) {
	key := rabinTestKey()
	img := calcimg.New()
	img.Data = []byte{0x01, 0x02}
	require.ErrorIs(t, SignTI8xApp(img, key, 10, 0), ErrTruncatedImage)
}

func TestValidateTI8xAppDetectsTamperedPayload(t *testing.T) {
	key := rabinTestKey()
	img := calcimg.New()
	img.Data = []byte{0x80, 0x0F, 0, 0, 0, 6, 0x80, 0x80, 0x01, 0x2A}
	length := len(img.Data)
	require.NoError(t, SignTI8xApp(img, key, length, 0))

	img.Data[0] ^= 0xFF
	require.Error(t, ValidateTI8xApp(img, key, length))
}

func TestSignValidateTI8xOSRoundTrip(t *testing.T) {
	key := rsaWideTestKey()
	img := calcimg.New()
	img.Header = []byte{0x80, 0x0F, 0, 0, 0, 4, 0x80, 0x70}
	img.Data = []byte{0x01, 0x02, 0x03, 0x04}

	require.NoError(t, SignTI8xOS(img, key))
	require.NotEmpty(t, img.Signature)
	require.NoError(t, ValidateTI8xOS(img, key))
}

func TestSignValidateTI9xRoundTrip(t *testing.T) {
	key := rsaWideTestKey()
	img := calcimg.New()
	img.Data = []byte{0x81, 0x0F, 0, 0, 0, 6, 0x81, 0x10, 0x01, 0x2A}
	length := len(img.Data)

	require.NoError(t, SignTI9x(img, key, length))
	require.NoError(t, ValidateTI9x(img, key, length))
}

func TestSignValidateTI9xSHA256(t *testing.T) {
	key := rsaWideTestKey()
	img := calcimg.New()
	img.HashType = calcimg.HashSHA256
	img.Data = []byte{0x80, 0x0F, 0, 0, 0, 6, 0x80, 0x10, 0x01, 0x2A}
	length := len(img.Data)

	require.NoError(t, SignTI9x(img, key, length))
	require.NoError(t, ValidateTI9x(img, key, length))
}
