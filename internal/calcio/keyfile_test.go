// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

func TestParseValueShortForm(t *testing.T) {
	// 2 hex digits of count (3), then 3 bytes 01 02 03, little-endian
	// import -> 0x030201.
	v, ok := parseValue("03010203")
	require.True(t, ok)
	require.Equal(t, uint64(0x030201), v.Uint64())
}

func TestParseValueLongForm(t *testing.T) {
	// 4 hex digits of count (2), then 2 bytes AA BB -> 0xBBAA.
	v, ok := parseValue("0002AABB")
	require.True(t, ok)
	require.Equal(t, uint64(0xBBAA), v.Uint64())
}

func TestReadKeyFileRSAStyle(t *testing.T) {
	// Key ID line (<11 chars), then n as a long-form value, then d.
	body := strings.Join([]string{
		"2A",
		"0001FD", // long-form: count=1, single byte 0xFD -> n = 253
		"0001FD",
	}, "\n") + "\n"

	key, err := ReadKeyFile(strings.NewReader(body), "rsa.key", false)
	require.NoError(t, err)
	require.Equal(t, uint64(0x2A), key.ID)
	require.Equal(t, uint64(0xFD), key.N.Uint64())
	require.True(t, key.D.Sign() != 0)
	require.Equal(t, uint64(calcimg.DefaultValidationExponent), key.E.Uint64())
}

// p and q are large enough that the encoded n line is at least 11 bytes
// long, the threshold ReadKeyFile uses to tell a Rabin-style n line apart
// from an RSA-style key-ID line.
var (
	testP = bigint.FromUint64(4294967311)
	testQ = bigint.FromUint64(4294967357)
)

func TestReadKeyFileRabinStyleThreeLines(t *testing.T) {
	n := bigint.Mul(testP, testQ)
	nLine := shortFormHex(n)
	require.GreaterOrEqual(t, len(nLine), 11)
	pLine := shortFormHex(testP)
	qLine := shortFormHex(testQ)

	body := strings.Join([]string{nLine, pLine, qLine}, "\n") + "\n"

	key, err := ReadKeyFile(strings.NewReader(body), "rabin.key", true)
	require.NoError(t, err)
	require.Equal(t, 0, key.N.Cmp(n))
	require.Equal(t, testP.Uint64(), key.P.Uint64())
	require.Equal(t, testQ.Uint64(), key.Q.Uint64())
}

func TestReadKeyFileRabinStyleRejectsBadFactorization(t *testing.T) {
	n := bigint.Mul(testP, testQ)
	nLine := shortFormHex(n)
	pLine := shortFormHex(testP)
	qLine := shortFormHex(bigint.FromUint64(testQ.Uint64() + 1)) // wrong factor

	body := strings.Join([]string{nLine, pLine, qLine}, "\n") + "\n"

	_, err := ReadKeyFile(strings.NewReader(body), "rabin.key", true)
	require.ErrorIs(t, err, calcimg.ErrInvalidKey)
}

func TestReadKeyFileEmptyIsSyntaxError(t *testing.T) {
	_, err := ReadKeyFile(strings.NewReader(""), "empty.key", false)
	require.ErrorIs(t, err, calcimg.ErrKeySyntax)
}

func TestParseKeyValue(t *testing.T) {
	v, err := ParseKeyValue(shortFormHex(bigint.FromUint64(17)))
	require.NoError(t, err)
	require.Equal(t, uint64(17), v.Uint64())

	_, err = ParseKeyValue("zz")
	require.ErrorIs(t, err, ErrKeyValueSyntax)
}

// shortFormHex encodes v using the 2-hex-digit-count form parseValue
// expects, for use as test fixture data.
func shortFormHex(v *bigint.Int) string {
	b := v.BytesLE()
	out := hexByte(byte(len(b)))
	for _, c := range b {
		out += hexByte(c)
	}
	return out
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
