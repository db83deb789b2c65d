// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bigint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesLERoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		{0x01},
		{0x00, 0x01},
		{0xff, 0xee, 0xdd, 0x01},
	}

	for _, tt := range tests {
		x := FromBytesLE(tt)
		got := x.BytesLE()
		// trailing zero bytes (high-order in LE) are not preserved
		// once re-exported, since they carry no magnitude.
		trimmed := tt
		for len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0 {
			trimmed = trimmed[:len(trimmed)-1]
		}
		require.Equal(t, trimmed, got)
	}
}

func TestLegendreKnownResidues(t *testing.T) {
	p := FromUint64(7) // QRs mod 7: 1, 2, 4
	require.Equal(t, 1, Legendre(FromUint64(1), p))
	require.Equal(t, 1, Legendre(FromUint64(2), p))
	require.Equal(t, 1, Legendre(FromUint64(4), p))
	require.Equal(t, -1, Legendre(FromUint64(3), p))
	require.Equal(t, -1, Legendre(FromUint64(5), p))
	require.Equal(t, -1, Legendre(FromUint64(6), p))
	require.Equal(t, 0, Legendre(FromUint64(7), p))
}

func TestExtGCDBezout(t *testing.T) {
	a := FromUint64(240)
	b := FromUint64(46)
	g, x := ExtGCD(a, b)
	require.Equal(t, uint64(2), g.Uint64())
	// a*x === g (mod b)
	prod := Mod(Mul(a, x), b)
	require.Equal(t, Mod(g, b).Uint64(), prod.Uint64())
}

func TestMod8(t *testing.T) {
	require.Equal(t, 3, FromUint64(11).Mod8())
	require.Equal(t, 0, FromUint64(16).Mod8())
}
