// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeLengthRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		size int
	}{
		{"inline", []byte{0x80, 0x05, 1, 2, 3, 4, 5}, 5},
		{"0x0D", []byte{0x80, 0x0D, 0x07, 0, 0, 0, 0, 0, 0, 0}, 7},
		{"0x0E", []byte{0x80, 0x0E, 0x00, 0x0A, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 10},
		{"0x0F", []byte{0x80, 0x0F, 0x00, 0x00, 0x00, 0x0B, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, size, err := DecodeHeader(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.size, size)

			before := append([]byte(nil), tt.data...)
			require.NoError(t, SetLength(tt.data, size))
			require.Equal(t, before, tt.data)
			_ = start
		})
	}
}

func TestDecodeHeaderRejectsTruncatedMarkerBytes(t *testing.T) {
	require.ErrorIs(t, decodeHeaderErr(t, []byte{0x80}), ErrTruncated)
	require.ErrorIs(t, decodeHeaderErr(t, []byte{0x80, 0x0D, 0x07}[:2]), ErrTruncated)
	require.ErrorIs(t, decodeHeaderErr(t, []byte{0x80, 0x0E, 0x00}), ErrTruncated)
	require.ErrorIs(t, decodeHeaderErr(t, []byte{0x80, 0x0F, 0x00, 0x00, 0x00}), ErrTruncated)
}

func decodeHeaderErr(t *testing.T, data []byte) error {
	t.Helper()
	_, _, err := DecodeHeader(data)
	return err
}

func TestSetLengthTooSmallLeavesBufferUnchanged(t *testing.T) {
	data := []byte{0x80, 0x05, 1, 2, 3, 4, 5}
	before := append([]byte(nil), data...)

	err := SetLength(data, 0xFFFFFFF) // far beyond inline marker's 0x0C cap
	require.ErrorIs(t, err, ErrFieldTooSmall)
	require.Equal(t, before, data)
}

func TestSetLengthCapacities(t *testing.T) {
	require.NoError(t, SetLength([]byte{0x80, 0x00, 0}, 0x0C))
	require.ErrorIs(t, SetLength([]byte{0x80, 0x00, 0}, 0x0D), ErrFieldTooSmall)

	require.NoError(t, SetLength([]byte{0x80, 0x0D, 0, 0}, 0xFF))
	require.ErrorIs(t, SetLength([]byte{0x80, 0x0D, 0, 0}, 0x100), ErrFieldTooSmall)

	require.NoError(t, SetLength([]byte{0x80, 0x0E, 0, 0, 0}, 0xFFFF))
	require.ErrorIs(t, SetLength([]byte{0x80, 0x0E, 0, 0, 0}, 0x10000), ErrFieldTooSmall)
}

// S4 from the testable-properties scenarios.
func TestFindFieldWalk(t *testing.T) {
	data := []byte{0x80, 0x81, 0xAB, 0x80, 0x42, 0x11, 0x22}

	f, err := Find(NewMatch(0x8080), data)
	require.NoError(t, err)
	require.Equal(t, Field{Head: 0, Start: 2, Size: 1}, f)

	f, err = Find(NewMatch(0x8040), data)
	require.NoError(t, err)
	require.Equal(t, Field{Head: 3, Start: 5, Size: 2}, f)

	_, err = Find(NewMatch(0x8070), data)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindFieldDoesNotReadPastEnd(t *testing.T) {
	// A field header claims a length that runs off the end of the slice.
	data := []byte{0x80, 0x0D, 0xFF} // 0x0D marker -> 255-byte value, but slice ends here
	_, err := Find(NewMatch(0x8080), data)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadNumericField(t *testing.T) {
	data := []byte{0x80, 0x81, 0x2A}
	require.Equal(t, uint32(0x2A), ReadNumeric(NewMatch(0x8080), data))

	require.Equal(t, uint32(0), ReadNumeric(NewMatch(0x9090), data))
}
