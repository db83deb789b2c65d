// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLengthPadsWithPageMarkers(t *testing.T) {
	img := New()
	img.SetLength(0x3FC0)
	img.SetLength(0x4001)

	require.Len(t, img.Data, 0x4001)
	require.Equal(t, byte(uninitializedPageByte), img.Data[0x4000])
	// everything else in the grown region is the ordinary fill byte.
	for i := 0x3FC0; i < 0x4000; i++ {
		require.Equal(t, byte(FillByte), img.Data[i], "offset %#x", i)
	}
}

func TestSetLengthTruncates(t *testing.T) {
	img := New()
	img.Append([]byte{1, 2, 3, 4, 5})
	img.SetLength(3)
	require.Equal(t, []byte{1, 2, 3}, img.Data)
}

func TestAppendPreservesExistingBytes(t *testing.T) {
	img := New()
	img.Append([]byte{1, 2, 3})
	img.Append([]byte{4, 5})
	require.Equal(t, []byte{1, 2, 3, 4, 5}, img.Data)
}

func TestKeyIDZ80Layout(t *testing.T) {
	img := New()
	img.Data = []byte{0x80, 0x0F, 0, 0, 0, 0, 0x80, 0x12, 0xAB, 0xCD}
	require.Equal(t, uint32(0xABCD), img.KeyID())
}

func TestKeyID68kLayout(t *testing.T) {
	img := New()
	img.Data = []byte{0x81, 0x0F, 0, 0, 0, 0, 0x81, 0x11, 0x07}
	require.Equal(t, uint32(0x07), img.KeyID())
}

func TestKeyIDFromDetachedHeader(t *testing.T) {
	img := New()
	img.Data = []byte{0x80, 0x0F, 0, 0, 0, 0}
	img.Header = []byte{0x80, 0x0F, 0, 0, 0, 0, 0x80, 0x11, 0x05}
	require.Equal(t, uint32(0x05), img.KeyID())
}
