// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUTF16FieldDecodesASCIIAsUTF16(t *testing.T) {
	b := []byte{'H', 0, 'i', 0, 0, 0}
	s, err := DecodeUTF16Field(b)
	require.NoError(t, err)
	require.Equal(t, "Hi", s)
}

func TestDecodeUTF16FieldEmptyValue(t *testing.T) {
	s, err := DecodeUTF16Field(nil)
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestDecodeUTF16FieldNoTerminator(t *testing.T) {
	b := []byte{'O', 0, 'K', 0}
	s, err := DecodeUTF16Field(b)
	require.NoError(t, err)
	require.Equal(t, "OK", s)
}
