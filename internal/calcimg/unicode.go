// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import (
	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16Field decodes a little-endian, NUL-terminated UTF-16 string
// out of a TLV field value, the way saferwall/pe's DecodeUTF16String reads
// a PE import table's Unicode strings. TI-9x header comment fields and
// some key-file program-name fields carry UTF-16 text; ASCII-only payloads
// still decode correctly since every ASCII code point is also valid
// UTF-16. Returns "" for an empty or all-zero value.
func DecodeUTF16Field(b []byte) (string, error) {
	// The terminator is a zero code unit, so only even offsets are checked.
	n := len(b) &^ 1
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			n = i
			break
		}
	}
	if n == 0 {
		return "", nil
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(b[:n])
	if err != nil {
		return "", err
	}
	return string(s), nil
}
