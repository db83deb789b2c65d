// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package tlv implements the tag+length+value field format used throughout
// calculator image headers and signatures: a two-byte tag, one of four
// length encodings selected by the low nibble of the second tag byte, and a
// value.
package tlv

import (
	"encoding/binary"
	"errors"
)

// ErrFieldTooSmall is returned by SetLength when the requested length
// exceeds what the field's length marker can represent.
var ErrFieldTooSmall = errors.New("tlv: field too small for requested length")

// ErrNotFound is returned by Find when no field matches the requested tag
// within the bounded search range.
var ErrNotFound = errors.New("tlv: field not found")

// ErrTruncated is returned by DecodeHeader when data is too short to hold
// the length-marker bytes its own first two bytes declare.
var ErrTruncated = errors.New("tlv: truncated header")

// Match is a tag match key: T1 is the high tag byte, T2High is the high
// nibble of the second tag byte (the type nibble; the low nibble, the
// length marker, is ignored when matching).
type Match struct {
	T1     byte
	T2High byte // already masked to 0xF0
}

// NewMatch builds a Match from a 16-bit tag such as 0x8080 or 0x8010.
func NewMatch(tag uint16) Match {
	return Match{T1: byte(tag >> 8), T2High: byte(tag) & 0xf0}
}

// Field describes the position of a decoded TLV field within its buffer.
type Field struct {
	Head  int // offset of the tag bytes
	Start int // offset of the value
	Size  int // length of the value
}

// DecodeHeader reads the length-marker-dependent header starting at data[0]
// and returns the offset (relative to data) where the value begins and its
// length. The low nibble of data[1] selects how many more bytes the header
// itself needs (0x0D: 1, 0x0E: 2, 0x0F: 4, anything else: 0, the length
// inline in the nibble) -- mirroring app8x.c/app9x.c/os8x.c's
// "length < 6" guards, but sized to the marker actually present instead of
// a blanket 6, since not every caller's marker is 0x0F. Returns ErrTruncated
// rather than indexing past data's end when data is shorter than that.
func DecodeHeader(data []byte) (start, size int, err error) {
	if len(data) < 2 {
		return 0, 0, ErrTruncated
	}
	marker := data[1] & 0x0f
	switch marker {
	case 0x0D:
		if len(data) < 3 {
			return 0, 0, ErrTruncated
		}
		return 3, int(data[2]), nil
	case 0x0E:
		if len(data) < 4 {
			return 0, 0, ErrTruncated
		}
		return 4, int(binary.BigEndian.Uint16(data[2:4])), nil
	case 0x0F:
		if len(data) < 6 {
			return 0, 0, ErrTruncated
		}
		return 6, int(binary.BigEndian.Uint32(data[2:6])), nil
	default:
		return 2, int(marker), nil
	}
}

// SetLength overwrites an existing TLV header's length bytes in place.
// Fails with ErrFieldTooSmall if size exceeds the capacity of the header's
// existing length marker, without modifying data.
func SetLength(data []byte, size int) error {
	marker := data[1] & 0x0f
	switch marker {
	case 0x0D:
		if size > 0xff {
			return ErrFieldTooSmall
		}
		data[2] = byte(size)
	case 0x0E:
		if size > 0xffff {
			return ErrFieldTooSmall
		}
		binary.BigEndian.PutUint16(data[2:4], uint16(size))
	case 0x0F:
		if size > 0xffffffff {
			return ErrFieldTooSmall
		}
		binary.BigEndian.PutUint32(data[2:6], uint32(size))
	default:
		if size > 0x0C {
			return ErrFieldTooSmall
		}
		data[1] = (data[1] & 0xf0) | byte(size)
	}
	return nil
}

// Find walks TLV fields forward from offset 0 within data, skipping each
// field by Start+Size, and returns the first field whose tag matches m. The
// walk never reads past len(data); a malformed length that would advance
// past the end of data ends the search with ErrNotFound.
func Find(m Match, data []byte) (Field, error) {
	pos := 0
	for pos < len(data) {
		if pos+2 > len(data) {
			break
		}
		if data[pos] == m.T1 && (data[pos+1]&0xf0) == m.T2High {
			start, size, err := DecodeHeader(data[pos:])
			if err != nil || pos+start+size > len(data) {
				break
			}
			return Field{Head: pos, Start: pos + start, Size: size}, nil
		}

		start, size, err := DecodeHeader(data[pos:])
		if err != nil {
			break
		}
		next := pos + start + size
		if next <= pos || next > len(data) {
			break
		}
		pos = next
	}
	return Field{}, ErrNotFound
}

// ReadNumeric finds the field matching m within data and, if present with a
// value of at most 4 bytes, returns the big-endian unsigned reading of its
// value. Otherwise it returns 0, matching RabbitSign's
// rs_get_numeric_field: absence or an oversized field is not an error.
func ReadNumeric(m Match, data []byte) uint32 {
	f, err := Find(m, data)
	if err != nil || f.Size > 4 {
		return 0
	}
	var v uint32
	for _, b := range data[f.Start : f.Start+f.Size] {
		v = (v << 8) | uint32(b)
	}
	return v
}
