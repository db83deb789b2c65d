// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"encoding/binary"
	"errors"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/tlv"
)

// sigTagHigh and sigTagLow are the TLV tag bytes the signature field is
// emitted with: 0x02 0x3E -- a 16-bit big-endian length at offsets 2-3,
// value starting at offset 4. Per spec.md's design note (i), the source
// shipped 0x3E at call sites where commented-out code suggests 0x2D was
// once used; we emit 0x3E to match the source as shipped, but acceptsSignatureTag below
// takes either type nibble on validation.
const (
	sigTagHigh = 0x02
	sigTagLow  = 0x3E
)

// ErrNotASignature is returned when a byte range does not carry a
// recognizable signature TLV tag.
var ErrNotASignature = errors.New("sign: no signature field found")

// acceptsSignatureTag reports whether b looks like a signature field tag:
// 0x02 followed by a byte whose high nibble is 0x2 or 0x3 (both are
// accepted on validation; only 0x3E is ever emitted).
func acceptsSignatureTag(b []byte) bool {
	if len(b) < 2 || b[0] != sigTagHigh {
		return false
	}
	hi := b[1] & 0xf0
	return hi == 0x20 || hi == 0x30
}

// EncodeRabinSignature builds the trailing signature TLV for a Rabin
// signature: tag, 16-bit length, little-endian signature bytes, then the f
// marker (one zero byte if f==0, else 0x01 followed by f).
func EncodeRabinSignature(sig *bigint.Int, f int) []byte {
	sigBytes := sig.BytesLE()

	out := make([]byte, 4+len(sigBytes))
	out[0] = sigTagHigh
	out[1] = sigTagLow
	binary.BigEndian.PutUint16(out[2:4], uint16(len(sigBytes)))
	copy(out[4:], sigBytes)

	if f == 0 {
		out = append(out, 0x00)
	} else {
		out = append(out, 0x01, byte(f))
	}
	return out
}

// DecodeRabinSignature parses a trailing Rabin signature field from b,
// returning the signature integer, the f value, and the total number of
// bytes consumed.
func DecodeRabinSignature(b []byte) (sig *bigint.Int, f int, consumed int, err error) {
	if !acceptsSignatureTag(b) {
		return nil, 0, 0, ErrNotASignature
	}
	start, size, err := tlv.DecodeHeader(b)
	if err != nil || start+size > len(b) {
		return nil, 0, 0, ErrNotASignature
	}

	sig = bigint.FromBytesLE(b[start : start+size])
	pos := start + size

	if pos >= len(b) {
		return nil, 0, 0, ErrNotASignature
	}
	if b[pos] == 0 {
		return sig, 0, pos + 1, nil
	}
	if pos+1 >= len(b) {
		return nil, 0, 0, ErrNotASignature
	}
	return sig, int(b[pos+1]), pos + 2, nil
}

// EncodeRSASignature builds the trailing signature TLV for an RSA
// signature: tag, 16-bit length, little-endian signature bytes.
func EncodeRSASignature(sig *bigint.Int) []byte {
	sigBytes := sig.BytesLE()

	out := make([]byte, 4+len(sigBytes))
	out[0] = sigTagHigh
	out[1] = sigTagLow
	binary.BigEndian.PutUint16(out[2:4], uint16(len(sigBytes)))
	copy(out[4:], sigBytes)
	return out
}

// DecodeRSASignature parses a trailing RSA signature field from b.
func DecodeRSASignature(b []byte) (sig *bigint.Int, consumed int, err error) {
	if !acceptsSignatureTag(b) {
		return nil, 0, ErrNotASignature
	}
	start, size, err := tlv.DecodeHeader(b)
	if err != nil || start+size > len(b) {
		return nil, 0, ErrNotASignature
	}
	return bigint.FromBytesLE(b[start : start+size]), start + size, nil
}
