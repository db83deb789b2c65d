// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package calcimg holds the in-memory representation of a calculator Flash
// image or OS, its key, and the TLV-addressable header fields used to
// locate and repair them. It is the Go analogue of saferwall/pe's File
// type, adapted from a PE's section/directory model to the TI flash image's
// page/header/signature model.
package calcimg

import "github.com/saferwall/calcsign/internal/tlv"

// CalcType identifies the target calculator family, which in turn selects
// the signature scheme and header layout rules.
type CalcType byte

const (
	CalcUnknown CalcType = 0
	CalcTI73    CalcType = 0x74
	CalcTI83P   CalcType = 0x73
	CalcTI89    CalcType = 0x98
	CalcTI92P   CalcType = 0x88
)

// IsTI8x reports whether c is a Z80-family calculator (TI-73/83+).
func (c CalcType) IsTI8x() bool { return c == CalcTI73 || c == CalcTI83P }

// IsTI9x reports whether c is a 68k-family calculator (TI-89/92+).
func (c CalcType) IsTI9x() bool { return c == CalcTI89 || c == CalcTI92P }

// DataType identifies what kind of payload Data carries.
type DataType byte

const (
	DataUnknown     DataType = 0
	DataOS          DataType = 0x23
	DataApp         DataType = 0x24
	DataCertificate DataType = 0x25
)

// HashType selects the digest algorithm used by the signature engine.
type HashType int

const (
	HashMD5 HashType = iota
	HashSHA256
)

// PageSize is the size, in bytes, of a single Flash page. Signatures must
// not span a page boundary, and the first byte of every page has a special
// meaning (erased vs. uninitialized).
const PageSize = 0x4000

// uninitializedPageByte marks a page that set_length grew into, distinct
// from FillByte so the boot code can tell "never written" from "erased".
const uninitializedPageByte = 0x42

// FillByte is the padding value set_length uses for ordinary new bytes.
const FillByte = 0xFF

// Image is a mutable record of a calculator program or OS image: the
// principal payload buffer, an optional detached header (TI-8x OS only),
// an optional detached signature (TI-8x OS only), and the input file's
// page-number assignment.
type Image struct {
	CalcType CalcType
	DataType DataType
	HashType HashType

	// Data is the principal byte buffer. For apps the signature is
	// appended directly into Data; for TI-8x OS images it stays in
	// Signature instead.
	Data []byte

	// Header is the detached OS header, populated only for TI-8x OS
	// images (where the OS header travels separately from page data).
	Header []byte

	// Signature is the detached OS signature, populated only for TI-8x
	// OS images.
	Signature []byte

	// PageNumbers is the ordered sequence of 16-bit page indices the
	// input hex file assigned to each PageSize-byte chunk of Data.
	PageNumbers []uint16
}

// New returns an empty image.
func New() *Image {
	return &Image{}
}

// Append grows Data by the given bytes, preserving everything already
// there. Amortized O(1) per append, mirroring RabbitSign's
// rs_program_append_data doubling-plus-slack growth.
func (img *Image) Append(b []byte) {
	img.Data = append(img.Data, b...)
}

// SetLength truncates Data to n bytes, or extends it with FillByte,
// except that the first byte of every new PageSize-aligned page is written
// as uninitializedPageByte instead, so newly-grown, never-written pages are
// distinguishable from pages the device has erased to all-FF.
func (img *Image) SetLength(n int) {
	if n <= len(img.Data) {
		img.Data = img.Data[:n]
		return
	}

	old := len(img.Data)
	grown := make([]byte, n)
	copy(grown, img.Data)
	for i := old; i < n; i++ {
		grown[i] = FillByte
	}
	for i := (old + PageSize - 1) &^ (PageSize - 1); i < n; i += PageSize {
		grown[i] = uninitializedPageByte
	}
	img.Data = grown
}

// KeyID reads the numeric key-ID field -- tag 0x8010 on Z80-layout images,
// or 0x8110 on 68k-layout images (when Data[0] == 0x81) -- from whichever
// of Header or the first 128 bytes of Data is populated. The search starts
// inside the outer TLV (80/81 0F ...), whose declared length spans the
// whole image.
func (img *Image) KeyID() uint32 {
	src := img.Header
	if len(src) == 0 {
		n := len(img.Data)
		if n > 128 {
			n = 128
		}
		src = img.Data[:n]
	}
	if len(src) == 0 {
		return 0
	}
	if len(src) >= 2 && src[1]&0xf0 == 0x00 {
		if start, _, err := tlv.DecodeHeader(src); err == nil && start <= len(src) {
			src = src[start:]
		}
	}

	tag := uint16(0x8010)
	if len(img.Data) > 0 && img.Data[0] == 0x81 {
		tag = 0x8110
	}
	return tlv.ReadNumeric(tlv.NewMatch(tag), src)
}
