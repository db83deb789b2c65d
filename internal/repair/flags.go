// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package repair implements the format-level normalizer that enforces
// header well-formedness, page-boundary placement of the signature,
// pad-byte workarounds for known boot-code bugs, and field-length
// re-encoding, ahead of signing or in place of it when re-validating an
// already-signed image.
package repair

// Flags is a bitmask of repair behaviors, mirroring the C source's
// RS_REPAIR_* flag constants.
type Flags uint8

const (
	// IgnoreWarnings demotes any would-be repair-level error to a
	// warning and lets the pass continue with its best-effort fix.
	IgnoreWarnings Flags = 1 << iota
	// RemoveOldSignature truncates data to header_start+header_size as
	// declared by the outer TLV length, discarding any trailing bytes a
	// previous signing pass appended.
	RemoveOldSignature
	// FixPageCount overwrites the page-count field with the true count
	// even when flags don't otherwise call for a fix.
	FixPageCount
	// FixOSSize overwrites the OS outer-length and program-image-length
	// fields with their true values.
	FixOSSize
	// ZealouslyPadApp emits an extra padding page, rather than erroring,
	// when the signature would otherwise span two pages.
	ZealouslyPadApp
)

// Has reports whether bit is set in f.
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }
