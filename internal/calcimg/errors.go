// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import "errors"

// Fatal errors abort the current operation regardless of repair flags, per
// spec.md's two-band error taxonomy (§7). Recoverable (repair-level) issues
// are represented separately by RepairIssue (see issue.go) so that soft
// mode can downgrade them to a warning and keep going.
var (
	// ErrMissingHeader is returned when the leading outer TLV tag bytes
	// do not match what the variant expects (e.g. not 80/81 0F).
	ErrMissingHeader = errors.New("calcimg: no header found")

	// ErrOutOfMemory mirrors RS_ERR_OUT_OF_MEMORY; in Go this only
	// arises from an explicit buffer-size guard, not allocator failure.
	ErrOutOfMemory = errors.New("calcimg: out of memory")

	// ErrUnknownFileFormat is returned by the container reader when the
	// input is neither recognizable hex nor binary TIFL data.
	ErrUnknownFileFormat = errors.New("calcimg: unknown file format")

	// ErrUnknownProgramType is returned when the calculator/data type
	// tags cannot be determined from the input.
	ErrUnknownProgramType = errors.New("calcimg: unknown program type")

	// ErrMissingKey is returned when no key (file or built-in) matches
	// the image's key ID.
	ErrMissingKey = errors.New("calcimg: no matching key found")

	// ErrKeySyntax is returned when a key file's text does not parse.
	ErrKeySyntax = errors.New("calcimg: invalid key file syntax")

	// ErrInvalidKey is returned when a private key fails its
	// self-consistency check (p*q != n, or d*e != 1 mod phi(n)).
	ErrInvalidKey = errors.New("calcimg: invalid key (factorization check failed)")

	// ErrMissingKeyComponent is returned when an operation needs a key
	// component (p, q, d) that the Key does not carry.
	ErrMissingKeyComponent = errors.New("calcimg: missing required key component")
)
