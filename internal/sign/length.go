// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import "github.com/saferwall/calcsign/internal/tlv"

// CanonicalLength returns the byte range the outer TLV header covers --
// header_start + header_size -- the range spec.md's design note (iii) says
// both signing and validating must hash, without running the repair pass
// first. Validate callers use this directly; Sign callers instead use the
// length the repair pass already established (which, for a clean image,
// agrees with this value). Returns tlv.ErrTruncated if data is too short
// to carry the outer header its own declared marker requires.
func CanonicalLength(data []byte) (int, error) {
	start, size, err := tlv.DecodeHeader(data)
	if err != nil {
		return 0, err
	}
	return start + size, nil
}
