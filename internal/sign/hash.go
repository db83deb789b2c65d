// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"crypto/md5"
	"crypto/sha256"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

// digest selects MD5 or SHA-256 per img.HashType and returns it as a
// little-endian big integer, the format both the Rabin f-transform and RSA
// exponentiation expect. MD5/SHA-256 are stdlib algorithms named directly
// by the wire format (spec.md §4.4.1), not an ecosystem choice -- there is
// no third-party hash package to prefer here.
func digest(img *calcimg.Image, b ...[]byte) *bigint.Int {
	if img.HashType == calcimg.HashSHA256 {
		h := sha256.New()
		for _, part := range b {
			h.Write(part)
		}
		return bigint.FromBytesLE(h.Sum(nil))
	}
	h := md5.New()
	for _, part := range b {
		h.Write(part)
	}
	return bigint.FromBytesLE(h.Sum(nil))
}

// HashTI8xApp hashes data[0:length], as rs_sign_ti8x_app does, with MD5
// unless img.HashType selects SHA-256.
func HashTI8xApp(img *calcimg.Image, length int) *bigint.Int {
	return digest(img, img.Data[:length])
}

// HashTI8xOS hashes header followed by the full data buffer, as
// rs_sign_ti8x_os does, with MD5 unless img.HashType selects SHA-256.
func HashTI8xOS(img *calcimg.Image) *bigint.Int {
	return digest(img, img.Header, img.Data)
}

// HashTI9x hashes data[0:length] with MD5 or SHA-256 depending on
// img.HashType. Per spec.md's design note (iii), both signing and
// validating must hash the same canonical range: the outer TLV length, not
// sometimes the declared header length and sometimes the full buffer
// length (an ambiguity present in the original source that this
// reimplementation resolves by construction -- callers always pass the
// outer-length range).
func HashTI9x(img *calcimg.Image, length int) *bigint.Int {
	return digest(img, img.Data[:length])
}
