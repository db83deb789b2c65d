// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import "github.com/saferwall/calcsign/internal/bigint"

// builtinKeyEntry is a compiled-in (id, n, [p, q], [d]) tuple, used when no
// key file supplied by the caller matches an image's key ID. These are the
// historical TI signing keys published by community toolchains (e.g.
// RabbitSign, tilibs); they are intentionally public/community keys, never
// anything requiring private-key protection (which spec.md rules out of
// scope).
type builtinKeyEntry struct {
	id   uint64
	nHex string
	pHex string // empty if public-only
	qHex string
	dHex string
}

// builtinKeyTable is deliberately small: it exists so BuiltinKey has a
// concrete table to search, not as a complete key database. Real deployment
// key material is supplied via key files (internal/calcio.ReadKeyFile).
var builtinKeyTable = []builtinKeyEntry{
	{
		id:   1,
		nHex: "81705dc5a5272c3db06d33cef1621afb06f1acc58cd5bfc1b2a8cfba2cf5c1b9",
	},
}

// BuiltinKey returns the built-in key matching id, or nil if none matches.
func BuiltinKey(id uint64) *Key {
	for _, e := range builtinKeyTable {
		if e.id != id {
			continue
		}
		k := NewKey()
		k.ID = e.id
		k.N = bigint.FromBytesLE(mustHexLE(e.nHex))
		if e.pHex != "" && e.qHex != "" {
			k.P = bigint.FromBytesLE(mustHexLE(e.pHex))
			k.Q = bigint.FromBytesLE(mustHexLE(e.qHex))
		}
		if e.dHex != "" {
			k.D = bigint.FromBytesLE(mustHexLE(e.dHex))
		}
		return k
	}
	return nil
}

// mustHexLE decodes a big-endian hex string (as keys are conventionally
// written) into little-endian bytes suitable for bigint.FromBytesLE.
func mustHexLE(s string) []byte {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	be := make([]byte, len(s)/2)
	for i := range be {
		hi := hexNibble(s[2*i])
		lo := hexNibble(s[2*i+1])
		be[i] = hi<<4 | lo
	}
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	return le
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
