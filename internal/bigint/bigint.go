// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bigint wraps math/big with the little-endian import/export and
// number-theoretic helpers the signature engine needs: Legendre symbols,
// extended GCD, and the modular square roots used by Rabin signing.
package bigint

import "math/big"

// Int is an arbitrary-precision signed integer. It owns its storage; there
// are no shared references between instances.
type Int struct {
	v *big.Int
}

// New returns the zero value.
func New() *Int {
	return &Int{v: new(big.Int)}
}

// FromUint64 returns n as an Int.
func FromUint64(n uint64) *Int {
	return &Int{v: new(big.Int).SetUint64(n)}
}

// FromBytesLE imports b as an unsigned integer in little-endian byte order.
func FromBytesLE(b []byte) *Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return &Int{v: new(big.Int).SetBytes(be)}
}

// BytesLE exports the absolute value of x as little-endian bytes, with no
// leading (i.e. trailing, in LE order) zero byte once the sign bit is
// dropped. Returns an empty slice for zero.
func (x *Int) BytesLE() []byte {
	be := x.v.Bytes()
	le := make([]byte, len(be))
	for i, c := range be {
		le[len(be)-1-i] = c
	}
	return le
}

// Sign returns -1, 0, or 1 depending on the sign of x.
func (x *Int) Sign() int { return x.v.Sign() }

// Uint64 returns the low 64 bits of x.
func (x *Int) Uint64() uint64 { return x.v.Uint64() }

// Mod8 returns x mod 8 as an int, assuming x is non-negative.
func (x *Int) Mod8() int {
	var m big.Int
	m.Mod(x.v, big.NewInt(8))
	return int(m.Int64())
}

// Cmp compares x and y as math/big.Int.Cmp does.
func (x *Int) Cmp(y *Int) int { return x.v.Cmp(y.v) }

// Mul returns x*y.
func Mul(x, y *Int) *Int {
	return &Int{v: new(big.Int).Mul(x.v, y.v)}
}

// Add returns x+y.
func Add(x, y *Int) *Int {
	return &Int{v: new(big.Int).Add(x.v, y.v)}
}

// Sub returns x-y.
func Sub(x, y *Int) *Int {
	return &Int{v: new(big.Int).Sub(x.v, y.v)}
}

// Mod returns x mod m, always non-negative (Euclidean mod, matching GMP's
// mpz_mod).
func Mod(x, m *Int) *Int {
	return &Int{v: new(big.Int).Mod(x.v, m.v)}
}

// Exp returns x^y mod m.
func Exp(x, y, m *Int) *Int {
	return &Int{v: new(big.Int).Exp(x.v, y.v, m.v)}
}

// ExtGCD computes g = gcd(a, b) and x such that a*x + b*y = g for some y,
// mirroring GMP's mpz_gcdext(g, x, nil, a, b) usage in the original
// signer (only the Bézout coefficient for a is needed).
func ExtGCD(a, b *Int) (g, x *Int) {
	var bg, bx big.Int
	bg.GCD(&bx, nil, a.v, b.v)
	return &Int{v: &bg}, &Int{v: &bx}
}

// Rsh returns x >> n (floor division by 2^n), matching GMP's
// mpz_fdiv_q_2exp for non-negative x.
func Rsh(x *Int, n uint) *Int {
	return &Int{v: new(big.Int).Rsh(x.v, n)}
}

// Legendre returns the Legendre symbol (a|p) for an odd prime p: 1 if a is a
// nonzero quadratic residue mod p, -1 if it is a non-residue, 0 if a === 0
// (mod p).
func Legendre(a, p *Int) int {
	one := big.NewInt(1)
	pm1 := new(big.Int).Sub(p.v, one)
	exp := pm1.Rsh(pm1, 1)
	r := new(big.Int).Exp(a.v, exp, p.v)
	switch {
	case r.Sign() == 0:
		return 0
	case r.Cmp(one) == 0:
		return 1
	default:
		return -1
	}
}
