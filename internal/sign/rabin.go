// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

// ftab is the lookup table that selects the f-transform multiplier from
// (p mod 8, q mod 8, sign of (m'|p), sign of (m'|q)). 99 marks a
// combination no multiplier in {-2, -1, 1, 2} can fix: p and q share a
// residue class mod 8 while the two symbols differ, so every multiplier
// changes both symbols alike. Transcribed directly from RabbitSign's rabin.c so the four
// equally valid signatures it can produce for a given key match byte for
// byte.
var ftab = [36]int{
	// p === 3, q === 3
	2, 99, 99, 1,
	// p === 3, q === 5
	2, 1, 0, 3,
	// p === 3, q === 7
	2, 3, 0, 1,
	// p === 5, q === 3
	2, 0, 1, 3,
	// p === 5, q === 5
	2, 99, 99, 3,
	// p === 5, q === 7
	2, 3, 1, 0,
	// p === 7, q === 3
	2, 0, 3, 1,
	// p === 7, q === 5
	2, 1, 3, 0,
	// p === 7, q === 7
	2, 99, 99, 1,
}

// applyF computes the T_f transform of m modulo n: m' = 256m+1, then
// negated and/or doubled according to f ∈ {0,1,2,3}, meaning multiply by
// {-2, -1, 1, 2} respectively.
func applyF(m, n *bigint.Int, f int) *bigint.Int {
	mp := bigint.Add(bigint.Mul(m, bigint.FromUint64(256)), bigint.FromUint64(1))

	switch f {
	case 0:
		doubled := bigint.Add(mp, mp)
		return bigint.Mod(bigint.Sub(n, doubled), n)
	case 1:
		return bigint.Mod(bigint.Sub(n, mp), n)
	case 2:
		return bigint.Mod(mp, n)
	case 3:
		return bigint.Mod(bigint.Add(mp, mp), n)
	default:
		return bigint.Mod(mp, n)
	}
}

// sqrtModPrime computes a square root of x modulo the prime p, where p ≡ 3,
// 5, or 7 (mod 8) and (x|p) = 1 is assumed. Primes ≡ 1 (mod 8) are rejected
// by the caller before this is reached.
func sqrtModPrime(x, p *bigint.Int) *bigint.Int {
	if p.Mod8() == 5 {
		return sqrtModP5(x, p)
	}
	return sqrtModP3(x, p)
}

// sqrtModP3 handles p ≡ 3 (mod 4) (which covers p ≡ 3 and p ≡ 7 mod 8):
// root = x^((p+1)/4) mod p.
func sqrtModP3(x, p *bigint.Int) *bigint.Int {
	exp := bigint.Add(p, bigint.FromUint64(1))
	exp = shiftRight2(exp)
	return bigint.Exp(x, exp, p)
}

// sqrtModP5 handles p ≡ 5 (mod 8): v = x^((p+3)/8) mod p; if v² != x mod p,
// multiply by 2^((p-1)/4) mod p, a square root of -1.
func sqrtModP5(x, p *bigint.Int) *bigint.Int {
	exp := shiftRight3(bigint.Add(p, bigint.FromUint64(3)))
	v := bigint.Exp(x, exp, p)

	check := bigint.Mod(bigint.Sub(bigint.Mul(v, v), x), p)
	if check.Sign() == 0 {
		return v
	}

	negOneRootExp := shiftRight2(bigint.Sub(p, bigint.FromUint64(1)))
	negOneRoot := bigint.Exp(bigint.FromUint64(2), negOneRootExp, p)
	return bigint.Mod(bigint.Mul(v, negOneRoot), p)
}

// shiftRight2 computes floor(x/4), matching mpz_fdiv_q_2exp(_, _, 2).
func shiftRight2(x *bigint.Int) *bigint.Int {
	return bigint.Rsh(x, 2)
}

// shiftRight3 computes floor(x/8), matching mpz_fdiv_q_2exp(_, _, 3).
func shiftRight3(x *bigint.Int) *bigint.Int {
	return bigint.Rsh(x, 3)
}

// crtCombine computes x such that x ≡ r (mod p) and x ≡ s (mod q), via
// ((r-s) * qinv mod p) * q + s.
func crtCombine(r, s, p, q, qinv *bigint.Int) *bigint.Int {
	diff := bigint.Sub(r, s)
	t := bigint.Mod(bigint.Mul(diff, qinv), p)
	return bigint.Add(bigint.Mul(t, q), s)
}

// RabinSign computes the Rabin signature of hash using key, returning the
// signature integer and the chosen f value. rootnum selects which of the
// four valid roots is emitted: bit 0 negates the root mod p, bit 1 negates
// the root mod q.
func RabinSign(hash *bigint.Int, rootnum int, key *calcimg.Key) (sig *bigint.Int, f int, err error) {
	if !key.HasPublic() {
		return nil, 0, ErrMissingPublicKey
	}
	if key.P.Sign() == 0 || key.Q.Sign() == 0 {
		return nil, 0, ErrMissingPrivateKey
	}

	qinv := key.QInv
	if qinv == nil || qinv.Sign() == 0 {
		g, x := bigint.ExtGCD(key.Q, key.P)
		if g.Uint64() != 1 {
			return nil, 0, ErrUnsuitableRabin
		}
		qinv = bigint.Mod(x, key.P)
		key.QInv = qinv
	}

	mm := applyF(hash, key.N, 2)

	mLp := bigint.Legendre(mm, key.P)
	mLq := bigint.Legendre(mm, key.Q)

	pm8 := key.P.Mod8()
	qm8 := key.Q.Mod8()

	if pm8 == 1 || qm8 == 1 || pm8%2 == 0 || qm8%2 == 0 {
		return nil, 0, ErrUnsuitableRabin
	}

	idx := 0
	if mLp != 1 {
		idx += 1
	}
	if mLq != 1 {
		idx += 2
	}
	idx += ((qm8 - 3) / 2) * 4
	idx += ((pm8 - 3) / 2) * 12

	f = ftab[idx]
	if f == 99 {
		return nil, 0, ErrUnsuitableRabin
	}

	transformed := applyF(hash, key.N, f)
	r := sqrtModPrime(transformed, key.P)
	s := sqrtModPrime(transformed, key.Q)

	if rootnum&1 != 0 {
		r = bigint.Sub(key.P, r)
	}
	if rootnum&2 != 0 {
		s = bigint.Sub(key.Q, s)
	}

	return crtCombine(r, s, key.P, key.Q, qinv), f, nil
}

// RabinValidate checks that sig is a valid Rabin signature of hash under
// key, given the claimed f value: sig² mod n == T_f(hash) mod n.
func RabinValidate(sig *bigint.Int, f int, hash *bigint.Int, key *calcimg.Key) error {
	if !key.HasPublic() {
		return ErrMissingPublicKey
	}
	if f < 0 || f > 3 {
		return ErrSignatureIncorrect
	}

	lhs := bigint.Mod(bigint.Mul(sig, sig), key.N)
	rhs := applyF(hash, key.N, f)

	if lhs.Cmp(rhs) != 0 {
		return ErrSignatureIncorrect
	}
	return nil
}
