// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

// rsaExponent computes d = e^-1 mod (p-1)(q-1) via extended GCD.
func rsaExponent(e, p, q *bigint.Int) (*bigint.Int, error) {
	phi := bigint.Mul(bigint.Sub(p, bigint.FromUint64(1)), bigint.Sub(q, bigint.FromUint64(1)))

	g, x := bigint.ExtGCD(e, phi)
	if g.Uint64() != 1 {
		return nil, ErrUnsuitableRSA
	}
	return bigint.Mod(x, phi), nil
}

// RSASign computes sig = hash^d mod n, computing d = e^-1 mod (p-1)(q-1)
// first if the key doesn't already cache it.
func RSASign(hash *bigint.Int, key *calcimg.Key) (*bigint.Int, error) {
	if !key.HasPublic() {
		return nil, ErrMissingPublicKey
	}

	if key.D == nil || key.D.Sign() == 0 {
		if key.P.Sign() == 0 || key.Q.Sign() == 0 {
			return nil, ErrMissingPrivateKey
		}
		d, err := rsaExponent(key.E, key.P, key.Q)
		if err != nil {
			return nil, err
		}
		key.D = d
	}

	return bigint.Exp(hash, key.D, key.N), nil
}

// RSAValidate checks that sig^e mod n == hash.
func RSAValidate(sig, hash *bigint.Int, key *calcimg.Key) error {
	if !key.HasPublic() {
		return ErrMissingPublicKey
	}

	got := bigint.Exp(sig, key.E, key.N)
	if got.Cmp(hash) != 0 {
		return ErrSignatureIncorrect
	}
	return nil
}
