// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package calcimg

import "github.com/saferwall/calcsign/internal/bigint"

// DefaultValidationExponent is the RSA validation exponent e used by
// convention for every TI-related RSA signature.
const DefaultValidationExponent = 17

// Key holds a public/private key pair for either the Rabin or RSA scheme.
// Public-only keys leave P, Q, and D nil/zero. Key owns its bigint storage
// outright; there is no shared reference with any Image.
type Key struct {
	Filename string
	ID       uint64

	N *bigint.Int // public modulus
	E *bigint.Int // validation exponent, defaults to 17

	P *bigint.Int // first factor (private; optional)
	Q *bigint.Int // second factor (private; optional)
	D *bigint.Int // signing exponent (private; optional)

	// QInv caches q^-1 mod p once computed, so repeated Rabin signing
	// with the same key doesn't redo the extended GCD.
	QInv *bigint.Int
}

// NewKey returns an empty key with E defaulted to 17.
func NewKey() *Key {
	return &Key{
		N:    bigint.New(),
		E:    bigint.FromUint64(DefaultValidationExponent),
		P:    bigint.New(),
		Q:    bigint.New(),
		D:    bigint.New(),
		QInv: bigint.New(),
	}
}

// HasPublic reports whether N is populated.
func (k *Key) HasPublic() bool { return k.N != nil && k.N.Sign() != 0 }

// HasPrivate reports whether the factors needed for Rabin signing, or the
// signing exponent needed for RSA signing, are present.
func (k *Key) HasPrivate() bool {
	hasFactors := k.P != nil && k.P.Sign() != 0 && k.Q != nil && k.Q.Sign() != 0
	hasD := k.D != nil && k.D.Sign() != 0
	return hasFactors || hasD
}
