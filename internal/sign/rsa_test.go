// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
)

// rsaTestKey returns a small private RSA key: p=11, q=23, n=253,
// e=17 (default), with gcd(17, (p-1)(q-1)) == gcd(17, 220) == 1.
func rsaTestKey() *calcimg.Key {
	k := calcimg.NewKey()
	k.P = bigint.FromUint64(11)
	k.Q = bigint.FromUint64(23)
	k.N = bigint.Mul(k.P, k.Q)
	return k
}

func TestRSASignValidateRoundTrip(t *testing.T) {
	key := rsaTestKey()
	hash := bigint.FromUint64(17)

	sig, err := RSASign(hash, key)
	require.NoError(t, err)
	require.NoError(t, RSAValidate(sig, hash, key))
}

func TestRSASelfCheckProperty(t *testing.T) {
	// Property 2: (17^e)^d mod n == 17, i.e. encrypting then decrypting
	// the fixed value 17 with the key's own exponents recovers it.
	key := rsaTestKey()
	seventeen := bigint.FromUint64(17)

	sig, err := RSASign(seventeen, key)
	require.NoError(t, err)

	viaPublic := bigint.Exp(seventeen, key.E, key.N)
	viaPrivate := bigint.Exp(viaPublic, key.D, key.N)
	require.Equal(t, 0, viaPrivate.Cmp(seventeen))
	require.NoError(t, RSAValidate(sig, seventeen, key))
}

func TestRSASignCachesD(t *testing.T) {
	key := rsaTestKey()
	require.Equal(t, 0, key.D.Sign())

	_, err := RSASign(bigint.FromUint64(5), key)
	require.NoError(t, err)
	require.NotEqual(t, 0, key.D.Sign())

	cached := key.D
	_, err = RSASign(bigint.FromUint64(9), key)
	require.NoError(t, err)
	require.Equal(t, 0, cached.Cmp(key.D))
}

func TestRSAValidateRejectsWrongHash(t *testing.T) {
	key := rsaTestKey()
	sig, err := RSASign(bigint.FromUint64(17), key)
	require.NoError(t, err)

	err = RSAValidate(sig, bigint.FromUint64(18), key)
	require.ErrorIs(t, err, ErrSignatureIncorrect)
}

func TestRSASignMissingPrivateKey(t *testing.T) {
	key := calcimg.NewKey()
	key.N = bigint.FromUint64(253)
	_, err := RSASign(bigint.FromUint64(5), key)
	require.ErrorIs(t, err, ErrMissingPrivateKey)
}
