// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package sign implements the Rabin and RSA signature schemes calcsign uses
// to sign and validate calculator images: the f-transform and four-root
// selection for Rabin, exponent-17 RSA, and the hash selection (MD5 or
// SHA-256) that feeds both.
package sign

import "errors"

// These mirror the engine-visible error taxonomy in spec.md §4.4.5.
var (
	ErrMissingPublicKey   = errors.New("sign: public key missing")
	ErrMissingPrivateKey  = errors.New("sign: private key missing")
	ErrUnsuitableRabin    = errors.New("sign: unsuitable Rabin key")
	ErrUnsuitableRSA      = errors.New("sign: unsuitable RSA key")
	ErrSignatureIncorrect = errors.New("sign: signature incorrect")

	// ErrTruncatedImage is returned by the variant Sign/Validate entry
	// points when the caller-supplied canonical length reaches past the
	// end of the image's data buffer.
	ErrTruncatedImage = errors.New("sign: canonical length exceeds image data")
)
