// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sign

import "github.com/saferwall/calcsign/internal/calcimg"

// SignTI8xApp hashes data[0:length] and appends a Rabin signature field to
// img.Data, as rs_sign_ti8x_app does. length is the canonical byte range
// the repair engine established (the outer TLV length plus header_start).
func SignTI8xApp(img *calcimg.Image, key *calcimg.Key, length, rootnum int) error {
	if length > len(img.Data) {
		return ErrTruncatedImage
	}
	hash := HashTI8xApp(img, length)
	sig, f, err := RabinSign(hash, rootnum, key)
	if err != nil {
		return err
	}
	img.Data = append(img.Data[:length:length], EncodeRabinSignature(sig, f)...)
	return nil
}

// ValidateTI8xApp locates the trailing Rabin signature field at offset
// length in img.Data and checks it against the hash of data[0:length], as
// rs_validate_ti8x_app does.
func ValidateTI8xApp(img *calcimg.Image, key *calcimg.Key, length int) error {
	if length > len(img.Data) {
		return ErrTruncatedImage
	}
	hash := HashTI8xApp(img, length)
	sig, f, _, err := DecodeRabinSignature(img.Data[length:])
	if err != nil {
		return err
	}
	return RabinValidate(sig, f, hash, key)
}

// SignTI8xOS hashes img.Header ⧺ img.Data and stores the resulting RSA
// signature detached in img.Signature, as rs_sign_ti8x_os does.
func SignTI8xOS(img *calcimg.Image, key *calcimg.Key) error {
	hash := HashTI8xOS(img)
	sig, err := RSASign(hash, key)
	if err != nil {
		return err
	}
	img.Signature = EncodeRSASignature(sig)
	return nil
}

// ValidateTI8xOS checks the detached img.Signature against the hash of
// img.Header ⧺ img.Data, as rs_validate_ti8x_os does.
func ValidateTI8xOS(img *calcimg.Image, key *calcimg.Key) error {
	hash := HashTI8xOS(img)
	sig, _, err := DecodeRSASignature(img.Signature)
	if err != nil {
		return err
	}
	return RSAValidate(sig, hash, key)
}

// SignTI9x hashes data[0:length] and appends an RSA signature field to
// img.Data. It serves both the app (0x81) and OS (0x80) 68k variants: per
// app9x.c, rs_sign_ti9x_app and the OS path it shares both reduce to the
// same RSA signing call, distinguished only by the leading byte the repair
// engine already checked.
func SignTI9x(img *calcimg.Image, key *calcimg.Key, length int) error {
	if length > len(img.Data) {
		return ErrTruncatedImage
	}
	hash := HashTI9x(img, length)
	sig, err := RSASign(hash, key)
	if err != nil {
		return err
	}
	img.Data = append(img.Data[:length:length], EncodeRSASignature(sig)...)
	return nil
}

// ValidateTI9x locates the trailing RSA signature field at offset length
// in img.Data and checks it against the hash of data[0:length].
func ValidateTI9x(img *calcimg.Image, key *calcimg.Key, length int) error {
	if length > len(img.Data) {
		return ErrTruncatedImage
	}
	hash := HashTI9x(img, length)
	sig, _, err := DecodeRSASignature(img.Data[length:])
	if err != nil {
		return err
	}
	return RSAValidate(sig, hash, key)
}
