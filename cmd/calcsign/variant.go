// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/saferwall/calcsign/internal/calcimg"
)

// variantKind names which of the four repair_ti*_{app,os} layouts (spec.md
// §4.3) an image belongs to, resolved from the CalcType/DataType pair
// internal/calcio.ReadImage's classify already filled in.
type variantKind int

const (
	variantUnknown variantKind = iota
	variantTI8xApp
	variantTI8xOS
	variantTI9xApp
	variantTI9xOS
)

func classifyVariant(img *calcimg.Image) (variantKind, error) {
	switch {
	case img.CalcType.IsTI8x() && img.DataType == calcimg.DataApp:
		return variantTI8xApp, nil
	case img.CalcType.IsTI8x() && img.DataType == calcimg.DataOS:
		return variantTI8xOS, nil
	case img.CalcType.IsTI9x() && img.DataType == calcimg.DataApp:
		return variantTI9xApp, nil
	case img.CalcType.IsTI9x() && img.DataType == calcimg.DataOS:
		return variantTI9xOS, nil
	default:
		return variantUnknown, calcimg.ErrUnknownProgramType
	}
}

func (k variantKind) String() string {
	switch k {
	case variantTI8xApp:
		return "ti8x-app"
	case variantTI8xOS:
		return "ti8x-os"
	case variantTI9xApp:
		return "ti9x-app"
	case variantTI9xOS:
		return "ti9x-os"
	default:
		return "unknown"
	}
}

var errUnsupportedOperation = errors.New("calcsign: operation not supported for this image variant")
