// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package repair

import (
	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/tlv"
)

// nineXKind distinguishes the app (0x81) and OS (0x80) 68k layouts that
// share a single repair implementation, per spec.md §4.3.3 and app9x.c's
// repair_app(app, flags, type) pattern.
type nineXKind struct {
	leadingByte     byte
	keyIDTag        uint16
	programImageTag uint16
}

var (
	nineXApp = nineXKind{leadingByte: 0x81, keyIDTag: 0x8110, programImageTag: 0x8170}
	nineXOS  = nineXKind{leadingByte: 0x80, keyIDTag: 0x8010, programImageTag: 0x8070}
)

// RepairTI9xApp implements spec.md §4.3.3 for the 68k application layout.
func RepairTI9xApp(img *calcimg.Image, flags Flags) (*calcimg.RepairIssue, error) {
	return repairNineX(img, nineXApp, flags)
}

// RepairTI9xOS implements spec.md §4.3.3 for the 68k OS layout.
func RepairTI9xOS(img *calcimg.Image, flags Flags) (*calcimg.RepairIssue, error) {
	return repairNineX(img, nineXOS, flags)
}

func repairNineX(img *calcimg.Image, kind nineXKind, flags Flags) (*calcimg.RepairIssue, error) {
	a := &accumulate{flags: flags}

	if len(img.Data) < 2 || img.Data[0] != kind.leadingByte {
		return nil, calcimg.ErrMissingHeader
	}

	headerStart, headerSize, err := tlv.DecodeHeader(img.Data)
	if err != nil {
		return nil, calcimg.ErrMissingHeader
	}
	length := len(img.Data)

	if flags.Has(RemoveOldSignature) {
		length = headerStart + headerSize
	}
	img.SetLength(length)

	if err := tlv.SetLength(img.Data, length-headerStart); err != nil {
		if err2 := a.issue(calcimg.IssueFieldTooSmall, "outer length too large for its marker"); err2 != nil {
			return a.result(), err2
		}
	}

	hdrEnd := length
	if hdrEnd > len(img.Data) {
		hdrEnd = len(img.Data)
	}
	region := img.Data[headerStart:hdrEnd]

	if _, err := tlv.Find(tlv.NewMatch(kind.keyIDTag), region); err != nil {
		if err2 := a.issue(calcimg.IssueMissingKeyID, "key ID field missing"); err2 != nil {
			return a.result(), err2
		}
	}

	if err := checkDateStamp(region, a); err != nil {
		return a.result(), err
	}

	imageField, err := tlv.Find(tlv.NewMatch(kind.programImageTag), region)
	if err != nil {
		if err2 := a.issue(calcimg.IssueMissingProgramImage, "program image field missing"); err2 != nil {
			return a.result(), err2
		}
	} else if (headerStart+imageField.Start)%2 != 0 {
		if err2 := a.issue(calcimg.IssueMisalignedProgramImage, "program image field does not start on a 2-byte boundary"); err2 != nil {
			return a.result(), err2
		}
	}

	return a.result(), nil
}
