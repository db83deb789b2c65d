// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package repair

import (
	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/tlv"
)

// headerSalvagePage is the page index the boot ROM stores the detached
// TI-8x OS header on, used to rebuild img.Header when the caller didn't
// supply one.
const headerSalvagePage = 0x1A

// validationByteOffsetLo and validationByteOffsetHi are the two
// canonical-value bytes os8x.c resets on every repair pass. Each byte
// accepts its canonical value or one alternate (the pre-canonicalization
// form some existing OSes ship), checked and rewritten independently:
// 0x56 accepts 0xFF or 0x5A (rewriting 0x5A to 0xFF), 0x57 accepts 0xA5 or
// 0xFF (rewriting 0xFF to 0xA5). Neither byte's validity depends on the
// other's value.
const (
	validationByteOffsetLo   = 0x56
	validationByteOffsetHi   = 0x57
	validationByteLoValue    = 0xFF
	validationByteLoAltValue = 0x5A
	validationByteHiValue    = 0xA5
	validationByteHiAltValue = 0xFF
)

// findPage returns the byte offset of pageNumber within img.Data, using
// img.PageNumbers (the hex file's page assignment), or ok=false if no
// page carries that number.
func findPage(img *calcimg.Image, pageNumber uint16) (offset int, ok bool) {
	for i, p := range img.PageNumbers {
		if p == pageNumber {
			return i * calcimg.PageSize, true
		}
	}
	return 0, false
}

// RepairTI8xOS implements spec.md §4.3.2: the Z80 OS repair pass.
func RepairTI8xOS(img *calcimg.Image, flags Flags) (*calcimg.RepairIssue, error) {
	a := &accumulate{flags: flags}

	// 1. Round data length up to a page multiple.
	img.SetLength(roundUpPage(len(img.Data)))

	// 2. Salvage the detached header from page 0x1A if absent.
	if len(img.Header) == 0 {
		if off, ok := findPage(img, headerSalvagePage); ok {
			end := off + 256
			if end > len(img.Data) {
				end = len(img.Data)
			}
			img.Header = append([]byte(nil), img.Data[off:end]...)
		}
	}

	// 3. Optionally clear stale header/signature bytes on page 0x1A.
	// Skipped for TI73, which expects a fake header to remain there.
	if img.CalcType != calcimg.CalcTI73 {
		if off, ok := findPage(img, headerSalvagePage); ok {
			end := off + 256
			if end > len(img.Data) {
				end = len(img.Data)
			}
			for i := off; i < end; i++ {
				img.Data[i] = calcimg.FillByte
			}
		}
	}

	if len(img.Header) < 2 || img.Header[0] != 0x80 || img.Header[1] != 0x0F {
		return nil, calcimg.ErrMissingHeader
	}

	// 4. Decode the outer TLV and trim header to end at the program
	// image field.
	headerStart, _, err := tlv.DecodeHeader(img.Header)
	if err != nil {
		return nil, calcimg.ErrMissingHeader
	}
	region := img.Header[headerStart:]
	if f, err := tlv.Find(tlv.NewMatch(0x8070), region); err == nil {
		img.Header = img.Header[:headerStart+f.Head]
	}

	// 5. Reject the same 55-mod-64 MD5 bug window, this time by erroring
	// instead of padding (there is no page data here to pad against).
	if len(img.Header)%64 == 55 {
		if err := a.issue(calcimg.IssueInvalidProgramSize, "header length triggers the 55-mod-64 MD5 bug"); err != nil {
			return a.result(), err
		}
	}

	// 6. FIX_OS_SIZE rewrites the outer length and the program-image
	// field's own declared length to match the true sizes.
	if flags.Has(FixOSSize) {
		_ = tlv.SetLength(img.Header, len(img.Header)-headerStart)
		if f, err := tlv.Find(tlv.NewMatch(0x8070), img.Header[headerStart:]); err == nil {
			_ = tlv.SetLength(img.Header[headerStart+f.Head:], len(img.Data))
		}
	}

	// 7. Verify key ID and page count are present.
	hdrRegion := img.Header[headerStart:]
	if _, err := tlv.Find(tlv.NewMatch(0x8010), hdrRegion); err != nil {
		if err2 := a.issue(calcimg.IssueMissingKeyID, "key ID field missing"); err2 != nil {
			return a.result(), err2
		}
	}
	if _, err := tlv.Find(tlv.NewMatch(0x8080), hdrRegion); err != nil {
		if err2 := a.issue(calcimg.IssueMissingPageCount, "page count field missing"); err2 != nil {
			return a.result(), err2
		}
	}

	// 8. Check and reset the two validation flag bytes, each against its
	// own accepted pair independently (os8x.c checks and rewrites 0x56 and
	// 0x57 in two separate passes; treating them as a joint pair would
	// reject the valid combination data[0x56]==0x5A, data[0x57]==0xA5,
	// which needs only the low byte rewritten).
	if len(img.Data) > validationByteOffsetHi {
		lo := img.Data[validationByteOffsetLo]
		if lo != validationByteLoValue && lo != validationByteLoAltValue {
			if err := a.issue(calcimg.IssueInvalidValidationBytes, "validation flag byte at 0x56 holds a non-canonical value"); err != nil {
				return a.result(), err
			}
		}
		if lo == validationByteLoAltValue {
			img.Data[validationByteOffsetLo] = validationByteLoValue
		}

		hi := img.Data[validationByteOffsetHi]
		if hi != validationByteHiValue && hi != validationByteHiAltValue {
			if err := a.issue(calcimg.IssueInvalidValidationBytes, "validation flag byte at 0x57 holds a non-canonical value"); err != nil {
				return a.result(), err
			}
		}
		if hi == validationByteHiAltValue {
			img.Data[validationByteOffsetHi] = validationByteHiValue
		}
	}

	return a.result(), nil
}
