// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package repair

import (
	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/tlv"
)

// headerSearchClamp bounds how far into the header region field lookups
// are documented to expect a match (spec: "headers are defined to lie
// within the first 128 bytes"). It is not used to truncate the slice
// passed to tlv.Find -- a truncated slice would make tlv.Find reject the
// large program-image field's declared length as running past the slice
// end -- so it exists here only as the named constant the comments below
// refer to.
const headerSearchClamp = 128

// accumulate wraps an *calcimg.Accumulator with the strict/soft decision:
// in strict mode (IgnoreWarnings unset) the first issue noted aborts the
// pass by returning itself as an error; in soft mode issues are recorded
// (only the first is kept) and the pass continues.
type accumulate struct {
	acc   calcimg.Accumulator
	flags Flags
}

func (a *accumulate) issue(code calcimg.IssueCode, message string) error {
	a.acc.Note(code, message)
	if !a.flags.Has(IgnoreWarnings) {
		return a.acc.Issue()
	}
	return nil
}

func (a *accumulate) note(code calcimg.IssueCode, message string) {
	a.acc.Note(code, message)
}

func (a *accumulate) result() *calcimg.RepairIssue {
	return a.acc.Issue()
}

func roundUpPage(n int) int {
	return (n + calcimg.PageSize - 1) &^ (calcimg.PageSize - 1)
}

func pageOf(offset int) int {
	return offset >> 14
}

// RepairTI8xApp implements spec.md §4.3.1: the Z80 application repair
// pass. It mutates img in place and returns the accumulated repair-level
// issue (nil if none), or a fatal/aborting error.
func RepairTI8xApp(img *calcimg.Image, flags Flags) (*calcimg.RepairIssue, error) {
	a := &accumulate{flags: flags}

	// 1. Leading bytes.
	if len(img.Data) < 2 || (img.Data[0] != 0x80 && img.Data[0] != 0x81) || img.Data[1] != 0x0F {
		return nil, calcimg.ErrMissingHeader
	}

	// 2. Decode outer header; length starts as the buffer's current size
	// (which may already include a previous signature pass).
	headerStart, headerSize, err := tlv.DecodeHeader(img.Data)
	if err != nil {
		return nil, calcimg.ErrMissingHeader
	}
	length := len(img.Data)

	// 3. REMOVE_OLD_SIGNATURE discards anything past the declared range.
	if flags.Has(RemoveOldSignature) {
		declared := headerStart + headerSize
		if length-declared > 96 {
			a.note(calcimg.IssueFieldTooSmall, "discarding more than 96 stale trailing bytes")
		}
		length = declared
	}

	// 4. Page-boundary rule: a signature of up to 69 bytes must not span
	// a page.
	pageAdded := false
	if pageOf(length+69+0x3FFF) != pageOf(length+0x3FFF) {
		if flags.Has(ZealouslyPadApp) || flags.Has(IgnoreWarnings) {
			length = roundUpPage(length) + 1
			pageAdded = true
			a.note(calcimg.IssueFinalPageTooLong, "signature would span a page boundary; padded to the next page")
		} else if err := a.issue(calcimg.IssueFinalPageTooLong, "signature would span a page boundary"); err != nil {
			return a.result(), err
		}
	}

	// 5. Materialize the new length (0x42-on-page-boundary fills happen
	// inside SetLength).
	img.SetLength(length)

	// 6. 55-mod-64 MD5 workaround.
	if length%64 == 55 {
		img.Append([]byte{0x00})
		length++
	}

	// 7. Re-encode the outer TLV length.
	if err := tlv.SetLength(img.Data, length-headerStart); err != nil {
		if err2 := a.issue(calcimg.IssueFieldTooSmall, "outer length too large for its marker"); err2 != nil {
			return a.result(), err2
		}
	}

	// 8. Header region used for field lookups (see headerSearchClamp).
	hdrEnd := length
	if hdrEnd > len(img.Data) {
		hdrEnd = len(img.Data)
	}
	region := img.Data[headerStart:hdrEnd]

	// 9. Page count field: tag 0x8080, exactly 1 byte.
	expectedCount := byte((length + 0x3FFF) >> 14)
	if f, err := tlv.Find(tlv.NewMatch(0x8080), region); err != nil || f.Size != 1 {
		if err2 := a.issue(calcimg.IssueMissingPageCount, "page count field missing or wrong size"); err2 != nil {
			return a.result(), err2
		}
	} else {
		abs := headerStart + f.Start
		if img.Data[abs] != expectedCount {
			shouldFix := flags.Has(FixPageCount) || flags.Has(IgnoreWarnings) || pageAdded
			if shouldFix {
				img.Data[abs] = expectedCount
			}
			if !shouldFix {
				if err2 := a.issue(calcimg.IssueIncorrectPageCount, "page count field has a stale value"); err2 != nil {
					return a.result(), err2
				}
			} else {
				a.note(calcimg.IssueIncorrectPageCount, "page count field had a stale value; overwritten")
			}
		}
	}

	// 10. Key ID presence.
	if _, err := tlv.Find(tlv.NewMatch(0x8010), region); err != nil {
		if err2 := a.issue(calcimg.IssueMissingKeyID, "key ID field missing"); err2 != nil {
			return a.result(), err2
		}
	}

	// 11. Date stamp: outer 0x0320 wrapping inner 0x0900, followed by an
	// 0x02?? signature-on-the-date field.
	if err := checkDateStamp(region, a); err != nil {
		return a.result(), err
	}

	// 12. Program image presence: 0x8070, or 0x8170 on newer variants.
	if _, err := tlv.Find(tlv.NewMatch(0x8070), region); err != nil {
		if _, err2 := tlv.Find(tlv.NewMatch(0x8170), region); err2 != nil {
			if err3 := a.issue(calcimg.IssueMissingProgramImage, "program image field missing"); err3 != nil {
				return a.result(), err3
			}
		}
	}

	// 13. No page-start byte may be 0xFF (defragmenter erasure marker).
	for i := 0; i < len(img.Data); i += calcimg.PageSize {
		if img.Data[i] == 0xFF {
			if err := a.issue(calcimg.IssueInvalidProgramData, "page-start byte is 0xFF"); err != nil {
				return a.result(), err
			}
		}
	}

	return a.result(), nil
}

// checkDateStamp implements step 11 of RepairTI8xApp, shared verbatim by
// the TI-9x variants (the date stamp tag is 0x0320 in both layouts).
func checkDateStamp(region []byte, a *accumulate) error {
	outer, err := tlv.Find(tlv.NewMatch(0x0320), region)
	if err != nil {
		return a.issue(calcimg.IssueMissingDateStamp, "date stamp field missing")
	}

	if outer.Start+outer.Size > len(region) {
		return a.issue(calcimg.IssueMissingDateStamp, "date stamp field truncated")
	}
	if _, err := tlv.Find(tlv.NewMatch(0x0900), region[outer.Start:outer.Start+outer.Size]); err != nil {
		return a.issue(calcimg.IssueMissingDateStamp, "date stamp field missing its inner field")
	}

	next := outer.Start + outer.Size
	if next >= len(region) || region[next] != 0x02 {
		return a.issue(calcimg.IssueMissingDateStamp, "date stamp is not followed by a signature-on-the-date field")
	}
	return nil
}
