// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/pflag"

	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/repair"
)

// repairFlagSet holds the booleans bound to the repair.Flags bitmask
// (spec.md §4.3's IGNORE_WARNINGS/REMOVE_OLD_SIGNATURE/FIX_PAGE_COUNT/
// FIX_OS_SIZE/ZEALOUSLY_PAD_APP), shared by sign and repair (validate never
// repairs).
type repairFlagSet struct {
	ignoreWarnings bool
	removeOldSig   bool
	fixPageCount   bool
	fixOSSize      bool
	zealousPad     bool
}

func (r *repairFlagSet) register(fs *pflag.FlagSet) {
	fs.BoolVar(&r.ignoreWarnings, "soft", false, "demote repair-level errors to warnings and continue")
	fs.BoolVar(&r.removeOldSig, "remove-old-signature", false, "discard any previously-appended signature before repairing")
	fs.BoolVar(&r.fixPageCount, "fix-page-count", false, "overwrite the page-count field with the true count")
	fs.BoolVar(&r.fixOSSize, "fix-os-size", false, "overwrite the OS outer-length and program-image-length fields")
	fs.BoolVar(&r.zealousPad, "zealous-pad", false, "pad onto a new page instead of erroring when a signature would span pages")
}

func (r *repairFlagSet) flags() repair.Flags {
	var f repair.Flags
	if r.ignoreWarnings {
		f |= repair.IgnoreWarnings
	}
	if r.removeOldSig {
		f |= repair.RemoveOldSignature
	}
	if r.fixPageCount {
		f |= repair.FixPageCount
	}
	if r.fixOSSize {
		f |= repair.FixOSSize
	}
	if r.zealousPad {
		f |= repair.ZealouslyPadApp
	}
	return f
}

// runRepair dispatches to the repair function matching img's classified
// variant (the two TI-9x entry points share one nineXKind-parameterized
// implementation).
func runRepair(img *calcimg.Image, kind variantKind, f repair.Flags) (*calcimg.RepairIssue, error) {
	switch kind {
	case variantTI8xApp:
		return repair.RepairTI8xApp(img, f)
	case variantTI8xOS:
		return repair.RepairTI8xOS(img, f)
	case variantTI9xApp:
		return repair.RepairTI9xApp(img, f)
	case variantTI9xOS:
		return repair.RepairTI9xOS(img, f)
	default:
		return nil, errUnsupportedOperation
	}
}
