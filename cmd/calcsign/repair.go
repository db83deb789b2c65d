// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saferwall/calcsign/internal/calcio"
	"github.com/saferwall/calcsign/internal/calclog"
)

var (
	repairOut   string
	repairFlags repairFlagSet
)

var repairCmd = &cobra.Command{
	Use:   "repair <image>",
	Short: "Normalize an image's header and layout without signing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepairCmd,
}

func init() {
	fs := repairCmd.Flags()
	fs.StringVar(&repairOut, "out", "", "output path (default: overwrite the input image)")
	repairFlags.register(fs)
}

func runRepairCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	img, err := calcio.ReadImage(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	kind, err := classifyVariant(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	issue, err := runRepair(img, kind, repairFlags.flags())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if issue != nil {
		calclog.L().Warnf(calclog.Diagnostic("", path, "%s", issue.Error()))
	}

	out := repairOut
	if out == "" {
		out = path
	}
	if err := writeImage(out, img); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	calclog.L().Infof("repaired %s (%s) -> %s", path, kind, out)
	return nil
}
