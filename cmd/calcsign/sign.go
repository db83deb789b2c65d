// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/calcio"
	"github.com/saferwall/calcsign/internal/calclog"
	"github.com/saferwall/calcsign/internal/sign"
)

var (
	signKeyFile string
	signOut     string
	signRootnum int
	signRepair  repairFlagSet
)

var signCmd = &cobra.Command{
	Use:   "sign <image>",
	Short: "Repair and sign a calculator image",
	Args:  cobra.ExactArgs(1),
	RunE:  runSign,
}

func init() {
	fs := signCmd.Flags()
	fs.StringVar(&signKeyFile, "key", "", "path to a private key file (overrides key search)")
	fs.StringVar(&signOut, "out", "", "output path (default: overwrite the input image)")
	fs.IntVar(&signRootnum, "rootnum", 0, "Rabin root number, 0-3 (TI-8x apps only)")
	signRepair.register(fs)
}

func runSign(cmd *cobra.Command, args []string) error {
	path := args[0]
	img, err := calcio.ReadImage(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	kind, err := classifyVariant(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	key, err := resolveKey(signKeyFile, img, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !key.HasPrivate() {
		return fmt.Errorf("%s: %w", path, calcimg.ErrMissingKeyComponent)
	}

	issue, err := runRepair(img, kind, signRepair.flags())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if issue != nil {
		calclog.L().Warnf(calclog.Diagnostic(key.Filename, path, "%s", issue.Error()))
	}

	if kind == variantTI8xApp && (signRootnum < 0 || signRootnum > 3) {
		return fmt.Errorf("%s: %w: rootnum must be 0-3", path, errUnsupportedOperation)
	}

	switch kind {
	case variantTI8xApp:
		err = sign.SignTI8xApp(img, key, len(img.Data), signRootnum)
	case variantTI8xOS:
		err = sign.SignTI8xOS(img, key)
	case variantTI9xApp, variantTI9xOS:
		err = sign.SignTI9x(img, key, len(img.Data))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := signOut
	if out == "" {
		out = path
	}
	if err := writeImage(out, img); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	calclog.L().Infof("signed %s (%s, key ID 0x%x) -> %s", path, kind, img.KeyID(), out)
	return nil
}

// writeImage writes img.Data to path, plus -- for the TI-8x OS variant,
// whose header and signature are detached from the page data (spec.md §3)
// -- img.Header and img.Signature to path+".hdr" and path+".sig", the
// sidecar convention calcio.ReadImage looks for on the next read.
func writeImage(path string, img *calcimg.Image) error {
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return err
	}
	if len(img.Header) > 0 {
		if err := os.WriteFile(path+".hdr", img.Header, 0o644); err != nil {
			return err
		}
	}
	if len(img.Signature) > 0 {
		if err := os.WriteFile(path+".sig", img.Signature, 0o644); err != nil {
			return err
		}
	}
	return nil
}
