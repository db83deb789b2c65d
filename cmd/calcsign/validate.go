// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saferwall/calcsign/internal/calcio"
	"github.com/saferwall/calcsign/internal/calclog"
	"github.com/saferwall/calcsign/internal/sign"
)

var validateKeyFile string

var validateCmd = &cobra.Command{
	Use:   "validate <image>",
	Short: "Validate a signed calculator image against its key",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateKeyFile, "key", "", "path to a public or private key file (overrides key search)")
}

// runValidate never repairs: spec.md §2 says "When validating: repair is
// skipped", so the canonical length comes straight from the outer TLV
// header already on disk (sign.CanonicalLength), not from a repair pass.
func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	img, err := calcio.ReadImage(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	kind, err := classifyVariant(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	key, err := resolveKey(validateKeyFile, img, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	length, err := sign.CanonicalLength(img.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	switch kind {
	case variantTI8xApp:
		err = sign.ValidateTI8xApp(img, key, length)
	case variantTI8xOS:
		calcio.SalvageOSHeader(img)
		err = sign.ValidateTI8xOS(img, key)
	case variantTI9xApp, variantTI9xOS:
		err = sign.ValidateTI9x(img, key, length)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	calclog.L().Infof("%s: signature OK (%s, key ID 0x%x)", path, kind, img.KeyID())
	fmt.Printf("%s: OK\n", path)
	return nil
}
