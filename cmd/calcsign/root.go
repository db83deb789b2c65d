// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saferwall/calcsign/internal/calcconfig"
	"github.com/saferwall/calcsign/internal/calclog"
)

var (
	// persistent flags, bound into calcconfig on PersistentPreRunE.
	flagVerbose  bool
	flagKeyPaths []string
	flagNoVerify bool

	cfg *calcconfig.Config
)

// rootCmd is the calcsign cobra.Command tree, grounded on
// saferwall/pe/cmd/main.go's flag.NewFlagSet dispatch but built on cobra +
// pflag the way oasisprotocol-cli's root command assembles its verb tree.
var rootCmd = &cobra.Command{
	Use:   "calcsign",
	Short: "Sign and validate TI calculator Flash images",
	Long: "calcsign signs and validates Flash application and operating-system\n" +
		"images for the TI-73/83+/89/92+ family of graphing calculators.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		installLogger(flagVerbose)

		var err error
		cfg, err = calcconfig.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if len(flagKeyPaths) > 0 {
			cfg.KeyPaths = flagKeyPaths
		}
		if flagNoVerify {
			cfg.Verify = false
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")
	pf.StringSliceVar(&flagKeyPaths, "key-dir", nil, "directories to search for key files (repeatable)")
	pf.BoolVar(&flagNoVerify, "no-verify", false, "skip the key file self-consistency check on load")

	rootCmd.AddCommand(signCmd, validateCmd, repairCmd, inspectCmd, versionCmd)
}

// installLogger wires a zap.SugaredLogger behind calclog.Logger, the
// concrete backend spec.md §9's "process-wide configuration object" design
// note calls for.
func installLogger(verbose bool) {
	var zcfg zap.Config
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.TimeKey = ""
	}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "calcsign: failed to build logger: %v\n", err)
		return
	}
	calclog.SetLogger(logger.Sugar())
}
