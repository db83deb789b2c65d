// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at link time with -ldflags "-X main.version=...";
// the development default mirrors saferwall/pe/cmd's bare version string.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print calcsign's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("calcsign version %s\n", version)
		return nil
	},
}
