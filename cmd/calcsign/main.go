// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command calcsign signs and validates Flash application and OS images for
// TI-73/83+/89/92+ graphing calculators, the command-line front-end spec.md
// §1 calls out of scope for the signing engine itself.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
