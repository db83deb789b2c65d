// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/saferwall/calcsign/internal/calcconfig"
	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/calcio"
	"github.com/saferwall/calcsign/internal/calclog"
)

// resolveKey loads a key for img, preferring an explicitly-named key file,
// then searching cfg.KeyPaths for a file named after the image's key ID,
// then falling back to the compiled-in table -- the three key sources
// spec.md §6.2/§6.3 describes, in the order a caller would expect an
// explicit flag to win.
func resolveKey(explicit string, img *calcimg.Image, cfg *calcconfig.Config) (*calcimg.Key, error) {
	if explicit != "" {
		return readKeyFile(explicit, cfg.Verify)
	}

	id := img.KeyID()
	for _, dir := range cfg.KeyPaths {
		candidate := filepath.Join(dir, fmt.Sprintf("%x.key", id))
		if _, err := os.Stat(candidate); err == nil {
			return readKeyFile(candidate, cfg.Verify)
		}
	}

	if k := calcimg.BuiltinKey(uint64(id)); k != nil {
		calclog.L().Infof("using built-in key for key ID 0x%x", id)
		return k, nil
	}

	return nil, calcimg.ErrMissingKey
}

func readKeyFile(path string, verify bool) (*calcimg.Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return calcio.ReadKeyFile(f, path, verify)
}
