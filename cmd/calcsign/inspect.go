// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/saferwall/calcsign/internal/calcio"
	"github.com/saferwall/calcsign/internal/calclog"
	"github.com/saferwall/calcsign/internal/tlv"
)

var inspectJobs int

var inspectCmd = &cobra.Command{
	Use:   "inspect <image-or-dir>",
	Short: "Dump an image's classification and TLV header fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectJobs, "jobs", 4, "number of worker goroutines when inspecting a directory")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return inspectOne(path)
	}
	return inspectDir(path, inspectJobs)
}

func inspectOne(path string) error {
	img, err := calcio.ReadImage(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	kind, _ := classifyVariant(img)
	fmt.Printf("%s: variant=%s calc=0x%x data=0x%x hash=%d keyID=0x%x pages=%d len=%d\n",
		path, kind, img.CalcType, img.DataType, img.HashType, img.KeyID(), len(img.PageNumbers), len(img.Data))

	region := img.Data
	if len(img.Header) > 0 {
		region = img.Header
	}
	dumpFields(region)
	return nil
}

// dumpFields prints every TLV field it can walk from offset 0, the dump
// subcommand's purpose in spec.md §6.4 ("in the spirit of saferwall/pe/cmd's
// dump subcommand"). Unlike tlv.Find it doesn't match a specific tag; it
// walks everything and prints as it goes, stopping exactly where tlv.Find
// would stop a failed search: at the first header it can't fully decode
// within the remaining slice.
func dumpFields(data []byte) {
	pos := 0
	for pos+2 <= len(data) {
		start, size, err := tlv.DecodeHeader(data[pos:])
		if err != nil || pos+start+size > len(data) {
			break
		}
		tag := uint16(data[pos])<<8 | uint16(data[pos+1])
		valStart := pos + start
		fmt.Printf("  tag=0x%04x offset=%d size=%d", tag, pos, size)
		if size > 0 && size <= 16 {
			fmt.Printf(" value=% x", data[valStart:valStart+size])
		}
		fmt.Println()
		next := pos + start + size
		if next <= pos {
			break
		}
		pos = next
	}
}

// inspectDir walks path's files concurrently, grounded on
// saferwall/pe/cmd's LoopDirsFiles+jobs-channel+sync.WaitGroup worker pool,
// reused here to batch-inspect a directory of images instead of a
// directory of PE files. Each run is tagged with a correlation ID so log
// lines from concurrent workers can be grouped back together.
func inspectDir(root string, workers int) error {
	if workers < 1 {
		workers = 1
	}
	runID := uuid.New().String()
	calclog.L().Infof("inspect run %s: scanning %s with %d workers", runID, root, workers)

	var entries []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			entries = append(entries, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	jobs := make(chan string)
	results := make(chan string, len(entries))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- inspectLine(runID, p)
			}
		}()
	}

	go func() {
		for _, p := range entries {
			jobs <- p
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for line := range results {
		fmt.Println(line)
	}
	return nil
}

func inspectLine(runID, path string) string {
	img, err := calcio.ReadImage(path)
	if err != nil {
		return fmt.Sprintf("%s: %v", path, err)
	}
	kind, err := classifyVariant(img)
	if err != nil {
		return fmt.Sprintf("%s: unrecognized (%v)", path, err)
	}
	calclog.L().Debugf("run %s: classified %s as %s", runID, path, kind)
	return fmt.Sprintf("%s: %s calc=0x%x keyID=0x%x", path, kind, img.CalcType, img.KeyID())
}
