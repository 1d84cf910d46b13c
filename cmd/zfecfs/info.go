// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/zfecfs/zfecfs/lib/config"
	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/sharefs"
)

// runInfo walks --source and prints, for every regular file, the
// encoded size and the share-invariant header fields (required,
// excessBytes) it would carry -- a scripting-friendly way to check
// share sizing and header layout against a real tree without
// mounting anything.
func runInfo(args []string) error {
	var source string
	var k int

	flagSet := pflag.NewFlagSet("zfecfs info", pflag.ContinueOnError)
	flagSet.StringVar(&source, "source", "", "source directory tree")
	flagSet.IntVarP(&k, "shares-required", "k", 0, "K, minimum shares needed to reconstruct")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if source == "" {
		return fmt.Errorf("--source is required")
	}
	if err := config.ValidateSharesRequired(k); err != nil {
		return err
	}
	if _, err := fec.NewParams(k, k); err != nil {
		return fmt.Errorf("invalid -k: %w", err)
	}

	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			rel = path
		}
		origSize := info.Size()
		encSize := sharefs.EncodedSize(origSize, k)
		excess := (int64(k) - origSize%int64(k)) % int64(k)

		fmt.Printf("path=%s original_size=%d encoded_size=%d required=%d excess_bytes=%d\n",
			rel, origSize, encSize, k, excess)
		return nil
	})
}
