// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/zfecfs/zfecfs/lib/shareindex"
	"github.com/zfecfs/zfecfs/lib/zfecpath"
)

// runResolve decodes one or more virtual paths (the "/XX/relative/path"
// form a mounted share view presents) into their
// share index and underlying relative path, without requiring a live
// mount. Useful for
// scripting against a zfecfs mount's naming convention directly --
// e.g. checking which share a given virtual path addresses before
// reading it.
func runResolve(args []string) error {
	var numShares int

	flagSet := pflag.NewFlagSet("zfecfs resolve", pflag.ContinueOnError)
	flagSet.IntVarP(&numShares, "num-shares", "n", 0, "N, total shares produced (0 disables range checking)")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	paths := flagSet.Args()
	if len(paths) == 0 {
		return fmt.Errorf("usage: zfecfs resolve [-n N] VIRTUAL_PATH [VIRTUAL_PATH...]")
	}

	for _, p := range paths {
		decoded, err := zfecpath.Decode(p)
		if err != nil {
			fmt.Printf("path=%s error=%v\n", p, err)
			continue
		}
		if !decoded.HasIndex {
			fmt.Printf("path=%s root=true\n", p)
			continue
		}
		if numShares > 0 && decoded.Index >= numShares {
			fmt.Printf("path=%s error=share index %s out of range [0,%d)\n",
				p, shareindex.Render(decoded.Index), numShares)
			continue
		}
		fmt.Printf("path=%s share=%d rel=%s\n", p, decoded.Index, decoded.RelPath)
	}
	return nil
}
