// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/zfecfs/zfecfs/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing subcommand")
	}

	if args[0] == "--version" {
		fmt.Println(version.Full())
		return nil
	}

	switch args[0] {
	case "mount":
		return runMount(args[1:])
	case "reconstruct":
		return runReconstruct(args[1:])
	case "info":
		return runInfo(args[1:])
	case "resolve":
		return runResolve(args[1:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: zfecfs <subcommand> [flags]

subcommands:
  mount        mount the N-way share view of a source tree
  reconstruct  mount the reconstructed original tree from K+ shares
  info         print encoded-size/header diagnostics for a source tree
  resolve      decode a virtual share path into (share index, relative path)`)
}
