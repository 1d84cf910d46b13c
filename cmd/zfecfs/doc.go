// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// zfecfs mounts a Reed-Solomon share view of a directory tree, or
// reconstructs the original tree from K or more share roots.
//
// Four subcommands:
//
//	zfecfs mount --source DIR --mountpoint DIR -k K -n N
//	zfecfs reconstruct --shares DIR [--shares DIR...] --mountpoint DIR -k K -n N
//	zfecfs info --source DIR -k K
//	zfecfs resolve [-n N] VIRTUAL_PATH [VIRTUAL_PATH...]
package main
