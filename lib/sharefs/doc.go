// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package sharefs implements the encoded-file and decoded-file
// readers: the two largest components of the core. EncodedFile
// serves byte ranges from one share of one logical file; DecodedFile
// serves byte ranges from the original, given K share files.
package sharefs
