// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata encodes and decodes the fixed-size header that
// prefixes every share file. The header is pure data: three unsigned
// bytes (required, index, excessBytes) with no I/O of its own.
package metadata
