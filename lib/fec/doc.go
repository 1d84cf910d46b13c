// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fec implements the K-of-N systematic Reed-Solomon erasure
// code used to encode and decode shares. The arithmetic (GF(2^8) with
// the primitive polynomial x^8+x^4+x^3+x^2+1, a Vandermonde-derived
// systematic generator matrix) matches the classic reference "fec"
// library bit-for-bit, so shares produced by this package are
// interchangeable with shares produced by that library and vice
// versa.
package fec
