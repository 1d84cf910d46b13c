// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package zfecerr defines the symbolic error taxonomy shared by every
// core package: NotFound, Permission, IO, CorruptMetadata,
// InsufficientShares, InconsistentShares, and Internal. Callers
// distinguish kinds with [Is], not by matching message text; the
// filesystem facade maps kinds to syscall errno values at the
// boundary.
package zfecerr
