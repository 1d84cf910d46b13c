// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse is the filesystem facade: it is not part of the core,
// but feeds it. Two independent mounts are provided: MountShares
// presents the N-way share view over a source tree, and
// MountReconstruction presents the reconstructed original tree given
// K or more share roots.
package fuse
