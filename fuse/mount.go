// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/metrics"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

var defaultEntryTimeout = 1 * time.Second
var defaultAttrTimeout = 1 * time.Second
var defaultNegativeTimeout = 100 * time.Millisecond

// ShareOptions configures a share-view mount.
type ShareOptions struct {
	// Mountpoint is the directory where the filesystem is mounted.
	// Created if it does not exist.
	Mountpoint string

	// Source is the directory tree that share views are computed
	// over.
	Source string

	// Params is the (K, N) pair for every share served.
	Params fec.Params

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Metrics, if non-nil, receives read counters.
	Metrics *metrics.Metrics

	// Logger receives diagnostic messages. If nil, a logger that
	// writes only errors, to stderr, is used.
	Logger *slog.Logger
}

// MountShares mounts the N-way share view of Source at Mountpoint.
// The caller must call Unmount on the returned Server when done.
func MountShares(opts ShareOptions) (*fuse.Server, error) {
	if opts.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if opts.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}

	if err := os.MkdirAll(opts.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", opts.Mountpoint, err)
	}

	codec := fec.NewCodec(opts.Params)
	root := &shareRootNode{opts: &opts, codec: codec}

	server, err := gofuse.Mount(opts.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &defaultEntryTimeout,
		AttrTimeout:     &defaultAttrTimeout,
		NegativeTimeout: &defaultNegativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "zfecfs",
			Name:       "zfecfs-shares",
			AllowOther: opts.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", opts.Mountpoint, err)
	}

	opts.Logger.Info("zfecfs share view mounted",
		"mountpoint", opts.Mountpoint, "source", opts.Source,
		"k", opts.Params.K, "n", opts.Params.N)
	return server, nil
}

// ReconstructOptions configures a reconstruction mount.
type ReconstructOptions struct {
	// Mountpoint is the directory where the reconstructed tree is
	// mounted. Created if it does not exist.
	Mountpoint string

	// ShareRoots lists K or more directories, each mirroring a
	// zfecfs share view at one share index, that together can
	// reconstruct the original tree.
	ShareRoots []string

	// Params is the (K, N) pair the shares were produced under. Both
	// are used: the codec built from it only accepts share indices
	// below N, so a parity share (index >= K) needs the real N.
	Params fec.Params

	AllowOther bool
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// MountReconstruction mounts the reconstructed original tree given K
// or more share directories.
func MountReconstruction(opts ReconstructOptions) (*fuse.Server, error) {
	if opts.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if len(opts.ShareRoots) < opts.Params.K {
		return nil, fmt.Errorf("got %d share roots, need at least K=%d", len(opts.ShareRoots), opts.Params.K)
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}

	if err := os.MkdirAll(opts.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", opts.Mountpoint, err)
	}

	codec := fec.NewCodec(opts.Params)
	root := &reconDirNode{opts: &opts, codec: codec}

	server, err := gofuse.Mount(opts.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &defaultEntryTimeout,
		AttrTimeout:     &defaultAttrTimeout,
		NegativeTimeout: &defaultNegativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "zfecfs",
			Name:       "zfecfs-reconstruct",
			AllowOther: opts.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", opts.Mountpoint, err)
	}

	opts.Logger.Info("zfecfs reconstruction view mounted",
		"mountpoint", opts.Mountpoint, "shares", len(opts.ShareRoots), "k", opts.Params.K)
	return server, nil
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}
