// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/sharefs"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// reconDirNode mirrors the structure of the first supplied share
// root; its children are either reconDirNode (subdirectories) or
// reconFileNode (regular files, presented at their original size).
type reconDirNode struct {
	gofuse.Inode
	opts    *ReconstructOptions
	codec   *fec.Codec
	relPath string
}

var _ gofuse.NodeLookuper = (*reconDirNode)(nil)
var _ gofuse.NodeReaddirer = (*reconDirNode)(nil)

func (d *reconDirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childRel := filepath.Join(d.relPath, name)
	primaryPath := filepath.Join(d.opts.ShareRoots[0], childRel)

	info, err := os.Stat(primaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syscall.ENOENT
		}
		if os.IsPermission(err) {
			return nil, syscall.EACCES
		}
		return nil, syscall.EIO
	}

	if info.IsDir() {
		child := &reconDirNode{opts: d.opts, codec: d.codec, relPath: childRel}
		out.Mode = syscall.S_IFDIR | 0o555
		return d.NewPersistentInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	sharePaths := make([]string, len(d.opts.ShareRoots))
	for i, root := range d.opts.ShareRoots {
		sharePaths[i] = filepath.Join(root, childRel)
	}
	child := &reconFileNode{opts: d.opts, codec: d.codec, sharePaths: sharePaths}
	out.Mode = syscall.S_IFREG | 0o444
	return d.NewPersistentInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFREG}), 0
}

func (d *reconDirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	dirPath := filepath.Join(d.opts.ShareRoots[0], d.relPath)
	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syscall.ENOENT
		}
		return nil, syscall.EIO
	}

	entries := make([]fuse.DirEntry, 0, len(dirEntries))
	for _, e := range dirEntries {
		mode := uint32(syscall.S_IFREG)
		if e.IsDir() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: e.Name(), Mode: mode})
	}
	return &sliceDirStream{entries: entries}, 0
}

// reconFileNode serves the reconstructed original bytes of one file,
// given the K (or more) share paths that mirror it. The underlying
// DecodedFile is opened lazily and kept for the node's lifetime.
type reconFileNode struct {
	gofuse.Inode
	opts       *ReconstructOptions
	codec      *fec.Codec
	sharePaths []string

	mu      sync.Mutex
	df      *sharefs.DecodedFile
	openErr error
}

var _ gofuse.NodeGetattrer = (*reconFileNode)(nil)
var _ gofuse.NodeOpener = (*reconFileNode)(nil)
var _ gofuse.NodeReader = (*reconFileNode)(nil)

func (f *reconFileNode) ensureOpen() (*sharefs.DecodedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.df == nil && f.openErr == nil {
		f.df, f.openErr = sharefs.OpenDecodedFile(f.sharePaths, f.codec)
	}
	return f.df, f.openErr
}

func (f *reconFileNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	df, err := f.ensureOpen()
	if err != nil {
		return toErrno(err)
	}
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(df.Size())
	return 0
}

func (f *reconFileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if _, err := f.ensureOpen(); err != nil {
		f.opts.Logger.Error("open failed", "shares", f.sharePaths, "error", err)
		return nil, 0, toErrno(err)
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *reconFileNode) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	df, err := f.ensureOpen()
	if err != nil {
		return nil, toErrno(err)
	}

	callsBefore := df.FECCalls()
	start := time.Now()
	n, err := df.Read(dest, off)
	elapsed := time.Since(start)
	if err != nil {
		f.opts.Logger.Error("read failed", "shares", f.sharePaths, "offset", off, "error", err)
		if f.opts.Metrics != nil {
			f.opts.Metrics.ReadErrors.WithLabelValues("reconstruct", zfecerrKind(err)).Inc()
		}
		return nil, toErrno(err)
	}
	if f.opts.Metrics != nil {
		f.opts.Metrics.ReadsTotal.WithLabelValues("reconstruct").Inc()
		f.opts.Metrics.BytesServed.WithLabelValues("reconstruct").Add(float64(n))
		f.opts.Metrics.ReadLatency.WithLabelValues("reconstruct").Observe(elapsed.Seconds())
		if calls := df.FECCalls() - callsBefore; calls > 0 {
			f.opts.Metrics.FECInvocations.WithLabelValues("decode").Add(float64(calls))
		}
	}
	return fuse.ReadResultData(dest[:n]), 0
}
