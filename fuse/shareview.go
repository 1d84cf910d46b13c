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
	"github.com/zfecfs/zfecfs/lib/shareindex"
	"github.com/zfecfs/zfecfs/lib/sharefs"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// shareRootNode is the virtual filesystem root: it lists N entries
// named by the share-index codec, each a directory.
type shareRootNode struct {
	gofuse.Inode
	opts  *ShareOptions
	codec *fec.Codec
}

var _ gofuse.NodeLookuper = (*shareRootNode)(nil)
var _ gofuse.NodeReaddirer = (*shareRootNode)(nil)

func (r *shareRootNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	index, err := shareindex.Parse(name)
	if err != nil || index >= r.opts.Params.N {
		return nil, syscall.ENOENT
	}
	child := &shareDirNode{opts: r.opts, codec: r.codec, shareIndex: index}
	out.Mode = syscall.S_IFDIR | 0o555
	return r.NewPersistentInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFDIR}), 0
}

func (r *shareRootNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	entries := make([]fuse.DirEntry, r.opts.Params.N)
	for i := 0; i < r.opts.Params.N; i++ {
		entries[i] = fuse.DirEntry{Name: shareindex.Render(i), Mode: syscall.S_IFDIR}
	}
	return &sliceDirStream{entries: entries}, 0
}

// shareDirNode mirrors one directory of the source tree under a
// single share index; its children are either shareDirNode
// (subdirectories) or shareFileNode (regular files, presented at
// their encoded size).
type shareDirNode struct {
	gofuse.Inode
	opts       *ShareOptions
	codec      *fec.Codec
	shareIndex int
	relPath    string // relative to opts.Source; "" at the share root
}

var _ gofuse.NodeLookuper = (*shareDirNode)(nil)
var _ gofuse.NodeReaddirer = (*shareDirNode)(nil)

func (d *shareDirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childRel := filepath.Join(d.relPath, name)
	sourcePath := filepath.Join(d.opts.Source, childRel)

	info, err := os.Stat(sourcePath)
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
		child := &shareDirNode{opts: d.opts, codec: d.codec, shareIndex: d.shareIndex, relPath: childRel}
		out.Mode = syscall.S_IFDIR | 0o555
		return d.NewPersistentInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	child := &shareFileNode{
		opts:       d.opts,
		codec:      d.codec,
		shareIndex: d.shareIndex,
		sourcePath: sourcePath,
	}
	size := sharefs.EncodedSize(info.Size(), d.codec.Params().K)
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(size)
	return d.NewPersistentInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFREG}), 0
}

func (d *shareDirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	dirPath := filepath.Join(d.opts.Source, d.relPath)
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

// shareFileNode serves one file's view under one share index. The
// underlying EncodedFile is opened lazily (on first Getattr or Open)
// and kept for the node's lifetime.
type shareFileNode struct {
	gofuse.Inode
	opts       *ShareOptions
	codec      *fec.Codec
	shareIndex int
	sourcePath string

	mu      sync.Mutex
	ef      *sharefs.EncodedFile
	openErr error
}

var _ gofuse.NodeGetattrer = (*shareFileNode)(nil)
var _ gofuse.NodeOpener = (*shareFileNode)(nil)
var _ gofuse.NodeReader = (*shareFileNode)(nil)

func (f *shareFileNode) ensureOpen() (*sharefs.EncodedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ef == nil && f.openErr == nil {
		f.ef, f.openErr = sharefs.OpenEncodedFile(f.sourcePath, f.shareIndex, f.codec)
	}
	return f.ef, f.openErr
}

func (f *shareFileNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	ef, err := f.ensureOpen()
	if err != nil {
		return toErrno(err)
	}
	size, err := ef.Size()
	if err != nil {
		return toErrno(err)
	}
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(size)
	return 0
}

func (f *shareFileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if _, err := f.ensureOpen(); err != nil {
		f.opts.Logger.Error("open failed", "source", f.sourcePath, "share", f.shareIndex, "error", err)
		return nil, 0, toErrno(err)
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *shareFileNode) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	ef, err := f.ensureOpen()
	if err != nil {
		return nil, toErrno(err)
	}

	callsBefore := ef.FECCalls()
	start := time.Now()
	n, err := ef.Read(dest, off)
	elapsed := time.Since(start)
	if err != nil {
		f.opts.Logger.Error("read failed", "source", f.sourcePath, "share", f.shareIndex, "offset", off, "error", err)
		if f.opts.Metrics != nil {
			f.opts.Metrics.ReadErrors.WithLabelValues("share", zfecerrKind(err)).Inc()
		}
		return nil, toErrno(err)
	}
	if f.opts.Metrics != nil {
		f.opts.Metrics.ReadsTotal.WithLabelValues("share").Inc()
		f.opts.Metrics.BytesServed.WithLabelValues("share").Add(float64(n))
		f.opts.Metrics.ReadLatency.WithLabelValues("share").Observe(elapsed.Seconds())
		if calls := ef.FECCalls() - callsBefore; calls > 0 {
			f.opts.Metrics.FECInvocations.WithLabelValues("encode").Add(float64(calls))
		}
	}
	return fuse.ReadResultData(dest[:n]), 0
}
