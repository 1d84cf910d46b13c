// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// sliceDirStream implements fs.DirStream from a pre-built slice of
// entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
