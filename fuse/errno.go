// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"syscall"

	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// zfecerrKind returns err's symbolic kind as a metrics label value.
func zfecerrKind(err error) string {
	return zfecerr.KindOf(err).String()
}

// toErrno maps a core symbolic error kind to the host filesystem
// error code the facade returns to the kernel.
func toErrno(err error) syscall.Errno {
	switch zfecerr.KindOf(err) {
	case zfecerr.NotFound:
		return syscall.ENOENT
	case zfecerr.Permission:
		return syscall.EACCES
	case zfecerr.IO:
		return syscall.EIO
	case zfecerr.CorruptMetadata:
		return syscall.EIO
	case zfecerr.InsufficientShares:
		return syscall.EIO
	case zfecerr.InconsistentShares:
		return syscall.EIO
	case zfecerr.Internal:
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
