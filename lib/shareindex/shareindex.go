// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package shareindex

import (
	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

const hexDigits = "0123456789abcdef"

// Render encodes a share index in [0,256) as a two-character
// lowercase hex string.
func Render(index int) string {
	hi := (index >> 4) & 0xf
	lo := index & 0xf
	return string([]byte{hexDigits[hi], hexDigits[lo]})
}

// Parse decodes a two-character directory name produced by [Render]
// back into a share index. It fails with zfecerr.NotFound if s is not
// exactly two lowercase hex digits, matching the path decoder's
// contract of treating a malformed share prefix as a missing path.
func Parse(s string) (int, error) {
	if len(s) != 2 {
		return 0, zfecerr.New("shareindex.Parse", zfecerr.NotFound)
	}
	hi, ok := digitValue(s[0])
	if !ok {
		return 0, zfecerr.New("shareindex.Parse", zfecerr.NotFound)
	}
	lo, ok := digitValue(s[1])
	if !ok {
		return 0, zfecerr.New("shareindex.Parse", zfecerr.NotFound)
	}
	return hi<<4 | lo, nil
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}
