// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// Size is H, the fixed byte length of an encoded header. Pinned to 3
// to match the on-disk layout of previously produced shares: one byte
// each for the required share count, this share's index, and the
// trailing zero-padding length.
const Size = 3

// Metadata is the fixed-size per-share header: the K the share was
// produced under, this share's index, and the number of zero-padding
// bytes appended to the final original block.
type Metadata struct {
	Required    byte
	Index       byte
	ExcessBytes byte
}

// Encode renders m as Size bytes. Required must be in [1,255] and
// ExcessBytes must be less than Required; Encode does not validate
// these (callers construct Metadata from already-validated FecParams
// and share indices) -- Decode is where untrusted bytes are checked.
func Encode(m Metadata) [Size]byte {
	return [Size]byte{m.Required, m.Index, m.ExcessBytes}
}

// Decode parses Size bytes into a Metadata, failing with
// zfecerr.CorruptMetadata if required == 0 or excessBytes >= required.
// buf must be at least Size bytes; a short buffer is also
// CorruptMetadata rather than a panic.
func Decode(buf []byte) (Metadata, error) {
	if len(buf) < Size {
		return Metadata{}, zfecerr.New("metadata.Decode", zfecerr.CorruptMetadata)
	}
	m := Metadata{
		Required:    buf[0],
		Index:       buf[1],
		ExcessBytes: buf[2],
	}
	if m.Required == 0 {
		return Metadata{}, zfecerr.New("metadata.Decode", zfecerr.CorruptMetadata)
	}
	if m.ExcessBytes >= m.Required {
		return Metadata{}, zfecerr.New("metadata.Decode", zfecerr.CorruptMetadata)
	}
	return m, nil
}
