// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package zfecpath

import (
	"path"
	"strings"

	"github.com/zfecfs/zfecfs/lib/shareindex"
	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// Decoded is the result of splitting a virtual path of the form
// "/XX/relative/path" into a share index and the relative path it
// addresses under the source tree.
type Decoded struct {
	// HasIndex is false only for the virtual root ("/" or ""), which
	// lists share directories rather than addressing one.
	HasIndex bool

	// Index is the decoded share index. Valid only when HasIndex.
	Index int

	// RelPath is the path under the source tree, relative (no leading
	// slash); "" addresses the share's own root directory.
	RelPath string
}

// Decode parses a virtual path. The path may or may not have a
// leading slash; internal "." and ".." segments are cleaned away
// exactly as path.Clean does. Fails with zfecerr.NotFound if the
// first segment is present but is not a valid share-index string.
func Decode(virtualPath string) (Decoded, error) {
	clean := path.Clean("/" + virtualPath)
	trimmed := strings.TrimPrefix(clean, "/")
	if trimmed == "" || trimmed == "." {
		return Decoded{HasIndex: false}, nil
	}

	segments := strings.SplitN(trimmed, "/", 2)
	index, err := shareindex.Parse(segments[0])
	if err != nil {
		return Decoded{}, zfecerr.Wrap("zfecpath.Decode", zfecerr.NotFound, err)
	}

	rel := ""
	if len(segments) == 2 {
		rel = segments[1]
	}
	return Decoded{HasIndex: true, Index: index, RelPath: rel}, nil
}
