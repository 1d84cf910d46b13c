// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package sharefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/metadata"
	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// DecodedFile serves byte ranges from the original file, given K or
// more share files that mirror it. It owns every underlying file
// handle it was opened with.
type DecodedFile struct {
	files   []*os.File
	indices []int

	required    int
	excessBytes int
	encodedSize int64

	codec *fec.Codec

	fecCalls atomic.Int64
}

// FECCalls returns the number of Codec.Decode invocations this handle
// has made so far. Callers that want a per-Read delta (e.g. for a
// metrics counter) should snapshot this before and after Read.
func (d *DecodedFile) FECCalls() int64 { return d.fecCalls.Load() }

// OpenDecodedFile opens each of sharePaths, validates that they form
// a consistent share set for codec's K, and returns a handle built
// from the first K of them. Supplying more than K paths is allowed
// (e.g. a caller scanning a directory without knowing in advance
// which shares are healthy); every supplied path's metadata is
// validated for consistency before the first K are selected, so a
// corrupt share anywhere in the list is still caught at Open.
func OpenDecodedFile(sharePaths []string, codec *fec.Codec) (df *DecodedFile, err error) {
	k := codec.Params().K
	if k > 255 {
		return nil, zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.Internal,
			fmt.Errorf("K=%d cannot be represented in a share's single-byte header", k))
	}
	if len(sharePaths) < k {
		return nil, zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.InsufficientShares,
			fmt.Errorf("got %d share paths, need at least K=%d", len(sharePaths), k))
	}

	opened := make([]*os.File, 0, len(sharePaths))
	defer func() {
		if err != nil {
			for _, f := range opened {
				f.Close()
			}
		}
	}()

	type shareInfo struct {
		file *os.File
		md   metadata.Metadata
		size int64
	}
	infos := make([]shareInfo, 0, len(sharePaths))

	for _, p := range sharePaths {
		f, openErr := os.Open(p)
		if openErr != nil {
			err = zfecerr.Wrap("sharefs.OpenDecodedFile", classifyOpenErr(openErr), openErr)
			return nil, err
		}
		opened = append(opened, f)

		stat, statErr := f.Stat()
		if statErr != nil {
			err = zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.IO, statErr)
			return nil, err
		}

		hdr := make([]byte, metadata.Size)
		if _, readErr := io.ReadFull(f, hdr); readErr != nil {
			err = zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.CorruptMetadata, readErr)
			return nil, err
		}
		md, mdErr := metadata.Decode(hdr)
		if mdErr != nil {
			err = mdErr
			return nil, err
		}

		infos = append(infos, shareInfo{file: f, md: md, size: stat.Size()})
	}

	seen := make(map[int]bool, len(infos))
	for i, info := range infos {
		if int(info.md.Required) != k {
			err = zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.InconsistentShares,
				fmt.Errorf("share %d: required=%d, want K=%d", i, info.md.Required, k))
			return nil, err
		}
		if info.md.ExcessBytes != infos[0].md.ExcessBytes {
			err = zfecerr.New("sharefs.OpenDecodedFile", zfecerr.InconsistentShares)
			return nil, err
		}
		if info.size != infos[0].size {
			err = zfecerr.New("sharefs.OpenDecodedFile", zfecerr.InconsistentShares)
			return nil, err
		}
		if seen[int(info.md.Index)] {
			err = zfecerr.Wrap("sharefs.OpenDecodedFile", zfecerr.InconsistentShares,
				fmt.Errorf("duplicate share index %d", info.md.Index))
			return nil, err
		}
		seen[int(info.md.Index)] = true
	}

	files := make([]*os.File, k)
	indices := make([]int, k)
	for i := 0; i < k; i++ {
		files[i] = infos[i].file
		indices[i] = int(infos[i].md.Index)
	}
	for i := k; i < len(infos); i++ {
		infos[i].file.Close()
	}

	return &DecodedFile{
		files:       files,
		indices:     indices,
		required:    k,
		excessBytes: int(infos[0].md.ExcessBytes),
		encodedSize: infos[0].size,
		codec:       codec,
	}, nil
}

// Close releases every underlying file handle.
func (d *DecodedFile) Close() error {
	var firstErr error
	for _, f := range d.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Size returns the original file's size, recovered from the shares'
// common encodedSize and excessBytes.
func (d *DecodedFile) Size() int64 {
	dataLen := d.encodedSize - int64(metadata.Size)
	if dataLen <= 0 {
		return 0
	}
	return dataLen*int64(d.required) - int64(d.excessBytes)
}

// Read serves up to len(out) bytes of the original file starting at
// offset: it reads the overlapping tuples from each share, decodes
// them back into original-file columns, and re-interleaves the
// requested byte range out of those columns.
func (d *DecodedFile) Read(out []byte, offset int64) (int, error) {
	k := d.required
	size := len(out)
	origSize := d.Size()
	if offset >= origSize || size == 0 {
		return 0, nil
	}
	if int64(size) > origSize-offset {
		size = int(origSize - offset)
	}

	encOffset := offset/int64(k) + int64(metadata.Size)
	offsetCorrection := int(offset % int64(k))

	wantTuples := (size+k-1)/k + 1

	sc := leaseScratch()
	defer releaseScratch(sc)

	readBuf := sc.ensureRead(k * wantTuples)
	perShare := make([][]byte, k)
	minBytesRead := wantTuples
	for i, f := range d.files {
		buf := readBuf[i*wantTuples : (i+1)*wantTuples]
		n, readErr := f.ReadAt(buf, encOffset)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return 0, zfecerr.Wrap("sharefs.DecodedFile.Read", zfecerr.IO, readErr)
		}
		perShare[i] = buf[:n]
		if n < minBytesRead {
			minBytesRead = n
		}
	}
	if minBytesRead == 0 {
		return 0, nil
	}
	for i := range perShare {
		perShare[i] = perShare[i][:minBytesRead]
	}

	indices := append([]int(nil), d.indices...)
	normalize(perShare, indices, k)

	nUsable := size
	if bound := minBytesRead*k - offsetCorrection; bound < nUsable {
		nUsable = bound
	}
	if bound := int(origSize - offset); bound < nUsable {
		nUsable = bound
	}
	if nUsable <= 0 {
		return 0, nil
	}

	for tileStart := 0; tileStart < minBytesRead; tileStart += fec.Batch {
		tileLen := minBytesRead - tileStart
		if tileLen > fec.Batch {
			tileLen = fec.Batch
		}

		received := make([][]byte, k)
		for i := range perShare {
			received[i] = perShare[i][tileStart : tileStart+tileLen]
		}
		columns, err := d.codec.Decode(received, indices)
		if err != nil {
			return 0, err
		}
		d.fecCalls.Add(1)

		for i := 0; i < tileLen; i++ {
			for col := 0; col < k; col++ {
				logicalPos := tileStart*k + i*k + col - offsetCorrection
				if logicalPos < 0 || logicalPos >= nUsable {
					continue
				}
				out[logicalPos] = columns[col][i]
			}
		}
	}

	return nUsable, nil
}

// normalize permutes perShare and indices in place so that, for every
// slot i whose indices[i] < k, that input ends up in slot indices[i]
// whenever it is safe to do so, advancing past any pair that would
// otherwise cycle forever on malformed duplicate indices (duplicates
// are already rejected at Open; this is a belt-and-braces guard, not
// correctness-critical).
func normalize(cols [][]byte, indices []int, k int) {
	i := 0
	for i < k {
		idx := indices[i]
		if idx < k && idx != i && indices[idx] != idx {
			cols[i], cols[idx] = cols[idx], cols[i]
			indices[i], indices[idx] = indices[idx], indices[i]
			continue
		}
		i++
	}
}
