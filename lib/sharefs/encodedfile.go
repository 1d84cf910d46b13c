// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package sharefs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/metadata"
	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// EncodedFile serves byte ranges from one share of one logical file.
// It owns its underlying file descriptor exclusively and is safe for
// concurrent Read calls.
type EncodedFile struct {
	file       *os.File
	shareIndex int
	codec      *fec.Codec

	sizeOnce     sync.Once
	originalSize int64
	sizeErr      error

	fecCalls atomic.Int64
}

// FECCalls returns the number of Codec.EncodeBlock invocations this
// handle has made so far. Callers that want a per-Read delta (e.g. for
// a metrics counter) should snapshot this before and after Read.
func (f *EncodedFile) FECCalls() int64 { return f.fecCalls.Load() }

// OpenEncodedFile opens sourcePath read-only and returns a handle
// that serves shareIndex's view of it under codec's Params.
func OpenEncodedFile(sourcePath string, shareIndex int, codec *fec.Codec) (*EncodedFile, error) {
	params := codec.Params()
	if shareIndex < 0 || shareIndex >= params.N {
		return nil, zfecerr.Wrap("sharefs.OpenEncodedFile", zfecerr.Internal,
			fmt.Errorf("share index %d out of range [0,%d)", shareIndex, params.N))
	}
	if params.K > 255 {
		return nil, zfecerr.Wrap("sharefs.OpenEncodedFile", zfecerr.Internal,
			fmt.Errorf("K=%d cannot be represented in a share's single-byte header", params.K))
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, zfecerr.Wrap("sharefs.OpenEncodedFile", classifyOpenErr(err), err)
	}
	return &EncodedFile{file: f, shareIndex: shareIndex, codec: codec}, nil
}

func classifyOpenErr(err error) zfecerr.Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return zfecerr.NotFound
	case errors.Is(err, fs.ErrPermission):
		return zfecerr.Permission
	default:
		return zfecerr.IO
	}
}

// Close releases the underlying file descriptor.
func (f *EncodedFile) Close() error {
	return f.file.Close()
}

// originalSizeOf stats the underlying file exactly once, memoised via
// sync.Once, and returns the cached result thereafter.
func (f *EncodedFile) originalSizeOf() (int64, error) {
	f.sizeOnce.Do(func() {
		info, err := f.file.Stat()
		if err != nil {
			f.sizeErr = zfecerr.Wrap("sharefs.EncodedFile.Size", zfecerr.IO, err)
			return
		}
		f.originalSize = info.Size()
	})
	return f.originalSize, f.sizeErr
}

// EncodedSize returns H + ceil(originalSize/k), pure.
func EncodedSize(originalSize int64, k int) int64 {
	return int64(metadata.Size) + ceilDiv(originalSize, int64(k))
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Size returns this share's encoded length.
func (f *EncodedFile) Size() (int64, error) {
	orig, err := f.originalSizeOf()
	if err != nil {
		return 0, err
	}
	return EncodedSize(orig, f.codec.Params().K), nil
}

// Metadata returns this share's header, computed from the (lazily
// determined) original size.
func (f *EncodedFile) Metadata() (metadata.Metadata, error) {
	orig, err := f.originalSizeOf()
	if err != nil {
		return metadata.Metadata{}, err
	}
	k := int64(f.codec.Params().K)
	excess := (k - orig%k) % k
	return metadata.Metadata{
		Required:    byte(f.codec.Params().K),
		Index:       byte(f.shareIndex),
		ExcessBytes: byte(excess),
	}, nil
}

// Read serves up to len(out) bytes of the encoded file starting at
// offset, returning the number of bytes written. It never returns a
// count larger than len(out) and never panics on a short underlying
// read; bytes past the share's logical end yield 0 with a nil error.
func (f *EncodedFile) Read(out []byte, offset int64) (int, error) {
	encSize, err := f.Size()
	if err != nil {
		return 0, err
	}
	if offset >= encSize {
		return 0, nil
	}

	size := int64(len(out))
	if offset+size > encSize {
		size = encSize - offset
	}
	out = out[:size]

	written := 0
	cur := offset
	remaining := int(size)

	if cur < int64(metadata.Size) {
		md, err := f.Metadata()
		if err != nil {
			return written, err
		}
		buf := metadata.Encode(md)
		end := int64(metadata.Size)
		if cur+int64(remaining) < end {
			end = cur + int64(remaining)
		}
		n := copy(out[written:], buf[cur:end])
		written += n
		cur += int64(n)
		remaining -= n
	}

	if remaining > 0 {
		n, err := f.readData(out[written:written+remaining], cur-int64(metadata.Size))
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// readData fills out with encoded data bytes starting at dataOffset
// (an offset past the header, in share-data-byte units): it reads the
// underlying K*wantBytes original-file bytes, de-interleaves them
// into per-share columns, and encodes each tile through the codec.
func (f *EncodedFile) readData(out []byte, dataOffset int64) (int, error) {
	k := f.codec.Params().K
	wantBytes := len(out)
	if wantBytes == 0 {
		return 0, nil
	}

	sc := leaseScratch()
	defer releaseScratch(sc)

	readBuf := sc.ensureRead(wantBytes * k)
	actualRead, err := f.file.ReadAt(readBuf, dataOffset*int64(k))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, zfecerr.Wrap("sharefs.EncodedFile.Read", zfecerr.IO, err)
	}
	readBuf = readBuf[:actualRead]

	totalTuples := int(ceilDiv(int64(actualRead), int64(k)))
	if totalTuples == 0 {
		return 0, nil
	}

	written := 0
	for tileStart := 0; tileStart < totalTuples; tileStart += fec.Batch {
		tileLen := totalTuples - tileStart
		if tileLen > fec.Batch {
			tileLen = fec.Batch
		}

		cols := sc.columns(k, tileLen)
		base := tileStart * k
		for i := 0; i < tileLen; i++ {
			for c := 0; c < k; c++ {
				srcIdx := base + i*k + c
				if srcIdx < actualRead {
					cols[c][i] = readBuf[srcIdx]
				} else {
					cols[c][i] = 0
				}
			}
		}

		if err := f.codec.EncodeBlock(f.shareIndex, cols, out[written:written+tileLen]); err != nil {
			return written, err
		}
		f.fecCalls.Add(1)
		written += tileLen
	}

	return written, nil
}
