// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fec

import (
	"fmt"

	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

// Batch is the maximum block length, in bytes, that a single
// Codec.EncodeBlock or Codec.Decode invocation processes. Callers tile
// larger ranges into Batch-sized (or smaller) blocks themselves.
const Batch = 8192

// Params is FecParams: the immutable (K, N) pair shared by every
// handle built over a given share set. 1 <= K <= N <= 256. Note that
// K=256 cannot survive a round trip through the single-byte Required
// field of a share's on-disk header (see lib/metadata) -- callers that
// cross that boundary (lib/sharefs and above) additionally require
// K <= 255.
type Params struct {
	K int
	N int
}

// NewParams validates and constructs a Params.
func NewParams(k, n int) (Params, error) {
	if k < 1 || k > 256 {
		return Params{}, zfecerr.Wrap("fec.NewParams", zfecerr.Internal,
			fmt.Errorf("K=%d out of range [1,256]", k))
	}
	if n < k || n > 256 {
		return Params{}, zfecerr.Wrap("fec.NewParams", zfecerr.Internal,
			fmt.Errorf("N=%d out of range [K=%d,256]", n, k))
	}
	return Params{K: k, N: n}, nil
}

// Codec holds the generator matrix for a Params and performs
// per-block encode/decode. A Codec is immutable and safe for
// concurrent use after construction.
type Codec struct {
	params Params
	matrix [][]byte // N x K
}

// NewCodec builds the systematic generator matrix for params. This is
// the only allocation-heavy step; callers should build one Codec per
// Params and share it across handles.
func NewCodec(params Params) *Codec {
	return &Codec{
		params: params,
		matrix: buildEncodeMatrix(params.K, params.N),
	}
}

// Params returns the Codec's (K, N).
func (c *Codec) Params() Params { return c.params }

// EncodeBlock produces the shareIndex-th encoded output for one block.
// columns holds K input vectors (the block's K byte-columns), each of
// the same length L <= Batch; out must have length L. For
// shareIndex < K (a systematic share) this is a copy of
// columns[shareIndex]; otherwise it is the GF(2^8) linear combination
// given by the shareIndex-th row of the generator matrix.
func (c *Codec) EncodeBlock(shareIndex int, columns [][]byte, out []byte) error {
	if shareIndex < 0 || shareIndex >= c.params.N {
		return zfecerr.Wrap("fec.EncodeBlock", zfecerr.Internal,
			fmt.Errorf("share index %d out of range [0,%d)", shareIndex, c.params.N))
	}
	if len(columns) != c.params.K {
		return zfecerr.Wrap("fec.EncodeBlock", zfecerr.Internal,
			fmt.Errorf("got %d columns, want K=%d", len(columns), c.params.K))
	}
	length := len(out)

	if shareIndex < c.params.K {
		copy(out, columns[shareIndex][:length])
		return nil
	}

	row := c.matrix[shareIndex]
	for i := 0; i < length; i++ {
		out[i] = 0
	}
	for col := 0; col < c.params.K; col++ {
		coeff := row[col]
		if coeff == 0 {
			continue
		}
		src := columns[col]
		for i := 0; i < length; i++ {
			out[i] ^= gfMul(coeff, src[i])
		}
	}
	return nil
}

// Decode recovers the K original columns given K received columns
// labelled by distinct share indices. If indices[i] < K the
// corresponding received column is returned unchanged (it already is
// the original column); only columns whose source share was
// non-systematic are computed via matrix inversion.
//
// received and indices must each have length K; all received columns
// must share the same length. The returned slice has K entries,
// ordered by original column index (0..K-1), each a freshly allocated
// slice independent of received.
func (c *Codec) Decode(received [][]byte, indices []int) ([][]byte, error) {
	k := c.params.K
	if len(received) != k || len(indices) != k {
		return nil, zfecerr.Wrap("fec.Decode", zfecerr.Internal,
			fmt.Errorf("need exactly K=%d received columns and indices", k))
	}
	seen := make(map[int]bool, k)
	for _, idx := range indices {
		if idx < 0 || idx >= c.params.N {
			return nil, zfecerr.Wrap("fec.Decode", zfecerr.Internal,
				fmt.Errorf("share index %d out of range [0,%d)", idx, c.params.N))
		}
		if seen[idx] {
			return nil, zfecerr.New("fec.Decode", zfecerr.InconsistentShares)
		}
		seen[idx] = true
	}

	length := 0
	if k > 0 {
		length = len(received[0])
	}

	allSystematic := true
	for _, idx := range indices {
		if idx >= k {
			allSystematic = false
			break
		}
	}
	out := make([][]byte, k)
	if allSystematic {
		for i, idx := range indices {
			out[idx] = append([]byte(nil), received[i]...)
		}
		return out, nil
	}

	sub := make([][]byte, k)
	for i, idx := range indices {
		sub[i] = c.matrix[idx]
	}
	inv, err := invertMatrix(sub)
	if err != nil {
		return nil, zfecerr.Wrap("fec.Decode", zfecerr.InconsistentShares, err)
	}

	for i, idx := range indices {
		if idx < k {
			out[idx] = append([]byte(nil), received[i]...)
		}
	}
	for col := 0; col < k; col++ {
		if out[col] != nil {
			continue
		}
		dst := make([]byte, length)
		for i := 0; i < k; i++ {
			coeff := inv[col][i]
			if coeff == 0 {
				continue
			}
			src := received[i]
			for p := 0; p < length; p++ {
				dst[p] ^= gfMul(coeff, src[p])
			}
		}
		out[col] = dst
	}
	return out, nil
}
