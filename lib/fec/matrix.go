// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fec

import "github.com/zfecfs/zfecfs/lib/zfecerr"

// buildEncodeMatrix constructs the n x k systematic generator matrix
// the reference library builds: a Vandermonde matrix whose first row
// is (1,0,...,0) and whose remaining n-1 rows are powers of the field
// generator, with its top k x k block inverted and used to transform
// the matrix into systematic form (top k rows = identity).
func buildEncodeMatrix(k, n int) [][]byte {
	vm := make([][]byte, n)
	for r := range vm {
		vm[r] = make([]byte, k)
	}
	vm[0][0] = 1
	for c := 1; c < k; c++ {
		vm[0][c] = 0
	}
	for r := 1; r < n; r++ {
		for c := 0; c < k; c++ {
			vm[r][c] = gfExp[modnn((r-1)*c)]
		}
	}

	top := make([][]byte, k)
	for r := 0; r < k; r++ {
		top[r] = append([]byte(nil), vm[r]...)
	}
	topInv, err := invertMatrix(top)
	if err != nil {
		// The top k rows are a genuine Vandermonde matrix (row 0 is
		// the zero evaluation point, rows 1..k-1 are distinct
		// non-zero powers of the generator); it is always invertible.
		panic("fec: vandermonde submatrix not invertible: " + err.Error())
	}

	enc := make([][]byte, n)
	for r := 0; r < k; r++ {
		enc[r] = make([]byte, k)
		enc[r][r] = 1
	}
	for r := k; r < n; r++ {
		enc[r] = matVecRowMul(vm[r], topInv)
	}
	return enc
}

// matVecRowMul computes row * m, where row has k elements and m is
// k x k, producing a new row of k elements: out[c] = sum_i row[i]*m[i][c].
func matVecRowMul(row []byte, m [][]byte) []byte {
	k := len(row)
	out := make([]byte, k)
	for c := 0; c < k; c++ {
		var acc byte
		for i := 0; i < k; i++ {
			acc ^= gfMul(row[i], m[i][c])
		}
		out[c] = acc
	}
	return out
}

// invertMatrix computes the inverse of a square matrix over GF(2^8)
// via Gauss-Jordan elimination with partial pivoting. Fails with
// zfecerr.Internal if the matrix is singular.
func invertMatrix(m [][]byte) ([][]byte, error) {
	k := len(m)

	work := make([][]byte, k)
	inv := make([][]byte, k)
	for r := 0; r < k; r++ {
		work[r] = append([]byte(nil), m[r]...)
		inv[r] = make([]byte, k)
		inv[r][r] = 1
	}

	for col := 0; col < k; col++ {
		pivot := -1
		for r := col; r < k; r++ {
			if work[r][col] != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return nil, zfecerr.New("fec.invertMatrix", zfecerr.Internal)
		}
		work[col], work[pivot] = work[pivot], work[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		scale := gfInv(work[col][col])
		if scale != 1 {
			scaleRow(work[col], scale)
			scaleRow(inv[col], scale)
		}

		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			factor := work[r][col]
			if factor == 0 {
				continue
			}
			addScaledRow(work[r], work[col], factor)
			addScaledRow(inv[r], inv[col], factor)
		}
	}
	return inv, nil
}

func scaleRow(row []byte, factor byte) {
	for i := range row {
		row[i] = gfMul(row[i], factor)
	}
}

// addScaledRow computes dst ^= factor*src, in place.
func addScaledRow(dst, src []byte, factor byte) {
	for i := range dst {
		dst[i] ^= gfMul(src[i], factor)
	}
}
