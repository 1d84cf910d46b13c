// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package sharefs

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/zfecfs/zfecfs/lib/fec"
)

// materializeShares writes every share of sourcePath to its own file
// under dir, returning paths indexed by share index.
func materializeShares(t *testing.T, dir, sourcePath string, codec *fec.Codec) []string {
	t.Helper()
	n := codec.Params().N
	paths := make([]string, n)
	for j := 0; j < n; j++ {
		ef, err := OpenEncodedFile(sourcePath, j, codec)
		if err != nil {
			t.Fatal(err)
		}
		size, err := ef.Size()
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, size)
		n, err := ef.Read(buf, 0)
		if err != nil {
			t.Fatal(err)
		}
		ef.Close()

		path := filepath.Join(dir, fmt.Sprintf("share%d", j))
		if err := os.WriteFile(path, buf[:n], 0o644); err != nil {
			t.Fatal(err)
		}
		paths[j] = path
	}
	return paths
}

// TestScenario5 decodes shares {0,2} of K=2,N=3 "abcde" and reads the
// whole file back.
func TestScenario5(t *testing.T) {
	dir := t.TempDir()
	sourcePath := writeSource(t, dir, "source", []byte("abcde"))

	params, _ := fec.NewParams(2, 3)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	df, err := OpenDecodedFile([]string{shares[0], shares[2]}, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	buf := make([]byte, 5)
	n, err := df.Read(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "abcde" {
		t.Errorf("decoded = %q, want %q", buf[:n], "abcde")
	}
}

// TestDecodeRejectsParityShareWhenNEqualsK documents the failure mode
// a Codec built with N=K produces: every non-systematic share has an
// index >= K, so it is out of range for that Codec's matrix even
// though the share file itself is perfectly valid. This is the shape
// of bug a caller building Params from a Config must avoid -- N has
// to reflect how many shares actually exist, not just K.
func TestDecodeRejectsParityShareWhenNEqualsK(t *testing.T) {
	dir := t.TempDir()
	sourcePath := writeSource(t, dir, "source", []byte("abcde"))

	realParams, _ := fec.NewParams(2, 3)
	realCodec := fec.NewCodec(realParams)
	shares := materializeShares(t, dir, sourcePath, realCodec)

	buggyParams, _ := fec.NewParams(2, 2)
	buggyCodec := fec.NewCodec(buggyParams)

	// Open only validates the share headers (which store K, not N), so
	// it succeeds even though the codec's N is wrong; the index is
	// only checked once Decode runs, at Read.
	df, err := OpenDecodedFile([]string{shares[0], shares[2]}, buggyCodec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	buf := make([]byte, 5)
	if _, err := df.Read(buf, 0); err == nil {
		t.Fatal("expected an error decoding a parity share against an N=K codec")
	}
}

// TestScenario7 decodes shares {0,1} and reads a sub-range.
func TestScenario7(t *testing.T) {
	dir := t.TempDir()
	sourcePath := writeSource(t, dir, "source", []byte("abcde"))

	params, _ := fec.NewParams(2, 3)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	df, err := OpenDecodedFile([]string{shares[0], shares[1]}, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	buf := make([]byte, 2)
	n, err := df.Read(buf, 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "de" {
		t.Errorf("decoded(3,2) = %q, want %q", buf[:n], "de")
	}
}

// TestScenario8 checks the empty-file edge case.
func TestScenario8(t *testing.T) {
	dir := t.TempDir()
	sourcePath := writeSource(t, dir, "empty", []byte{})

	params, _ := fec.NewParams(2, 3)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	df, err := OpenDecodedFile([]string{shares[0], shares[1]}, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	if df.Size() != 0 {
		t.Errorf("Size() = %d, want 0", df.Size())
	}
	buf := make([]byte, 10)
	n, err := df.Read(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Read on empty file returned %d bytes, want 0", n)
	}
}

// TestScenario6RandomRoundTrip decodes every 3-of-5 combination of a
// 1 MiB random file and checks the full content matches.
func TestScenario6RandomRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large round-trip test in short mode")
	}

	dir := t.TempDir()
	content := make([]byte, 1<<20)
	rand.New(rand.NewSource(42)).Read(content)
	sourcePath := writeSource(t, dir, "source", content)

	params, _ := fec.NewParams(3, 5)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	combos := [][]int{
		{0, 1, 2}, {0, 1, 3}, {0, 1, 4}, {0, 2, 3}, {0, 2, 4},
		{0, 3, 4}, {1, 2, 3}, {1, 2, 4}, {1, 3, 4}, {2, 3, 4},
	}
	for _, combo := range combos {
		paths := []string{shares[combo[0]], shares[combo[1]], shares[combo[2]]}
		df, err := OpenDecodedFile(paths, codec)
		if err != nil {
			t.Fatalf("combo %v: %v", combo, err)
		}

		buf := make([]byte, len(content))
		n, err := df.Read(buf, 0)
		if err != nil {
			t.Fatalf("combo %v: %v", combo, err)
		}
		if n != len(content) {
			t.Fatalf("combo %v: read %d bytes, want %d", combo, n, len(content))
		}
		if !bytes.Equal(buf, content) {
			t.Fatalf("combo %v: decoded content mismatch", combo)
		}
		df.Close()
	}
}

// TestRandomRangeLaw spot-checks arbitrary (offset, size) windows
// against the original content.
func TestRandomRangeLaw(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 10000)
	rand.New(rand.NewSource(7)).Read(content)
	sourcePath := writeSource(t, dir, "source", content)

	params, _ := fec.NewParams(3, 5)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	df, err := OpenDecodedFile([]string{shares[1], shares[2], shares[4]}, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 50; i++ {
		offset := rng.Intn(len(content))
		maxSize := len(content) - offset
		size := 0
		if maxSize > 0 {
			size = rng.Intn(maxSize + 1)
		}

		buf := make([]byte, size)
		n, err := df.Read(buf, int64(offset))
		if err != nil {
			t.Fatalf("offset=%d size=%d: %v", offset, size, err)
		}
		if n != size {
			t.Fatalf("offset=%d size=%d: got %d bytes", offset, size, n)
		}
		if !bytes.Equal(buf, content[offset:offset+size]) {
			t.Fatalf("offset=%d size=%d: mismatch", offset, size)
		}
	}
}

// TestIdempotence checks that repeated reads of the same range agree.
func TestIdempotence(t *testing.T) {
	dir := t.TempDir()
	content := []byte("idempotence check idempotence check idempotence check")
	sourcePath := writeSource(t, dir, "source", content)

	params, _ := fec.NewParams(2, 4)
	codec := fec.NewCodec(params)
	shares := materializeShares(t, dir, sourcePath, codec)

	df, err := OpenDecodedFile([]string{shares[0], shares[3]}, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()

	first := make([]byte, 20)
	second := make([]byte, 20)
	if _, err := df.Read(first, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := df.Read(second, 5); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("repeated reads disagree: %q vs %q", first, second)
	}
}
