// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/shareindex"
)

// fuseAvailable checks whether /dev/fuse is accessible. Tests that
// need a real FUSE mount call this and skip if the device is absent.
func fuseAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testShareMount writes a small source tree under a fresh temp dir,
// mounts its K=2,N=3 share view, and returns the mountpoint and
// source directory. The mount is unmounted when the test ends.
func testShareMount(t *testing.T, params fec.Params) (mountpoint, source string) {
	t.Helper()
	fuseAvailable(t)

	root := t.TempDir()
	source = filepath.Join(root, "source")
	mountpoint = filepath.Join(root, "mount")
	if err := os.MkdirAll(filepath.Join(source, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "top.txt"), []byte("abcde"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "sub", "nested.txt"), []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server, err := MountShares(ShareOptions{
		Mountpoint: mountpoint,
		Source:     source,
		Params:     params,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("MountShares: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})
	return mountpoint, source
}

func TestMountSharesRootListsNEntries(t *testing.T) {
	params, _ := fec.NewParams(2, 3)
	mountpoint, _ := testShareMount(t, params)

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != params.N {
		t.Fatalf("got %d entries, want N=%d", len(entries), params.N)
	}
	names := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("entry %s is not a directory", e.Name())
		}
		names[e.Name()] = true
	}
	for j := 0; j < params.N; j++ {
		if !names[shareindex.Render(j)] {
			t.Errorf("missing share directory %s", shareindex.Render(j))
		}
	}
}

func TestMountSharesMirrorsDirectoryStructure(t *testing.T) {
	params, _ := fec.NewParams(2, 3)
	mountpoint, _ := testShareMount(t, params)

	for j := 0; j < params.N; j++ {
		shareDir := filepath.Join(mountpoint, shareindex.Render(j))
		if _, err := os.Stat(filepath.Join(shareDir, "top.txt")); err != nil {
			t.Errorf("share %d: top.txt: %v", j, err)
		}
		if _, err := os.Stat(filepath.Join(shareDir, "sub", "nested.txt")); err != nil {
			t.Errorf("share %d: sub/nested.txt: %v", j, err)
		}
	}
}

func TestMountSharesFileSizeIsEncodedSize(t *testing.T) {
	params, _ := fec.NewParams(2, 3)
	mountpoint, _ := testShareMount(t, params)

	info, err := os.Stat(filepath.Join(mountpoint, shareindex.Render(0), "top.txt"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// "abcde" is 5 bytes; H=3, K=2 => 3 + ceil(5/2) = 6.
	if info.Size() != 6 {
		t.Errorf("size = %d, want 6", info.Size())
	}
}

func TestMountSharesSystematicShareMatchesOriginal(t *testing.T) {
	params, _ := fec.NewParams(2, 3)
	mountpoint, _ := testShareMount(t, params)

	// Share 0 is systematic: data bytes are the even-indexed original
	// bytes, i.e. "ace" for "abcde".
	data, err := os.ReadFile(filepath.Join(mountpoint, shareindex.Render(0), "top.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 6 {
		t.Fatalf("got %d bytes, want 6", len(data))
	}
	if string(data[3:]) != "ace" {
		t.Errorf("share 0 data = %q, want %q", data[3:], "ace")
	}
}

func TestMountSharesNotFound(t *testing.T) {
	params, _ := fec.NewParams(2, 3)
	mountpoint, _ := testShareMount(t, params)

	_, err := os.ReadFile(filepath.Join(mountpoint, shareindex.Render(0), "missing.txt"))
	if err == nil {
		t.Fatal("expected error reading nonexistent file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected ENOENT, got: %v", err)
	}

	_, err = os.ReadDir(filepath.Join(mountpoint, "zz"))
	if err == nil {
		t.Fatal("expected error listing out-of-range share directory")
	}
}

// TestMountRoundTripThroughFUSE materializes every share of a
// multi-file tree via MountShares, then reconstructs it via
// MountReconstruction from an arbitrary K-of-N subset, checking the
// result is byte-identical to the source, exercised end-to-end
// through both FUSE facades rather than the in-process sharefs API.
func TestMountRoundTripThroughFUSE(t *testing.T) {
	fuseAvailable(t)
	params, _ := fec.NewParams(3, 5)

	root := t.TempDir()
	source := filepath.Join(root, "source")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatal(err)
	}
	content := make([]byte, 64*1024)
	rand.New(rand.NewSource(123)).Read(content)
	if err := os.WriteFile(filepath.Join(source, "blob.bin"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	shareMount := filepath.Join(root, "shares")
	shareServer, err := MountShares(ShareOptions{
		Mountpoint: shareMount,
		Source:     source,
		Params:     params,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("MountShares: %v", err)
	}
	defer shareServer.Unmount()

	shareRoots := []string{
		filepath.Join(shareMount, shareindex.Render(1)),
		filepath.Join(shareMount, shareindex.Render(2)),
		filepath.Join(shareMount, shareindex.Render(4)),
	}

	reconMount := filepath.Join(root, "recon")
	reconServer, err := MountReconstruction(ReconstructOptions{
		Mountpoint: reconMount,
		ShareRoots: shareRoots,
		Params:     params,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("MountReconstruction: %v", err)
	}
	defer reconServer.Unmount()

	got, err := os.ReadFile(filepath.Join(reconMount, "blob.bin"))
	if err != nil {
		t.Fatalf("ReadFile through reconstruction mount: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("reconstructed content does not match original")
	}

	info, err := os.Stat(filepath.Join(reconMount, "blob.bin"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("reconstructed size = %d, want %d", info.Size(), len(content))
	}
}
