// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package zfecpath

import (
	"testing"

	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

func TestDecodeRoot(t *testing.T) {
	for _, p := range []string{"", "/"} {
		d, err := Decode(p)
		if err != nil {
			t.Fatalf("Decode(%q): %v", p, err)
		}
		if d.HasIndex {
			t.Errorf("Decode(%q) = %+v, want HasIndex=false", p, d)
		}
	}
}

func TestDecodeShareRoot(t *testing.T) {
	d, err := Decode("/02")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !d.HasIndex || d.Index != 2 || d.RelPath != "" {
		t.Errorf("got %+v", d)
	}
}

func TestDecodeNestedPath(t *testing.T) {
	d, err := Decode("/0a/dir/file.txt")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !d.HasIndex || d.Index != 10 || d.RelPath != "dir/file.txt" {
		t.Errorf("got %+v", d)
	}
}

func TestDecodeMalformedPrefix(t *testing.T) {
	for _, p := range []string{"/x/y", "/123/y", "/gg"} {
		_, err := Decode(p)
		if !zfecerr.Is(err, zfecerr.NotFound) {
			t.Errorf("Decode(%q): expected NotFound, got %v", p, err)
		}
	}
}
