// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package shareindex

import (
	"testing"

	"github.com/zfecfs/zfecfs/lib/zfecerr"
)

func TestRenderParseRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := Render(i)
		if len(s) != 2 {
			t.Fatalf("Render(%d) = %q, want length 2", i, s)
		}
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got != i {
			t.Errorf("Parse(Render(%d)) = %d", i, got)
		}
	}
}

func TestRenderKnownValues(t *testing.T) {
	cases := map[int]string{0: "00", 2: "02", 15: "0f", 16: "10", 255: "ff"}
	for index, want := range cases {
		if got := Render(index); got != want {
			t.Errorf("Render(%d) = %q, want %q", index, got, want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "0", "000", "gg", "-1", "xy"} {
		_, err := Parse(s)
		if !zfecerr.Is(err, zfecerr.NotFound) {
			t.Errorf("Parse(%q): expected NotFound, got %v", s, err)
		}
	}
}
