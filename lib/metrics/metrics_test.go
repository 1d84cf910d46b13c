// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	m := New()
	m.ReadsTotal.WithLabelValues("share").Inc()
	m.ReadErrors.WithLabelValues("share", "io").Inc()
	m.BytesServed.WithLabelValues("reconstruct").Add(128)
	m.ReadLatency.WithLabelValues("share").Observe(0.01)
	m.FECInvocations.WithLabelValues("encode").Inc()

	reg := m.Registry()
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty metrics body")
	}
}
