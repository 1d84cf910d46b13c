// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one zfecfs process.
// Both mount modes (share view, reconstruction) share the same set;
// the "mode" label distinguishes them.
type Metrics struct {
	ReadsTotal     *prometheus.CounterVec
	ReadErrors     *prometheus.CounterVec
	BytesServed    *prometheus.CounterVec
	ReadLatency    *prometheus.HistogramVec
	FECInvocations *prometheus.CounterVec
}

// New constructs a Metrics whose collectors are not registered
// anywhere yet; [Metrics.Registry] registers them against a fresh
// registry, never the global default one, so tests can build multiple
// instances without colliding.
func New() *Metrics {
	m := &Metrics{
		ReadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zfecfs_reads_total",
			Help: "Total FUSE read calls served.",
		}, []string{"mode"}),
		ReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zfecfs_read_errors_total",
			Help: "Total FUSE read calls that returned an error.",
		}, []string{"mode", "kind"}),
		BytesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zfecfs_bytes_served_total",
			Help: "Total bytes returned to callers.",
		}, []string{"mode"}),
		ReadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zfecfs_read_duration_seconds",
			Help:    "Latency of FUSE read calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		FECInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zfecfs_fec_invocations_total",
			Help: "Total FEC primitive invocations (encode or decode).",
		}, []string{"operation"}),
	}
	return m
}

// Registry returns a *prometheus.Registry with m's collectors
// registered, suitable for serving at an HTTP endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.ReadsTotal, m.ReadErrors, m.BytesServed, m.ReadLatency, m.FECInvocations)
	return reg
}

// Serve starts an HTTP server exposing m's collectors at /metrics on
// addr. It blocks until the listener fails; callers typically run it
// in its own goroutine.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
