// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the Prometheus counters and histograms
// exposed by zfecfs mounts: reads served, bytes served, FEC
// encode/decode invocations, and read latency.
package metrics
