// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package shareindex renders and parses share indices as the
// two-character ASCII directory names used by the virtual filesystem
// facade (e.g. share 0 -> "00", share 255 -> "ff").
package shareindex
