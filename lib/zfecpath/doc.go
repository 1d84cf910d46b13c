// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package zfecpath decodes a virtual filesystem path into a share
// index and the corresponding relative path under the source tree.
// It is boundary-only: it performs no I/O and knows nothing about
// encoded files.
package zfecpath
