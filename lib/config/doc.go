// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for zfecfs
// commands.
//
// Configuration is loaded from a single file specified by either the
// ZFECFS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides; command-line flags in
// cmd/zfecfs take precedence over whatever a loaded file sets.
//
// Variable expansion is performed on the Source and Mountpoint fields
// after loading: ${HOME} and ${VAR:-default} patterns are expanded
// against the process environment.
//
// Key exports:
//
//   - [Config] -- FEC parameters plus filesystem paths
//   - [Default] -- returns a Config with zero-value-safe defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other zfecfs packages.
package config
