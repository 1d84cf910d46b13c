// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for a zfecfs mount or reconstruction.
type Config struct {
	// Source is the directory tree that share views are computed
	// over (mount mode). Reconstruction mode does not read it; its
	// share roots come from --shares flags. Subject to ${VAR}
	// expansion.
	Source string `yaml:"source"`

	// Mountpoint is the directory where the virtual filesystem is
	// mounted. Created if it does not exist. Subject to ${VAR}
	// expansion.
	Mountpoint string `yaml:"mountpoint"`

	// SharesRequired is K, the number of shares needed to
	// reconstruct a file.
	SharesRequired int `yaml:"shares_required"`

	// NumShares is N, the total number of shares produced. Used in
	// reconstruction mode too: the codec's generator rows for parity
	// shares (index >= K) depend on N.
	NumShares int `yaml:"num_shares"`

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`

	// MetricsAddr, if non-empty, is the address ("host:port") on
	// which Prometheus metrics are served. Empty disables the
	// metrics listener.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// Default returns a Config with zero-value-safe defaults. These
// exist so that fields not mentioned in a config file still have
// sane values, not as a substitute for the required Source and
// Mountpoint fields.
func Default() *Config {
	return &Config{
		SharesRequired: 3,
		NumShares:      5,
		AllowOther:     false,
	}
}

// Load loads configuration from the file named by the ZFECFS_CONFIG
// environment variable.
//
// This is the only way to load configuration without an explicit
// path. There are no fallbacks or defaults -- if ZFECFS_CONFIG is not
// set, this fails. Callers that accept a --config flag should prefer
// [LoadFile] when the flag is set and fall back to [Load] otherwise.
func Load() (*Config, error) {
	path := os.Getenv("ZFECFS_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("ZFECFS_CONFIG environment variable not set; " +
			"set it to the path of a config file, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
//
// The file is the single source of truth for the fields it sets;
// fields it omits keep their [Default] value. ${HOME} and similar
// path variables are expanded in Source and Mountpoint afterward.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.Source = expandVars(cfg.Source)
	cfg.Mountpoint = expandVars(cfg.Mountpoint)

	return cfg, nil
}

// varPattern matches ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for internal consistency. It does
// not check that Source or Mountpoint exist on disk -- callers do
// that at the point they open them, where the resulting error can
// carry the right symbolic kind.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.Mountpoint == "" {
		return fmt.Errorf("mountpoint is required")
	}
	return ValidateShareCounts(c.SharesRequired, c.NumShares)
}

// ValidateSharesRequired checks K alone, independent of N and the
// other Config fields, for callers like `zfecfs info` that never deal
// with N at all.
//
// 255 rather than 256: a share's header stores Required in a single
// byte, so K=256 can never be represented on disk even though the
// in-memory codec itself tolerates it.
func ValidateSharesRequired(k int) error {
	if k < 1 || k > 255 {
		return fmt.Errorf("shares_required (K) must be in [1, 255], got %d", k)
	}
	return nil
}

// ValidateShareCounts checks K and N together, independent of Source
// and Mountpoint, so reconstruction mode (which has no Source) can
// validate both without tripping Validate's other checks.
func ValidateShareCounts(k, n int) error {
	if err := ValidateSharesRequired(k); err != nil {
		return err
	}
	if n < k || n > 255 {
		return fmt.Errorf("num_shares (N) must be in [shares_required, 255], got %d", n)
	}
	return nil
}
