// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zfecfs/zfecfs/fuse"
	"github.com/zfecfs/zfecfs/lib/config"
	"github.com/zfecfs/zfecfs/lib/fec"
	"github.com/zfecfs/zfecfs/lib/metrics"
)

func runMount(args []string) error {
	var source, mountpoint, configPath, metricsAddr string
	var k, n int
	var allowOther bool

	flagSet := pflag.NewFlagSet("zfecfs mount", pflag.ContinueOnError)
	flagSet.StringVar(&source, "source", "", "source directory tree")
	flagSet.StringVar(&mountpoint, "mountpoint", "", "directory to mount the share view at")
	flagSet.IntVarP(&k, "shares-required", "k", 0, "K, minimum shares needed to reconstruct")
	flagSet.IntVarP(&n, "num-shares", "n", 0, "N, total shares produced")
	flagSet.StringVar(&configPath, "config", "", "YAML config file (flags override its values)")
	flagSet.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
	flagSet.StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := loadBaseConfig(configPath)
	if err != nil {
		return err
	}
	if source != "" {
		cfg.Source = source
	}
	if mountpoint != "" {
		cfg.Mountpoint = mountpoint
	}
	if k != 0 {
		cfg.SharesRequired = k
	}
	if n != 0 {
		cfg.NumShares = n
	}
	if allowOther {
		cfg.AllowOther = true
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := fec.NewParams(cfg.SharesRequired, cfg.NumShares)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(cfg.MetricsAddr); err != nil {
				logger.Error("metrics server exited", "error", err)
			}
		}()
	}

	server, err := fuse.MountShares(fuse.ShareOptions{
		Mountpoint: cfg.Mountpoint,
		Source:     cfg.Source,
		Params:     params,
		AllowOther: cfg.AllowOther,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("mounting share view: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", "mountpoint", cfg.Mountpoint)
		server.Unmount()
	}()

	server.Wait()
	return nil
}

// loadBaseConfig loads defaults, preferring an explicit --config path
// over the ZFECFS_CONFIG environment variable, and falling back to
// config.Default() if neither is set.
func loadBaseConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("ZFECFS_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}
