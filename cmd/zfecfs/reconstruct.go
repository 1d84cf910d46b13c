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

func runReconstruct(args []string) error {
	var shareRoots []string
	var mountpoint, configPath, metricsAddr string
	var k, n int
	var allowOther bool

	flagSet := pflag.NewFlagSet("zfecfs reconstruct", pflag.ContinueOnError)
	flagSet.StringArrayVar(&shareRoots, "shares", nil, "share root directory (repeatable; at least K required)")
	flagSet.StringVar(&mountpoint, "mountpoint", "", "directory to mount the reconstructed tree at")
	flagSet.IntVarP(&k, "shares-required", "k", 0, "K, minimum shares needed to reconstruct")
	flagSet.IntVarP(&n, "num-shares", "n", 0, "N, total shares originally produced (needed to decode any share whose index >= K)")
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
	if cfg.Mountpoint == "" {
		return fmt.Errorf("mountpoint is required")
	}
	if len(shareRoots) < cfg.SharesRequired {
		return fmt.Errorf("got %d --shares, need at least K=%d", len(shareRoots), cfg.SharesRequired)
	}

	params, err := reconstructParams(cfg)
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

	server, err := fuse.MountReconstruction(fuse.ReconstructOptions{
		Mountpoint: cfg.Mountpoint,
		ShareRoots: shareRoots,
		Params:     params,
		AllowOther: cfg.AllowOther,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("mounting reconstruction view: %w", err)
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

// reconstructParams builds the (K, N) a reconstruction mount's Codec
// needs from cfg. N must reflect the real share count the shares were
// originally produced under, not just K: the share header stores only
// K (as Required), never N, and the generator row a non-systematic
// share's index maps to depends on N as well as K. A Codec built with
// N=K can only ever decode the K systematic shares (index < K) --
// every parity share, the entire reason erasure coding exists, fails
// with an out-of-range share index.
func reconstructParams(cfg *config.Config) (fec.Params, error) {
	if err := config.ValidateShareCounts(cfg.SharesRequired, cfg.NumShares); err != nil {
		return fec.Params{}, err
	}
	return fec.NewParams(cfg.SharesRequired, cfg.NumShares)
}
