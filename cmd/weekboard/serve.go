package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/weekboard/internal/config"
	"github.com/verte-zerg/weekboard/internal/logging"
	"github.com/verte-zerg/weekboard/internal/metrics"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/refresh"
	"github.com/verte-zerg/weekboard/internal/server"
	"github.com/verte-zerg/weekboard/internal/source"
	"github.com/verte-zerg/weekboard/internal/store"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the weeks over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, func(cfg *model.Config) {
		applyFlag(cmd, "addr", &cfg.Serve.Addr, serveAddr)
	})
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	src, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}
	var watcher *source.Watcher
	if fileSrc, ok := src.(*source.FileSource); ok {
		watcher, err = source.NewWatcher(fileSrc.Path, source.DefaultDebounce, log)
		if err != nil {
			return err
		}
	}

	st := store.New()
	m := metrics.New()
	poller := refresh.NewPoller(refresh.NewPipeline(src, st, log, m), cfg.RefreshInterval, log)
	srv := server.New(st, poller, m, log, cfg.Targets, cfg.Serve)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx, cfg.Serve.Addr) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(ctx, poller.Trigger) })
	}

	log.Info("serving weekboard",
		zap.String("addr", cfg.Serve.Addr),
		zap.Stringer("source", src),
		zap.Duration("interval", cfg.RefreshInterval),
	)
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("weekboard stopped")
	return nil
}
