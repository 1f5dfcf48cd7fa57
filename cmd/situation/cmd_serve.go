package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/haqei/situation-engine/internal/codec"
	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

// #region serve

type serveOptions struct {
	listen string
	grpc   string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and, when configured, the gRPC feature service",
		Long: `Serve starts the HTTP API (analysis, fallback controls, usage, stats,
history, /metrics). When a gRPC address is configured it also serves the
local hashing vectorizer as a feature service for other instances.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.listen, "listen", "", "Override the HTTP listen address")
	f.StringVar(&opts.grpc, "grpc", "", "Override the gRPC feature service address")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()
	if opts.listen != "" {
		a.cfg.ListenAddr = opts.listen
	}
	if opts.grpc != "" {
		a.cfg.GRPCAddr = opts.grpc
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p, err := a.pipeline(ctx, reg)
	if err != nil {
		return err
	}
	deps := httpapi.Deps{
		Analyzer:    p.orch,
		Degradation: p.degradation,
		Usage:       p.usage,
		Gatherer:    reg,
		Logger:      a.logger,
	}
	if p.log != nil {
		deps.Log = p.log
	}
	api, err := httpapi.New(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	var gs *grpc.Server
	if a.cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
		if err != nil {
			stop()
			_ = srv.Close()
			_ = g.Wait()
			return fmt.Errorf("listen grpc %s: %w", a.cfg.GRPCAddr, err)
		}
		gs = grpc.NewServer()
		codec.RegisterFeatureServer(gs, features.NewHashingVectorizer(a.cfg.FeatureDim))
		g.Go(func() error {
			a.logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
			if err := gs.Serve(lis); err != nil {
				return fmt.Errorf("serve grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if gs != nil {
			gs.GracefulStop()
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// #endregion serve
