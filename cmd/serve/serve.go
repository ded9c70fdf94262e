// Package serve is a subcommand of the root command. It exports cache metadata as
// Prometheus metrics.
package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
	"cachespect/internal/extract"
	"cachespect/internal/util"
)

const cmdName = "serve"

var examples = []string{
	fmt.Sprintf("  Serve metrics on the default address:     $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Serve metrics for the caches in a file:   $ %s %s --listen :9470 --queries queries.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Export cache metadata as Prometheus metrics",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagListen  string
	flagQueries string
)

// flag names
const (
	flagListenName  = "listen"
	flagQueriesName = "queries"
)

// newProvider is replaced in tests
var newProvider = cacheinfo.Native

func init() {
	Cmd.Flags().StringVar(&flagListen, flagListenName, "localhost:9470", "address the metrics server listens on")
	Cmd.Flags().StringVar(&flagQueries, flagQueriesName, "", "YAML file listing the caches to export")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if _, _, err := net.SplitHostPort(flagListen); err != nil {
		return common.FlagValidationError(cmd, fmt.Sprintf("invalid listen address %q: %v", flagListen, err))
	}
	if flagQueries != "" {
		if _, err := os.Stat(util.ExpandUser(flagQueries)); err != nil {
			return common.FlagValidationError(cmd, fmt.Sprintf("queries file %s: %v", flagQueries, err))
		}
	}
	return nil
}

// newHandler serves the collector's metrics at /metrics
func newHandler(collector prometheus.Collector) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	queries := cache.DefaultQueries
	if flagQueries != "" {
		var err error
		queries, err = extract.LoadQueries(util.ExpandUser(flagQueries))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			slog.Error(err.Error())
			return err
		}
	}
	handler, err := newHandler(newCacheCollector(newProvider(), queries))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cmd, flagListen, handler)
}

// serve runs the metrics server until ctx is done
func serve(ctx context.Context, cmd *cobra.Command, listenAddr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		slog.Error("failed to listen", slog.String("address", listenAddr), slog.String("error", err.Error()))
		return err
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	slog.Info("Starting Prometheus metrics server", slog.String("address", listener.Addr().String()))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics at http://%s/metrics\n", listener.Addr())
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	select {
	case err = <-errCh:
	case <-ctx.Done():
		slog.Info("shutting down metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = server.Shutdown(shutdownCtx)
		if serveErr := <-errCh; serveErr != nil && serveErr != http.ErrServerClosed {
			err = serveErr
		}
	}
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Prometheus HTTP server error", slog.String("error", err.Error()))
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
