// Package daemonserver wires configuration, the catalog and the GraphQL
// executor into an HTTP server.
package daemonserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/adapters/rpc"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/catalog"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/config"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/graph"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/platform/ratelimiter"
)

const limiterIdleTTL = 10 * time.Minute

// Build loads the catalog once and returns a server ready to Run.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*rpc.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := catalog.Load(ctx, cfg.Catalog.Source())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "component", "daemonserver", "source", cfg.Catalog.Kind, "books", store.Len())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exec, err := graph.NewExecutor(store,
		graph.WithLogger(logger),
		graph.WithMetrics(graph.NewMetrics(registry)),
	)
	if err != nil {
		return nil, err
	}

	var limiter *ratelimiter.Keyed
	if cfg.RateLimit.Enabled {
		limiter = ratelimiter.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limiterIdleTTL)
	}

	return rpc.NewServer(exec, rpc.Options{
		Addr:            cfg.Server.Addr,
		AllowNullOrigin: cfg.Server.AllowNullOrigin,
		BookCount:       store.Len(),
		Limiter:         limiter,
		Registry:        registry,
		Logger:          logger,
	}), nil
}
