package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/adapters/rpc"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/composition/daemonserver"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/config"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/platform/privacylog"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	addr := flag.String("addr", "", "HTTP listen address override (default "+rpc.DefaultAddr+")")
	source := flag.String("catalog", "", "Catalog source override: seed | file | sqlite | postgres | s3")
	catalogPath := flag.String("catalog-path", "", "Catalog document for the file source")
	flag.Parse()
	if *showVersion {
		fmt.Printf("books-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		log.Fatalf("books-daemon failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *source != "" {
		cfg.Catalog.Kind = *source
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	logger := privacylog.NewLogger(os.Stdout, privacylog.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := daemonserver.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("books-daemon failed to initialize: %v", err)
	}

	logger.Info("books-daemon starting", "addr", srv.Addr(), "version", version)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("books-daemon failed: %v", err)
	}
	logger.Info("books-daemon stopped")
}
