package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/client"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/config"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/lifecycle"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/platform/privacylog"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/presenter"
)

const (
	exitOK        = 0
	exitFailed    = 1
	exitUsage     = 2
	exitCancelled = 3
)

const usage = `usage: bookctl [flags] fetch <id>
       bookctl [flags] doctor

fetch prints every state a book request goes through.
doctor checks the configuration and probes the configured endpoint.
`

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bookctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Path to config.yaml (optional)")
	baseURL := fs.String("url", "", "GraphQL endpoint override")
	timeout := fs.Duration("timeout", 0, "Request timeout override")
	cancelAfter := fs.Duration("cancel-after", 0, "Cancel the request after this long (0 disables)")
	verbose := fs.Bool("v", false, "Log request diagnostics to stderr")
	checkListen := fs.Bool("check-listen", false, "doctor: also check that the listen address is free")
	minBooks := fs.Int("min-books", 1, "doctor: minimum number of books expected")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := fs.Args()
	isFetch := len(rest) == 2 && rest[0] == "fetch"
	isDoctor := len(rest) == 1 && rest[0] == "doctor"
	if !isFetch && !isDoctor {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "bookctl: %v\n", err)
		return exitUsage
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Client.Timeout = *timeout
	}
	if isDoctor {
		return runDoctor(ctx, cfg, *checkListen, *minBooks, stdout, stderr)
	}
	id := rest[1]

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := privacylog.NewLogger(stderr, level)

	books := client.New(cfg.Client.BaseURL, client.WithTimeout(cfg.Client.Timeout), client.WithLogger(logger))
	loop := lifecycle.NewLoop()
	controller := lifecycle.NewController(books, loop, lifecycle.WithLogger(logger))

	code := exitCancelled
	render := func(s lifecycle.State) {
		if err := presenter.Project(s).Render(stdout); err != nil {
			logger.Warn("render failed", "component", "bookctl", "error", err.Error())
		}
		switch s.(type) {
		case lifecycle.Succeeded:
			code = exitOK
			loop.Close()
		case lifecycle.Failed:
			code = exitFailed
			loop.Close()
		}
	}

	loop.Post(func() {
		handle, err := controller.StartContext(ctx, id, render)
		if err != nil {
			fmt.Fprintf(stderr, "bookctl: %v\n", err)
			code = exitFailed
			loop.Close()
			return
		}
		if *cancelAfter > 0 {
			time.AfterFunc(*cancelAfter, func() {
				loop.Post(func() {
					handle.Cancel()
					_, _ = io.WriteString(stdout, "cancelled\n")
					loop.Close()
				})
			})
		}
	})

	if err := loop.Run(ctx); err != nil {
		return exitCancelled
	}
	return code
}
