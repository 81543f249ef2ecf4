package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/config"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/doctor"
)

func runDoctor(ctx context.Context, cfg config.Config, checkListen bool, minBooks int, stdout, stderr io.Writer) int {
	healthURL, err := doctor.HealthURL(cfg.Client.BaseURL)
	if err != nil {
		fmt.Fprintf(stderr, "bookctl: %v\n", err)
		return exitUsage
	}
	report := doctor.New().Run(ctx, doctor.Input{
		Addr:        cfg.Server.Addr,
		CheckListen: checkListen,
		Catalog:     cfg.Catalog.Source(),
		HealthURL:   healthURL,
		MinBooks:    minBooks,
	})
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "bookctl: %v\n", err)
		return exitFailed
	}
	if !report.Ready {
		return exitFailed
	}
	return exitOK
}
