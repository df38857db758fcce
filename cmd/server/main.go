package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"myfeed/config"
	"myfeed/internal/app"
	"myfeed/internal/observability"
	"myfeed/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	a, err := app.NewApp(ctx, cfg, metrics)
	if err != nil {
		log.Error("init app", "error", err)
		return 1
	}

	if err := a.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	return 0
}
