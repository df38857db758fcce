// Command feedctl lists and edits content preferences through the cached
// query client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"myfeed/cmd/feedctl/commands"
	"myfeed/config"
	"myfeed/internal/adapter/out/gqlclient"
	"myfeed/internal/adapter/out/pubsub/inmemory"
	"myfeed/internal/auth"
	"myfeed/internal/query"
	"myfeed/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	ctx = logger.WithLogger(ctx, log)

	session, err := auth.NewSession(cfg.Token)
	if err != nil {
		log.Error("bad FEED_TOKEN", "error", err)
		return 1
	}

	store, err := query.NewLRUStore(cfg.CacheSize)
	if err != nil {
		log.Error("query cache", "error", err)
		return 1
	}
	bus := inmemory.New(1)
	client := query.NewClient(store, bus,
		query.WithLogger(log),
		query.WithStaleTime(cfg.StaleTime),
		query.WithRetry(cfg.Retry, cfg.RetryBaseDelay),
		query.WithRequestTimeout(cfg.RequestTimeout),
	)

	cli := commands.New(commands.Deps{
		Client:    client,
		Requester: gqlclient.New(cfg.Endpoint, gqlclient.WithToken(cfg.Token)),
		Bus:       bus,
		Session:   session,
		Options:   query.Options{StaleTime: &cfg.StaleTime},
	}, os.Stdout)

	if err := cli.Execute(ctx); err != nil {
		log.Error("feedctl failed", "error", err)
		return 1
	}
	return 0
}
