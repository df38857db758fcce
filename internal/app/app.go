package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"myfeed/config"
	gqlin "myfeed/internal/adapter/in/graphql"
	memstore "myfeed/internal/adapter/out/storage/inmemory"
	pgstore "myfeed/internal/adapter/out/storage/postgres"
	"myfeed/internal/auth"
	"myfeed/internal/observability"
	"myfeed/internal/service"
	"myfeed/pkg/logger"

	"github.com/99designs/gqlgen/graphql/playground"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	cfg     config.Config
	srv     *http.Server
	handler http.Handler
	pool    *pgxpool.Pool
}

func NewApp(ctx context.Context, cfg config.Config, metrics *observability.Metrics) (*App, error) {
	log := logger.FromContext(ctx)

	var (
		preferenceStorage service.PreferenceStorage
		txManager         service.TxManager
		pool              *pgxpool.Pool
	)

	switch cfg.StorageType {
	case config.StoragePostgres:
		var err error
		pool, err = pgxpool.New(ctx, cfg.Postgres.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		preferenceStorage = pgstore.NewPreferenceStorage(pool, trmpgx.DefaultCtxGetter)
		txManager = manager.Must(trmpgx.NewDefaultFactory(pool))

	default:
		preferenceStorage = memstore.NewPreferenceStorage()
		txManager = memstore.NoopTxManager{}
	}

	schema, err := gqlin.LoadSchema()
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	preferenceSvc := service.NewContentPreferenceService(preferenceStorage, txManager)
	gqlServer := gqlin.NewServer(gqlin.NewExecutableSchema(gqlin.Config{
		Schema:    schema,
		Resolvers: gqlin.NewResolver(preferenceSvc),
		Recorder:  metrics,
	}))

	r := chi.NewRouter()
	r.Use(baseLogger(log))
	r.Use(recovery)
	r.Use(requestID)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())
	r.Handle("/", playground.Handler("GraphQL Playground", "/query"))
	r.With(auth.Middleware(cfg.Auth.JWTSecret)).Handle("/query", gqlServer)

	addr := ":" + cfg.HTTP.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("app initialized", "addr", addr, "storage", cfg.StorageType)
	return &App{cfg: cfg, srv: srv, handler: r, pool: pool}, nil
}

// Handler is the routed HTTP handler, without the listener.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		shCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		err := a.srv.Shutdown(shCtx)
		a.close()
		return err

	case err := <-errCh:
		a.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
