package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/config"
	"github.com/playperu/bingo/internal/database"
	"github.com/playperu/bingo/internal/handler/feed"
	"github.com/playperu/bingo/internal/handler/health"
	"github.com/playperu/bingo/internal/migrations"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/processor"
	"github.com/playperu/bingo/internal/server"
	"github.com/playperu/bingo/internal/standings"
	"github.com/playperu/bingo/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.RunContext(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)

	st := store.NewSQLite(db)
	if cfg.BoardFile != "" {
		imp, err := store.ReadImportFile(cfg.BoardFile)
		if err != nil {
			return fmt.Errorf("reading board file: %w", err)
		}
		if err := st.Import(ctx, imp); err != nil {
			return fmt.Errorf("importing board file: %w", err)
		}
		logger.Info("imported board file", "path", cfg.BoardFile, "events", len(imp.Events))
	}

	// --- Redis ---
	rdb, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("connected to redis")

	// --- Processing ---
	broker := notify.NewBroker()
	publisher := notify.Fanout{
		notify.BrokerPublisher{Broker: broker},
		notify.NewRedisPublisher(rdb, cfg.NotifyChannel),
	}

	nameOnly := make([]bingo.ActionType, 0, len(cfg.NameOnlyTriggerTypes))
	for _, t := range cfg.NameOnlyTriggerTypes {
		nameOnly = append(nameOnly, bingo.ActionType(t))
	}
	proc := processor.New(st, publisher, logger, processor.Config{
		Matcher:     bingo.NewMatcher(nameOnly...),
		TaskPoints:  cfg.TaskPoints,
		BingoPoints: cfg.BingoPoints,
	})

	job := standings.NewJob(st, standings.NewRedisSink(rdb, cfg.StandingsPrefix, 2*cfg.StandingsInterval), logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Submitter:     proc,
		Reader:        st,
		Broker:        broker,
		SubmitKeyHash: cfg.SubmitKeyHash,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"sqlite": dbChecker{db},
			"redis":  redisChecker{rdb},
		}).Routes())
		r.Mount("/ws", feed.NewHandler(logger, broker, st).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting standings job", "interval", cfg.StandingsInterval)
		return job.Run(gctx, cfg.StandingsInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
