package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"tactical-trivia/internal/app"
	"tactical-trivia/internal/config"
	"tactical-trivia/internal/domain"
	"tactical-trivia/internal/infra/memory"
	pgloader "tactical-trivia/internal/infra/postgres"
	redisstore "tactical-trivia/internal/infra/redis"
	transport "tactical-trivia/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// sessionPruner is implemented by the session stores that keep runs in process memory.
type sessionPruner interface {
	app.SessionRepository
	Prune(maxIdle time.Duration) int
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(domain.DefaultQuestionBank())
	switch {
	case pool != nil:
		loader = pgloader.NewQuestionLoader(pool)
	case cfg.Bank.Path != "":
		loader = memory.NewFileQuestionLoader(cfg.Bank.Path)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var (
		bank     app.BankRepository
		users    app.UserRepository
		scores   app.ScoreStore
		sessions sessionPruner
	)
	if redisClient != nil {
		bank = redisstore.NewBankRepository(redisClient, loader, bankTTL)
		users = redisstore.NewUserStore(redisClient)
		scores = redisstore.NewScoreStore(redisClient)
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		bank = memory.NewBankRepository(loader, bankTTL)
		users = memory.NewUserStore()
		scores = memory.NewScoreStore()
		sessions = memory.NewSessionStore()
	}

	registry := app.NewRegistry(users, scores, logger)
	engine := app.NewEngine(bank, scores, sessions, logger)
	wsHandler := transport.NewWSHandler(registry, engine, logger)

	scheduler, err := startSessionPruning(cfg, sessions, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown", slog.Any("error", err))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting trivia server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// startSessionPruning drops runs abandoned mid-quiz on a fixed interval.
func startSessionPruning(cfg config.Config, sessions sessionPruner, logger *slog.Logger) (gocron.Scheduler, error) {
	maxIdle := config.TTLDuration(cfg.Session.MaxIdle, 30*time.Minute)
	interval := config.TTLDuration(cfg.Session.PruneInterval, 5*time.Minute)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if removed := sessions.Prune(maxIdle); removed > 0 {
				logger.Info("pruned idle sessions", slog.Int("count", removed))
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
