package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-party-service/internal/config"
	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/game"
	"trivia-party-service/internal/infra/memory"
	pgbank "trivia-party-service/internal/infra/postgres"
	redisinfra "trivia-party-service/internal/infra/redis"
	"trivia-party-service/internal/infra/trivia"
	"trivia-party-service/internal/quiz"
	transport "trivia-party-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the party game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		// No config file means built-in defaults only.
		log.Printf("config %s not found, using defaults", configPath)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Questions come from the postgres bank when configured, otherwise
	// straight from the public trivia API.
	var upstream quiz.Source
	if pool != nil {
		upstream = pgbank.NewBankSource(pool)
	} else {
		timeout := config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second)
		upstream = trivia.NewClient(cfg.Trivia.BaseURL, timeout)
	}

	poolTTL := config.TTLDuration(cfg.Questions.PoolTTL, 10*time.Minute)
	var source quiz.Source
	if redisClient != nil {
		source = redisinfra.NewPoolSource(redisClient, upstream, cfg.Questions.PoolBatch, poolTTL)
	} else {
		source = memory.NewPoolSource(upstream, cfg.Questions.PoolBatch, poolTTL)
	}
	engine := quiz.NewEngine(source)

	var store game.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, 24*time.Hour)
	} else {
		store = memory.NewSessionStore()
	}

	manager := game.NewManager(store, engine, gameDefaults(cfg.Game))
	handler := transport.NewHandler(manager, cfg.Server.AdminPassword, cfg.Server.PublicBaseURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux, transport.NewWSHandler(manager))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Prime the question pools so the first turn doesn't wait on the
	// upstream. Each fetch triggers a batch refill; the leftovers stay cached.
	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		warmed := engine.GenerateMixed(warmCtx, 1, 1, 1, cfg.Game.Categories)
		log.Printf("question pools primed with %d draws", len(warmed))
	}()

	sweepInterval := config.TTLDuration(cfg.Server.SweepInterval, time.Minute)
	sweepDone := make(chan struct{})
	go runSweeper(manager, sweepInterval, sweepDone)

	go func() {
		log.Printf("starting trivia party service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runSweeper periodically reaps sessions whose game has finished.
func runSweeper(manager *game.Manager, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := manager.SweepFinished(); removed > 0 {
				log.Printf("swept %d finished sessions", removed)
			}
		case <-done:
			return
		}
	}
}

// gameDefaults fills in sane bounds when the config leaves the game block empty.
func gameDefaults(opts domain.GameOptions) domain.GameOptions {
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = 8
	}
	if opts.MinRounds == 0 {
		opts.MinRounds = 3
	}
	if opts.MaxRounds == 0 {
		opts.MaxRounds = 6
	}
	if opts.TimeLimitSeconds == 0 {
		opts.TimeLimitSeconds = 30
	}
	return opts
}
