package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/config"
	"brandpost/autoposter/internal/database"
	"brandpost/autoposter/internal/fetch"
	"brandpost/autoposter/internal/importer"
	"brandpost/autoposter/internal/ledger"
	"brandpost/autoposter/internal/pipeline"
	"brandpost/autoposter/internal/publish"
	"brandpost/autoposter/internal/render"
	"brandpost/autoposter/internal/resolve"
	"brandpost/autoposter/internal/server"
	"brandpost/autoposter/internal/store"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func usage() {
	fmt.Println("Usage: autoposter [command] [options]")
	fmt.Println("Commands: import, start, server")
	fmt.Println("\nFor command-specific options, use: autoposter [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importCmd.StringVar(&cfg.SeedPath, "seed", config.GetEnvString("AUTOPOSTER_SEED_PATH", config.DefaultSeedPath),
		"Path to the tenant seed JSON file (env: AUTOPOSTER_SEED_PATH)")
	importCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("AUTOPOSTER_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: AUTOPOSTER_DB_PATH)")

	var importLogLevelStr string
	importCmd.StringVar(&importLogLevelStr, "log-level", config.GetEnvString("AUTOPOSTER_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: AUTOPOSTER_LOG_LEVEL)")

	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	startCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("AUTOPOSTER_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: AUTOPOSTER_DB_PATH)")

	var startLogLevelStr string
	startCmd.StringVar(&startLogLevelStr, "log-level", config.GetEnvString("AUTOPOSTER_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: AUTOPOSTER_LOG_LEVEL)")

	var intervalMinutes int
	startCmd.IntVar(&intervalMinutes, "interval", config.GetEnvInt("AUTOPOSTER_INTERVAL", config.DefaultInterval),
		"Interval in minutes between pipeline cycles, 0 for one-shot mode (env: AUTOPOSTER_INTERVAL)")

	startCmd.IntVar(&cfg.WorkerCount, "workers", config.GetEnvInt("AUTOPOSTER_WORKER_COUNT", config.DefaultWorkerCount),
		"Number of tenants processed concurrently (env: AUTOPOSTER_WORKER_COUNT)")

	var publishDelaySec int
	startCmd.IntVar(&publishDelaySec, "publish-delay", config.GetEnvInt("AUTOPOSTER_PUBLISH_DELAY", config.DefaultPublishDelaySec),
		"Seconds between successive item publishes per tenant (env: AUTOPOSTER_PUBLISH_DELAY)")

	serverCmd := flag.NewFlagSet("server", flag.ExitOnError)
	serverCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("AUTOPOSTER_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: AUTOPOSTER_DB_PATH)")

	serverCmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("AUTOPOSTER_HOST", config.DefaultServerHost),
		"Host to bind the server to (env: AUTOPOSTER_HOST)")

	serverCmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("AUTOPOSTER_PORT", config.DefaultServerPort),
		"Port to listen on (env: AUTOPOSTER_PORT)")

	var serverLogLevelStr string
	serverCmd.StringVar(&serverLogLevelStr, "log-level", config.GetEnvString("AUTOPOSTER_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: AUTOPOSTER_LOG_LEVEL)")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		importCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(importLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runImport(cfg); err != nil {
			log.Error().Err(err).Msg("Import failed")
			os.Exit(1)
		}

	case "start":
		startCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(startLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		cfg.Interval = time.Duration(intervalMinutes) * time.Minute
		cfg.PublishDelay = time.Duration(publishDelaySec) * time.Second
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runStart(cfg); err != nil {
			log.Error().Err(err).Msg("Processing failed")
			os.Exit(1)
		}

	case "server":
		serverCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(serverLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runServer(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		usage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}
}

// runImport seeds tenants and feeds into a fresh database.
// It will prompt for confirmation before deleting an existing database.
func runImport(cfg *config.Config) error {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		fmt.Printf("Database %s already exists. All data will be lost as updates are not currently supported.\n", cfg.DBPath)
		fmt.Print("Delete and recreate? (y/N): ")

		var answer string
		fmt.Scanln(&answer)

		if strings.ToLower(answer) != "y" {
			log.Info().Msg("Operation canceled by user")
			return fmt.Errorf("operation canceled by user")
		}

		if err := database.DeleteDB(cfg.DBPath); err != nil {
			log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to delete existing database")
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		log.Info().Str("path", cfg.DBPath).Msg("Deleted existing database")
	}

	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return importer.NewImporter(db).ImportSeed(cfg.SeedPath)
}

// runStart executes the pipeline either once or periodically based on configuration.
func runStart(cfg *config.Config) error {
	if cfg.Interval <= 0 {
		log.Info().Msg("Running in one-shot mode")
	} else {
		log.Info().Int64("interval_minutes", int64(cfg.Interval.Minutes())).Msg("Running in periodic mode")
	}

	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	runner := buildRunner(db, cfg)

	if err := runCycle(ctx, runner); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Pipeline cycle canceled by shutdown signal")
			return nil
		}
		return err
	}

	if cfg.Interval <= 0 {
		log.Info().Msg("One-shot cycle completed, exiting")
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.Interval).
		Time("next_run", time.Now().Add(cfg.Interval)).
		Msg("Waiting for next pipeline cycle")

	for {
		select {
		case <-ticker.C:
			log.Info().Msg("Starting scheduled pipeline cycle")

			if err := runCycle(ctx, runner); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Info().Msg("Pipeline cycle canceled by shutdown signal")
					return nil
				}
				log.Error().Err(err).Msg("Pipeline cycle failed")
				// Continue to the next cycle rather than exiting
			}

			log.Info().
				Time("next_run", time.Now().Add(cfg.Interval)).
				Msg("Waiting for next pipeline cycle")

		case <-ctx.Done():
			log.Info().Msg("Shutting down periodic processing")
			return nil
		}
	}
}

// buildRunner wires the pipeline from its concrete collaborators.
func buildRunner(db *database.DB, cfg *config.Config) *pipeline.Runner {
	st := store.New(db)
	return pipeline.NewRunner(
		st,
		st,
		fetch.NewFetcher(cfg.FetchTimeout, cfg.UserAgent, cfg.MaxItemsPerFeed),
		resolve.NewResolver(cfg.ResolveTimeout, cfg.UserAgent),
		render.NewCompositor(),
		publish.NewPublisher(cfg.PublishTimeout, cfg.UserAgent),
		ledger.New(db),
		pipeline.Options{
			WorkerCount:  cfg.WorkerCount,
			PublishDelay: cfg.PublishDelay,
		},
	)
}

// runCycle executes a single pipeline cycle with a hard upper bound.
func runCycle(ctx context.Context, runner *pipeline.Runner) error {
	cycleCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	startTime := time.Now()
	err := runner.RunCycle(cycleCtx)
	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Pipeline cycle returned")

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ctx.Err()
		}
		return fmt.Errorf("processing error: %w", err)
	}
	return nil
}

// runServer starts the HTTP API server with the provided configuration.
func runServer(cfg *config.Config) error {
	log.Debug().Msg("Starting server with debug logging enabled")

	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = true

	db, err := database.NewDB(dbCfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return server.RunServer(db, cfg.ListenAddr(), log.Logger, cfg.APIKey)
}
