package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/agora-agent/internal/agent/scout"
	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/internal/storage/sqlite"
	"github.com/agora-agent/pkg/logger"
	"github.com/agora-agent/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
	repo    storage.Repository
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agora-scheduler",
		Short: "Background scheduler for the agora agent",
		Long: `Runs scheduled news ingestion and scoring in the background.
Content generation and review stay operator-driven through the CLI.`,
		RunE: runScheduler,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	log.Info().Msg("Starting Agora Agent Scheduler")

	// Initialize storage
	repo, err = sqlite.New(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Start health check server
	go startHealthServer()

	// Initialize rate limiter and AI client
	limiter := ratelimit.NewLimiter(cfg.RateLimit.AnthropicRequestsPerMinute, cfg.RateLimit.FeedRequestsPerSecond)
	aiClient := ai.NewClient(cfg.Anthropic, limiter, log)

	// Create scout agent
	scoutAgent := scout.NewAgent(repo, scout.NewFeedFetcher(), aiClient, limiter, cfg.Scout, log)

	// Seed configured sources before the first run
	if added, err := scoutAgent.SeedSources(context.Background()); err != nil {
		log.Error().Err(err).Msg("Source seeding failed")
	} else if added > 0 {
		log.Info().Int("added", added).Msg("Seeded news sources from config")
	}

	// Create cron scheduler
	c := cron.New(cron.WithLogger(cronLogger{log}))

	// Schedule ingestion job
	_, err = c.AddFunc(cfg.Scheduler.IngestCron, func() {
		ctx := context.Background()
		log.Info().Msg("Running scheduled ingestion")

		report, err := scoutAgent.FetchAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled ingestion failed")
			return
		}

		log.Info().
			Int("sources_fetched", report.SourcesFetched).
			Int("candidates_added", report.CandidatesAdded).
			Int("errors", len(report.Errors)).
			Msg("Scheduled ingestion completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ingestion job: %w", err)
	}
	log.Info().Str("cron", cfg.Scheduler.IngestCron).Msg("Ingestion job scheduled")

	// Schedule scoring job
	_, err = c.AddFunc(cfg.Scheduler.ScoreCron, func() {
		ctx := context.Background()
		log.Info().Msg("Running scheduled scoring")

		report, err := scoutAgent.ScoreUnscored(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled scoring failed")
			return
		}

		log.Info().
			Int("scored", report.Scored).
			Int("failed", report.Failed).
			Msg("Scheduled scoring completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scoring job: %w", err)
	}
	log.Info().Str("cron", cfg.Scheduler.ScoreCron).Msg("Scoring job scheduled")

	// Start scheduler
	c.Start()
	log.Info().Msg("Scheduler started")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down scheduler")
	c.Stop()

	return nil
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Msgf(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Msgf(msg, keysAndValues...)
}

// startHealthServer starts a simple HTTP server for health checks
func startHealthServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Agora Agent Scheduler"))
	})

	log.Info().Str("port", port).Msg("Health check server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error().Err(err).Msg("Health server failed")
	}
}
