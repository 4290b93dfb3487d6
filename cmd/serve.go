package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoopsight/hoopsight/api"
	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/config"
	"github.com/hoopsight/hoopsight/internal/gemini"
	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
	"github.com/hoopsight/hoopsight/internal/session"
)

// startupOddsTimeout bounds the best-effort odds preload at boot. The server
// starts regardless of the outcome.
const startupOddsTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires the full stack and runs the HTTP server until interrupted.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)
	logger.Info("starting HoopSight API server", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	feed := odds.NewClient(cfg.OddsBaseURL,
		time.Duration(cfg.OddsTimeoutSec)*time.Second,
		logger.With("component", "odds"))

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.ModelName,
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxOutputTokens,
		SystemInstruction: chat.SystemInstruction,
		Tools:             chat.Toolset(),
		Logger:            logger.With("component", "gemini"),
	})
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	engine, err := chat.New(chat.Config{
		Model:         model,
		Tools:         chat.NewToolExecutor(feed, logger.With("component", "tools")),
		Logger:        logger.With("component", "chat"),
		MaxToolRounds: cfg.MaxToolRounds,
	})
	if err != nil {
		return fmt.Errorf("creating chat orchestrator: %w", err)
	}

	store := session.NewStore(engine, logger.With("component", "session"))
	store.Bootstrap()

	preloadOdds(ctx, feed, store, logger)

	server := api.NewServer(engine, feed, store, logger)
	return server.Run(ctx, cfg.ServeAddr)
}

// preloadOdds fetches the default feed once at boot so clients have a
// snapshot before the first conversation. Failures are logged and skipped;
// the chat can always fetch fresh odds through the tool path.
func preloadOdds(ctx context.Context, feed *odds.Client, store *session.Store, logger log.Logger) {
	fetchCtx, cancel := context.WithTimeout(ctx, startupOddsTimeout)
	defer cancel()

	payload, err := feed.Predictions(fetchCtx, odds.DefaultSportsbook, odds.DefaultModel, true)
	if err != nil {
		logger.Warn("initial odds preload failed, starting without snapshot", "error", err)
		return
	}
	if payload.Sportsbook == "" {
		payload.Sportsbook = odds.DefaultSportsbook
	}
	store.LoadInitialOdds(payload)
}
