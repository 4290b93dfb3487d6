package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/config"
	"github.com/hoopsight/hoopsight/internal/gemini"
	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	feed := odds.NewClient(cfg.OddsBaseURL,
		time.Duration(cfg.OddsTimeoutSec)*time.Second, logger)

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.ModelName,
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxOutputTokens,
		SystemInstruction: chat.SystemInstruction,
		Tools:             chat.Toolset(),
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	engine, err := chat.New(chat.Config{
		Model:         model,
		Tools:         chat.NewToolExecutor(feed, logger),
		Logger:        logger,
		MaxToolRounds: cfg.MaxToolRounds,
	})
	if err != nil {
		return fmt.Errorf("creating chat orchestrator: %w", err)
	}

	question := strings.Join(args, " ")
	result := engine.SendTurn(ctx, nil, question)

	fmt.Println(result.Text)

	if result.StructuredData != nil {
		encoded, err := json.MarshalIndent(result.StructuredData, "", "  ")
		if err == nil {
			fmt.Println()
			fmt.Println(string(encoded))
		}
	}

	if result.IsError {
		return fmt.Errorf("turn did not complete cleanly")
	}
	return nil
}
