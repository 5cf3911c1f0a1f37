package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/repositories"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	sink := shared.NewLogSink(os.Stderr)
	logger := shared.NewLogger(sink)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	if err := config.ApplyEnv(".env"); err != nil {
		logger.Warn("failed to load .env, using process environment", "error", err)
	}

	var store Store
	if db, err := shared.OpenDatabase(config.Database); err == nil {
		defer db.Close()
		store = repositories.NewStore(repositories.NewBlobRepository(db), shared.WithLogger(logger, "component", "store"))
	} else {
		logger.Warn("library unavailable", "path", config.Database.Path, "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: services.NewGatewayFromConfig(config, logger),
		Store:   store,
		Logger:  logger,
		LogSink: sink,
	})

	app := &cli.Command{
		Name:     "nextmusic",
		Usage:    "Search, play and organise music from YouTube in the terminal",
		Version:  "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", services.UserMessage(err))
	}
}
