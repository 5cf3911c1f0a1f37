package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/nextmusic/internal/repositories"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
		config = shared.DefaultConfig()
	}
	if err := config.ApplyEnv(".env"); err != nil {
		r.logger.Warn("failed to load .env, using process environment", "error", err)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.logger.Info("rolled back latest migration", "path", config.Database.Path)
		return nil
	}

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) == 0 {
		r.logger.Info("database is up to date")
	} else {
		r.logger.Info("applied migrations", "versions", applied)
	}

	blobs := repositories.NewBlobRepository(db)
	if cmd.Bool("reset") {
		for _, key := range []string{repositories.PlaylistsKey, repositories.HistoryKey} {
			if err := blobs.Delete(ctx, key); err != nil && !errors.Is(err, shared.ErrKeyNotFound) {
				return fmt.Errorf("failed to reset library: %w", err)
			}
		}
		r.logger.Info("library reset, default playlists return on next start")
	}

	keys, err := blobs.Keys(ctx)
	if err != nil {
		return err
	}
	r.writePlain("Stored keys: %d\n", len(keys))
	for _, k := range keys {
		r.writePlain("  %s\n", k)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupConfig writes the template configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		return fmt.Errorf("%w: config path", shared.ErrMissingArgument)
	}

	if cmd.Bool("force") {
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.youtube.api_key and credentials.gemini.api_key (or YOUTUBE_API_KEY / GEMINI_API_KEY in .env)\n")
	r.writePlain("2. Run 'nextmusic setup database' to create the library\n")
	return nil
}
