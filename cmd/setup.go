package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// SetupConfig writes the config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPathOrDefault()
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Set tmdb.api_key (or TMDB_API_KEY) before browsing movies.\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// With --seed the demo accounts are inserted; with --rollback the latest migration is reverted instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(shared.ExpandHome(config.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		version, _ := shared.CurrentVersion(db)
		r.writePlain("✓ Rolled back to schema version %d\n", version)
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	r.writePlain("✓ Database ready: %s (schema version %d)\n", config.Database.Path, version)

	if cmd.Bool("seed") {
		directory := auth.NewDirectory(repositories.NewAccountRepository(db))
		n, err := directory.Seed(ctx, auth.DemoAccounts())
		if err != nil {
			return fmt.Errorf("failed to seed accounts: %w", err)
		}
		r.writePlain("✓ Seeded %d demo accounts\n", n)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
