// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/todoapi/internal/platform/config"
	"github.com/taibuivan/todoapi/internal/platform/migration"
)

// errNotPostgres is returned by migrate subcommands when another driver is selected.
var errNotPostgres = errors.New("migrations apply to the postgres store driver only")

func newMigrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := migrationConfig()
				if err != nil {
					return err
				}
				return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					parsed, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid steps %q: %w", args[0], err)
					}
					steps = parsed
				}

				cfg, log, err := migrationConfig()
				if err != nil {
					return err
				}
				return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, log)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := migrationConfig()
				if err != nil {
					return err
				}

				version, dirty, err := migration.Version(cfg.DatabaseURL, cfg.MigrationPath, log)
				if err != nil {
					return err
				}
				cmd.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)

	return command
}

func migrationConfig() (*config.Config, *slog.Logger, error) {
	cfg, log := loadConfig()
	if cfg.StoreDriver != config.DriverPostgres {
		return nil, nil, errNotPostgres
	}
	return cfg, log, nil
}
