// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the todoapi HTTP server.
//
// # Commands
//
//	api serve                  Start the HTTP server (default).
//	api migrate up             Apply all pending migrations.
//	api migrate down [steps]   Roll back the given number of migrations (default 1).
//	api migrate version        Print the current schema version.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/todoapi/internal/platform/config"
	"github.com/taibuivan/todoapi/internal/platform/constants"
)

func main() {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Todo list REST API with session authentication",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// newLogger builds the process logger tagged with the application name.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))

	slog.SetDefault(log)
	return log
}

// loadConfig initializes the logger first so that configuration errors are
// structured JSON, then upgrades it to debug level when requested.
func loadConfig() (*config.Config, *slog.Logger) {
	log := newLogger(false)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
		log.Debug("debug_logging_enabled")
	}
	return cfg, log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
