package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/fintrack/cmd/accounts"
	"fjacquet/fintrack/cmd/categories"
	"fjacquet/fintrack/cmd/export"
	"fjacquet/fintrack/cmd/parse"
	"fjacquet/fintrack/cmd/recategorize"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/cmd/stats"
	"fjacquet/fintrack/cmd/suggest"
	syncsheets "fjacquet/fintrack/cmd/sync"
	"fjacquet/fintrack/internal/config"
)

func init() {
	// 1. Load .env before anything reads the environment
	envFile, envErr := config.LoadEnv()

	// 2. Bootstrap logger from LOG_LEVEL / LOG_FORMAT until config is loaded
	root.Log = config.LoggerFromEnv()
	if envErr != nil {
		root.Log.WithError(envErr).Warn("Failed to load .env file")
	} else if envFile != "" {
		root.Log.Debug("Loaded environment from " + envFile)
	}

	// 3. Flags and subcommands
	root.Init()
	root.Cmd.AddCommand(
		parse.Cmd,
		parse.AllCmd,
		recategorize.Cmd,
		categories.Cmd,
		accounts.Cmd,
		stats.Cmd,
		syncsheets.Cmd,
		export.Cmd,
		suggest.Cmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
