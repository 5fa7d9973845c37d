package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vsinha/pantry/pkg/config"
	"github.com/vsinha/pantry/pkg/interfaces/cli/commands"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Command line flags override the environment
	var (
		dataFile = flag.String("data", cfg.DataFile, "Path to the state file")
		logFile  = flag.String("log", cfg.LogFile, "Path to the journal file")
		format   = flag.String("format", cfg.OutputFormat, "Output format: text, json, csv")
		logLevel = flag.String("log-level", cfg.LogLevel.String(), "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := config.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cmd := commands.NewInventoryCommand(commands.Config{
		DataFile: *dataFile,
		LogFile:  *logFile,
		Format:   *format,
		Logger:   logger,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cmd.Execute(ctx, flag.Args())
	stop()
	os.Exit(commands.Report(os.Stderr, err))
}
