package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

func main() {
	plain := flag.Bool("plain", false, "Print markdown instead of rendering it.")
	verbose := flag.Bool("v", false, "Log at debug level to stderr.")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	app := &cli.App{Out: os.Stdout, Err: os.Stderr, In: os.Stdin}
	cli.Register(commander, app)
	flag.Parse()
	app.Plain = *plain

	cli.LoadEnvFile()
	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := log.New(log.Config{Level: log.ParseLevel(level), Output: os.Stderr})

	os.Exit(int(run(context.Background(), commander, app, logger)))
}

func run(ctx context.Context, commander *subcommands.Commander, app *cli.App, logger *log.Logger) subcommands.ExitStatus {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return subcommands.ExitFailure
	}

	tracker, be, err := cli.InitTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open data", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer be.Close()
	app.Tracker = tracker

	if cfg.ExportEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqp.WithLogger(logger))
		if err != nil {
			logger.Warn("Spreadsheet export unavailable", log.FieldError, err)
		} else {
			defer client.Close()
			app.Publisher = client
		}
	}

	return commander.Execute(ctx)
}
