package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/export"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	tracker, be, err := cli.InitTracker(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize tracker", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer be.Close()

	opts := apphttp.Options{Logger: logger, Ready: be.Ping}

	var amqpClient *amqp.Client
	if cfg.ExportEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			amqp.WithLogger(logger), amqp.WithPrefetch(cfg.ExportPrefetch))
		if err != nil {
			// The tracker works without the broker; only sheet export is lost.
			logger.Warn("Spreadsheet export disabled, AMQP unavailable", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			opts.Publisher = export.JobPublisher(amqpClient)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, tracker, opts)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"sheet_export", opts.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)

	m := srv.Metrics()
	logger.Info("Server stopped gracefully",
		"total_requests", m.TotalRequests,
		"failed_requests", m.FailedRequests)
}
