package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacentio/ddbsink/internal/config"
	"github.com/jacentio/ddbsink/internal/kafka"
	"github.com/jacentio/ddbsink/internal/logging"
	"github.com/jacentio/ddbsink/internal/metrics"
	"github.com/jacentio/ddbsink/internal/runner"
	"github.com/jacentio/ddbsink/internal/server"
	"github.com/jacentio/ddbsink/sink"
)

//nolint:gochecknoglobals,revive // build variables
var (
	commit string = "unspecified"
	app    string = "ddbsink"
)

func main() {
	var cfg config.ConsumerConfig
	if err := config.Load(&cfg); err != nil {
		slog.Error("unable to parse config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logging.New(os.Stdout, logging.Options{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		AddSource: cfg.LogAddSource,
	})
	log = logging.WithBuildInfo(log, app, commit)

	if err := mainErr(&cfg, log); err != nil {
		log.Error("Service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("Service terminated gracefully")
}

func mainErr(cfg *config.ConsumerConfig, log *slog.Logger) error {
	keyFormat, valueFormat, err := cfg.Formats()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := sink.NewTask(sink.WithLogger(log))
	if err := task.Start(ctx, cfg.SinkConfig()); err != nil {
		return fmt.Errorf("start sink task: %w", err)
	}
	defer task.Stop()

	consumer, err := kafka.NewConsumer(kafka.Config{
		Brokers:        cfg.KafkaBrokers,
		Topics:         cfg.KafkaTopics,
		Group:          cfg.KafkaGroup,
		MaxPollRecords: cfg.KafkaMaxPollRecords,
		SessionTimeout: cfg.KafkaSessionTimeout,
		KeyFormat:      keyFormat,
		ValueFormat:    valueFormat,
	}, log)
	if err != nil {
		return err
	}
	defer consumer.Close()

	apiServer := server.NewHTTPServer(
		cfg.ServerAddr,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
		cfg.ServerIdleTimeout,
		reg,
		log,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.New(consumer, task, log).Run(ctx)
	}()

	select {
	case err := <-serverErr:
		stop()
		<-runErr
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case err := <-runErr:
		if ctx.Err() != nil {
			log.Info("Received termination signal - service will shutdown")
		}
		if shutdownErr := apiServer.Shutdown(cfg.ServerShutdownTimeout); shutdownErr != nil {
			log.Error("failed to shutdown server", slog.Any("error", shutdownErr))
		}
		if err != nil {
			return fmt.Errorf("sink stopped: %w", err)
		}
		return nil
	}
}
