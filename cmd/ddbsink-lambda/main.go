package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/ddbsink/internal/config"
	"github.com/jacentio/ddbsink/internal/logging"
	"github.com/jacentio/ddbsink/sink"
	"github.com/jacentio/ddbsink/stream"
)

//nolint:gochecknoglobals,revive // build variables
var (
	commit string = "unspecified"
	app    string = "ddbsink-lambda"
)

func main() {
	var cfg config.Config
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

	keyFormat, valueFormat, err := cfg.Formats()
	if err != nil {
		log.Error("invalid payload format", slog.Any("error", err))
		os.Exit(1)
	}

	// The retry budget spans invocations of this execution environment.
	task := sink.NewTask(sink.WithLogger(log))
	if err := task.Start(context.Background(), cfg.SinkConfig()); err != nil {
		log.Error("failed to start sink task", slog.Any("error", err))
		os.Exit(1)
	}

	handler := stream.NewHandler(task, keyFormat, valueFormat, log)
	lambda.Start(handler.HandleKafkaEvent)
}
