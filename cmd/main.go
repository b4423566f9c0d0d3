package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"expense-assistant/internal/bootstrap"
	"expense-assistant/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Parse()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	lambda.Start(app.Handler.Handle)
}
