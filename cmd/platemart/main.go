package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/platemart/platemart/internal/adapters/api/rest"
	"github.com/platemart/platemart/internal/adapters/logger"
	"github.com/platemart/platemart/internal/adapters/notification"
	"github.com/platemart/platemart/internal/adapters/payment"
	"github.com/platemart/platemart/internal/adapters/store"
	"github.com/platemart/platemart/internal/core/config"
	"github.com/platemart/platemart/internal/core/platemart"
)

func main() {
	if err := run(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("failed initialize config: %w", err)
	}

	lgr, err := logger.New(cfg.LogLevel, logger.OutputPath(cfg.LogPath))
	if err != nil {
		return fmt.Errorf("failed initialize logger: %w", err)
	}

	storage, err := store.New(ctx, cfg.Store, lgr)
	if err != nil {
		return fmt.Errorf("failed initialize storage: %w", err)
	}

	gateway := payment.New(cfg.Payment, payment.Logger(lgr))
	notifier := notification.New(cfg.Notify, notification.Logger(lgr))

	mart := platemart.New(cfg.Platemart, storage, gateway, notifier, platemart.Logger(lgr))

	server, err := rest.New(
		mart,
		rest.Logger(lgr),
		rest.Configure(cfg.Rest),
	)
	if err != nil {
		return fmt.Errorf("failed initialize rest server: %w", err)
	}

	err = server.Run()
	if err != nil {
		return fmt.Errorf("stop server, %w", err)
	}
	return nil
}
