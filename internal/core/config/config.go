package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/platemart/platemart/internal/adapters/api/rest"
	"github.com/platemart/platemart/internal/adapters/notification"
	"github.com/platemart/platemart/internal/adapters/payment"
	"github.com/platemart/platemart/internal/adapters/store"
	"github.com/platemart/platemart/internal/adapters/store/database"
	"github.com/platemart/platemart/internal/core/platemart"
)

type Config struct {
	Rest      *rest.Config
	Store     *store.Config
	Platemart *platemart.Config
	Payment   *payment.Config
	Notify    *notification.Config
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath   string `env:"LOG_PATH"`
}

func Init() (*Config, error) {
	cfg := &Config{
		Rest: &rest.Config{},
		Store: &store.Config{
			Database: &database.Config{},
		},
		Platemart: &platemart.Config{},
		Payment:   &payment.Config{},
		Notify:    &notification.Config{},
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed load environments from file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("failed parse env: %w", err)
	}

	flag.StringVar(&cfg.Rest.Address, "a", cfg.Rest.Address, "address listen")
	flag.StringVar(&cfg.Store.Database.DSN, "d", cfg.Store.Database.DSN, "database dsn")
	flag.StringVar(&cfg.Payment.Address, "p", cfg.Payment.Address, "address payment gateway")
	flag.Parse()

	return cfg, nil
}
