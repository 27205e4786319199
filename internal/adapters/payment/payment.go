// Package payment is the adapter for the external card-processing gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Address string `env:"PAYMENT_ADDRESS" envDefault:"http://localhost:8090"`
	APIKey  string `env:"PAYMENT_API_KEY"`
	Timeout int    `env:"PAYMENT_TIMEOUT" envDefault:"15"`
}

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrChargeRejected     = errors.New("charge request rejected")
)

type Gateway struct {
	log     *zap.Logger
	cfg     *Config
	client  *http.Client
	breaker *circuitBreaker
}

type option func(*Gateway)

func Logger(log *zap.Logger) option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

func New(cfg *Config, options ...option) *Gateway {
	g := &Gateway{
		log: zap.NewNop(),
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		breaker: newCircuitBreaker(),
	}

	for _, opt := range options {
		opt(g)
	}

	return g
}

type tChargeRequest struct {
	CardToken string `json:"card_token"`
	Currency  string `json:"currency"`
	Amount    int64  `json:"amount"`
}

type tChargeResponse struct {
	ID   string `json:"id"`
	Paid bool   `json:"paid"`
}

// Charge sends a tokenized card charge to the gateway and reports whether it
// was paid together with the gateway charge id.
func (g *Gateway) Charge(ctx context.Context, cardToken string, amount int64, currency string) (paid bool, chargeID string, err error) {
	var response tChargeResponse

	err = g.breaker.execute(func() (int64, error) {
		bBody, err := json.Marshal(tChargeRequest{
			CardToken: cardToken,
			Amount:    amount,
			Currency:  currency,
		})
		if err != nil {
			return 0, fmt.Errorf("failed marshal charge request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Address+"/api/charges", bytes.NewReader(bBody))
		if err != nil {
			return 0, fmt.Errorf("failed create charge request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if g.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
		}
		defer func() { _ = resp.Body.Close() }()

		rBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("failed read charge response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			sRetryAfter := resp.Header.Get("Retry-After")
			iRetryAfter, _ := strconv.ParseInt(sRetryAfter, 10, 64)
			g.log.Debug("too many requests",
				zap.String("status", resp.Status),
				zap.String("Retry-After", sRetryAfter),
			)
			return iRetryAfter, fmt.Errorf("%w: %s", ErrGatewayUnavailable, resp.Status)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			g.log.Info("not correct response",
				zap.String("status", resp.Status),
				zap.String("body", string(rBody)),
			)
			return 0, fmt.Errorf("%w: %s", ErrChargeRejected, resp.Status)
		}

		if err := json.Unmarshal(rBody, &response); err != nil {
			return 0, fmt.Errorf("failed unmarshal charge response: %w", err)
		}

		return 0, nil
	})
	if err != nil {
		return false, "", fmt.Errorf("charge failed: %w", err)
	}

	return response.Paid, response.ID, nil
}
