package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/config"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/circuitbreaker"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/httpclient"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// walletRequest is the payload for wallet charge and refund calls
type walletRequest struct {
	UserID    string  `json:"userId"`
	SessionID string  `json:"sessionId"`
	Amount    float64 `json:"amount"`
}

// HTTPWalletGateway calls the wallet service over HTTP. Charges and refunds
// are retried and run behind a circuit breaker; a settled charge comes back
// later through the payment webhook.
type HTTPWalletGateway struct {
	config     *config.Config
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewHTTPWalletGateway creates a wallet gateway from config
func NewHTTPWalletGateway(cfg *config.Config, httpClient httpclient.Client) *HTTPWalletGateway {
	return &HTTPWalletGateway{
		config:     cfg,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("wallet")),
	}
}

// Charge requests payment from a participant for a session
func (g *HTTPWalletGateway) Charge(ctx context.Context, userID, sessionID string, amount float64) error {
	return g.call(ctx, "charge", walletRequest{UserID: userID, SessionID: sessionID, Amount: amount})
}

// Refund returns a settled payment to a participant
func (g *HTTPWalletGateway) Refund(ctx context.Context, userID, sessionID string, amount float64) error {
	return g.call(ctx, "refund", walletRequest{UserID: userID, SessionID: sessionID, Amount: amount})
}

func (g *HTTPWalletGateway) call(ctx context.Context, operation string, payload walletRequest) error {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/wallet/%s", g.config.Wallet.BaseURL, operation)

	err = retry.Do(ctx, retry.WalletConfig(), "wallet_"+operation, func() error {
		_, execErr := circuitbreaker.Execute(g.breaker, func() (struct{}, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if reqErr != nil {
				return struct{}{}, reqErr
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+g.config.Wallet.APIToken)

			resp, doErr := g.httpClient.Do(req)
			if doErr != nil {
				return struct{}{}, doErr
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return struct{}{}, fmt.Errorf("wallet returned status %d", resp.StatusCode)
			}
			return struct{}{}, nil
		})
		if execErr != nil {
			return circuitbreaker.FormatError(g.breaker.Name(), execErr)
		}
		return nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		logger.LogAPICall("wallet", operation, "error", duration,
			zap.Error(err),
			zap.String("session_id", payload.SessionID),
			zap.String("user_id", payload.UserID))
		return fmt.Errorf("wallet %s failed: %w", operation, err)
	}

	logger.LogAPICall("wallet", operation, "success", duration,
		zap.String("session_id", payload.SessionID),
		zap.String("user_id", payload.UserID))

	return nil
}
