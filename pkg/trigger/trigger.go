package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/pkg/circuitbreaker"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/httpclient"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Event is the payload delivered to transition webhooks.
type Event struct {
	SessionID string `json:"sessionId"`
	Event     string `json:"event"`
	ActorID   string `json:"actorId"`
}

// Emitter posts transition events to a configured webhook URL.
// Deliveries are fire-and-forget: failures are logged and counted but never
// propagate to the caller.
type Emitter struct {
	url        string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewEmitter creates an Emitter for the given webhook URL.
// An empty URL produces an emitter that silently skips deliveries.
func NewEmitter(url string, httpClient httpclient.Client) *Emitter {
	return &Emitter{
		url:        url,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("event-webhook")),
	}
}

// CallAsync delivers the event in the background.
func (e *Emitter) CallAsync(sessionID, event, actorID string) {
	if e.url == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.deliver(ctx, Event{SessionID: sessionID, Event: event, ActorID: actorID}); err != nil {
			metrics.WebhookDeliveries.WithLabelValues(event, "error").Inc()
			logger.Error("Failed to deliver event webhook",
				zap.Error(err),
				zap.String("url", e.url),
				zap.String("event", event),
				zap.String("session_id", sessionID))
			return
		}

		metrics.WebhookDeliveries.WithLabelValues(event, "success").Inc()
		logger.Info("Event webhook delivered",
			zap.String("event", event),
			zap.String("session_id", sessionID),
			zap.String("actor_id", actorID))
	}()
}

func (e *Emitter) deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return retry.Do(ctx, retry.WebhookConfig(), "deliverEventWebhook", func() error {
		_, err := circuitbreaker.Execute(e.breaker, func() (struct{}, error) {
			resp, postErr := e.httpClient.Post(e.url, "application/json", bytes.NewReader(body))
			if postErr != nil {
				return struct{}{}, postErr
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return struct{}{}, fmt.Errorf("webhook returned status %d", resp.StatusCode)
			}
			return struct{}{}, nil
		})
		if err != nil {
			return circuitbreaker.FormatError(e.breaker.Name(), err)
		}
		return nil
	})
}
