// Package webhook posts batch completed events to an HTTP endpoint.
//
// Each POST carries an Idempotency-Key derived from the batch, so a
// receiver that already accepted a batch can answer 409 to a retried
// request and the adapter counts that as delivered.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/justapithecus/billingflatfile/adapter"
	"github.com/justapithecus/billingflatfile/iox"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Request headers set on every POST. They take precedence over
// Config.Headers.
const (
	EventTypeHeader      = "X-Billing-Event"
	ApplicationHeader    = "X-Billing-Application"
	NextRunIDHeader      = "X-Billing-Next-Run-Id"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// Config configures the webhook adapter.
type Config struct {
	URL string
	// Headers are added to each request, typically for authentication.
	Headers map[string]string
	// Timeout bounds one attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
}

// Adapter posts batch completed events as JSON.
type Adapter struct {
	config Config
	client *http.Client
}

// New validates cfg and creates the adapter.
func New(cfg Config) (*Adapter, error) {
	switch {
	case cfg.URL == "":
		return nil, errors.New("webhook adapter requires a URL")
	case cfg.Retries < 0:
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Publish posts event. Network errors, 429 and 5xx are retried with
// backoff; 409 means the receiver already has this batch; any other
// non-2xx status fails at once.
func (a *Adapter) Publish(ctx context.Context, event *adapter.BatchCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	err = adapter.Retry(ctx, a.config.Retries, func(ctx context.Context) error {
		err := a.post(ctx, event, body)
		var se *StatusError
		if errors.As(err, &se) && !se.Retriable() {
			return adapter.Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("webhook: batch %s: %w", event.BatchID, err)
	}
	return nil
}

// StatusError is a non-2xx response other than 409.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retriable reports whether the receiver may accept the same request later.
func (e *StatusError) Retriable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func (a *Adapter) post(ctx context.Context, event *adapter.BatchCompletedEvent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return adapter.Permanent(fmt.Errorf("create request: %w", err))
	}
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventTypeHeader, event.EventType)
	req.Header.Set(ApplicationHeader, event.ApplicationID)
	req.Header.Set(NextRunIDHeader, fmt.Sprint(event.NextRunID))
	req.Header.Set(IdempotencyKeyHeader, event.IdempotencyKey())

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return nil
	default:
		return &StatusError{Code: resp.StatusCode}
	}
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
