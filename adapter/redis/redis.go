// Package redis publishes batch completed events on Redis pub/sub.
//
// Before publishing, the adapter claims a marker key for the batch with
// SET NX, so re-running the notification for a batch that was already
// announced does not announce it twice. The marker is released if every
// publish attempt fails.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/billingflatfile/adapter"
)

const (
	// DefaultChannel is used when no channel is configured.
	DefaultChannel = "billingflatfile:batch_completed"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
	// DefaultMarkerTTL is how long a published batch stays claimed.
	DefaultMarkerTTL = 7 * 24 * time.Hour

	// ApplicationPlaceholder in a channel name is replaced by the
	// event's application id, e.g. "billing:{application_id}:done".
	ApplicationPlaceholder = "{application_id}"
)

// Config configures the Redis adapter.
type Config struct {
	// URL is redis://[:password@]host:port[/db].
	URL string
	// Channel may contain ApplicationPlaceholder.
	Channel string
	// Timeout bounds one attempt.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
	// MarkerTTL is the lifetime of the per-batch marker key.
	MarkerTTL time.Duration
}

// Adapter publishes batch completed events with PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client

	receivers int64
}

// New validates cfg and creates the adapter. No connection is made yet.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MarkerTTL <= 0 {
		cfg.MarkerTTL = DefaultMarkerTTL
	}
	return &Adapter{config: cfg, client: goredis.NewClient(opts)}, nil
}

// ChannelFor resolves the channel event is published on.
func (a *Adapter) ChannelFor(event *adapter.BatchCompletedEvent) string {
	return strings.ReplaceAll(a.config.Channel, ApplicationPlaceholder, event.ApplicationID)
}

// MarkerKey is the key claimed for event before it is published.
func MarkerKey(event *adapter.BatchCompletedEvent) string {
	return event.IdempotencyKey() + ":published"
}

// Publish claims the batch marker and publishes event. An event whose
// marker is already held is skipped and reported with zero receivers.
func (a *Adapter) Publish(ctx context.Context, event *adapter.BatchCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}
	channel := a.ChannelFor(event)
	marker := MarkerKey(event)

	claimed := false
	a.receivers = 0
	err = adapter.Retry(ctx, a.config.Retries, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()

		if !claimed {
			ok, err := a.client.SetNX(ctx, marker, event.BatchID, a.config.MarkerTTL).Result()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			claimed = true
		}
		n, err := a.client.Publish(ctx, channel, body).Result()
		if err != nil {
			return err
		}
		a.receivers = n
		return nil
	})
	if err != nil {
		if claimed {
			a.release(ctx, marker)
		}
		return fmt.Errorf("redis: batch %s on %s: %w", event.BatchID, channel, err)
	}
	return nil
}

// release drops the marker so a later run can publish the batch again.
func (a *Adapter) release(ctx context.Context, marker string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Timeout)
	defer cancel()
	_ = a.client.Del(ctx, marker).Err()
}

// Receivers returns how many subscribers received the last event.
// Zero is not an error: pub/sub has no delivery guarantee.
func (a *Adapter) Receivers() int64 {
	return a.receivers
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
