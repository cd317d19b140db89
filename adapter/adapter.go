// Package adapter defines the notification boundary for finished batches.
//
// Adapters publish a batch completed event to downstream systems once the
// run id counter has been committed. The CLI owns adapter lifecycle; users
// provide configuration only.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

// EventTypeBatchCompleted is the only event type published today.
const EventTypeBatchCompleted = "batch_completed"

// Adapter type names accepted in configuration.
const (
	TypeWebhook = "webhook"
	TypeRedis   = "redis"
)

// BatchCompletedEvent is the payload published when a batch finishes.
type BatchCompletedEvent struct {
	ContractVersion string   `json:"contract_version"`
	EventType       string   `json:"event_type"` // always "batch_completed"
	BatchID         string   `json:"batch_id"`
	ApplicationID   string   `json:"application_id"`
	RunDescription  string   `json:"run_description,omitempty"`
	BillingType     string   `json:"billing_type"`
	FileVersion     string   `json:"file_version"`
	RunIDs          []string `json:"run_ids"`
	NextRunID       int      `json:"next_run_id"`
	FileCount       int      `json:"file_count"`
	RowCount        int      `json:"row_count"`
	OutputDir       string   `json:"output_dir"`
	StoragePath     string   `json:"storage_path,omitempty"` // set when delivered
	Timestamp       string   `json:"timestamp"`              // ISO 8601
	DurationMs      int64    `json:"duration_ms"`
}

// NewBatchCompletedEvent builds the event for a finished batch.
// storagePath is the delivery location, or "" when nothing was delivered.
func NewBatchCompletedEvent(res *batch.Result, storagePath string) *BatchCompletedEvent {
	ids := make([]string, len(res.RunIDs))
	for i, id := range res.RunIDs {
		ids[i] = runid.FilenameID(id)
	}
	return &BatchCompletedEvent{
		ContractVersion: types.EventContractVersion,
		EventType:       EventTypeBatchCompleted,
		BatchID:         res.BatchID,
		ApplicationID:   res.Run.ApplicationID,
		RunDescription:  res.Run.RunDescription,
		BillingType:     string(res.Run.BillingType),
		FileVersion:     res.Run.FileVersion,
		RunIDs:          ids,
		NextRunID:       res.NextRunID,
		FileCount:       len(res.Files),
		RowCount:        res.RowCount(),
		OutputDir:       res.OutputDir,
		StoragePath:     storagePath,
		Timestamp:       res.FinishedAt.UTC().Format(time.RFC3339),
		DurationMs:      res.Duration().Milliseconds(),
	}
}

// IdempotencyKey identifies the event for receiver-side deduplication.
// Every attempt to publish the same batch carries the same key.
func (e *BatchCompletedEvent) IdempotencyKey() string {
	return "billingflatfile:" + e.ApplicationID + ":" + e.BatchID
}

// Adapter publishes batch completed events to a downstream system.
// Implementations must be safe for single use per batch.
type Adapter interface {
	// Publish sends a batch completed event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *BatchCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the wait before retry attempt i (i >= 1):
// 500ms, 1s, 2s, and so on.
func Backoff(i int) time.Duration {
	if i < 1 {
		return 0
	}
	return time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// permanentError stops Retry early.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Retry calls op up to 1+retries times, waiting Backoff(i) before attempt
// i. It stops on success, on a Permanent error, or when ctx is done.
func Retry(ctx context.Context, retries int, op func(ctx context.Context) error) error {
	attempts := 1 + retries
	var last error
	for i := range attempts {
		if err := Sleep(ctx, Backoff(i)); err != nil {
			return fmt.Errorf("canceled after %d attempts: %w", i, err)
		}
		last = op(ctx)
		if last == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(last, &perm) {
			return perm.err
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, last)
}
