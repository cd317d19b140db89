// Package metrics provides per-batch counters.
//
// The Collector accumulates counters during a single batch. It is a leaf
// package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all batch metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Batch lifecycle
	BatchesStarted   int64
	BatchesCompleted int64
	BatchesFailed    int64

	// Conversion
	FilesConverted int64
	FilesFailed    int64
	RowsConverted  int64
	RunIDsAssigned int64

	// Delivery
	DeliveryPutSuccess int64
	DeliveryPutFailure int64

	// Notification
	NotifySuccess int64
	NotifyFailure int64

	// Dimensions (informational, set at construction)
	ApplicationID  string
	StorageBackend string
	BatchID        string
}

// Collector accumulates metrics during a single batch.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	batchesStarted   int64
	batchesCompleted int64
	batchesFailed    int64

	filesConverted int64
	filesFailed    int64
	rowsConverted  int64
	runIDsAssigned int64

	deliveryPutSuccess int64
	deliveryPutFailure int64

	notifySuccess int64
	notifyFailure int64

	applicationID  string
	storageBackend string
	batchID        string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend is "none" when delivery is disabled.
func NewCollector(applicationID, storageBackend, batchID string) *Collector {
	return &Collector{
		applicationID:  applicationID,
		storageBackend: storageBackend,
		batchID:        batchID,
	}
}

func (c *Collector) add(counter *int64, n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	*counter += n
	c.mu.Unlock()
}

// --- Batch lifecycle ---

// IncBatchStarted records a batch start.
func (c *Collector) IncBatchStarted() {
	if c == nil {
		return
	}
	c.add(&c.batchesStarted, 1)
}

// IncBatchCompleted records a successful batch.
func (c *Collector) IncBatchCompleted() {
	if c == nil {
		return
	}
	c.add(&c.batchesCompleted, 1)
}

// IncBatchFailed records a failed batch.
func (c *Collector) IncBatchFailed() {
	if c == nil {
		return
	}
	c.add(&c.batchesFailed, 1)
}

// --- Conversion ---

// IncFileConverted records one converted input file and its row count.
func (c *Collector) IncFileConverted(rows int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesConverted++
	c.rowsConverted += int64(rows)
	c.mu.Unlock()
}

// IncFileFailed records an input file whose conversion failed.
func (c *Collector) IncFileFailed() {
	if c == nil {
		return
	}
	c.add(&c.filesFailed, 1)
}

// AddRunIDsAssigned records run ids handed out by the sequencer.
func (c *Collector) AddRunIDsAssigned(n int) {
	if c == nil {
		return
	}
	c.add(&c.runIDsAssigned, int64(n))
}

// --- Delivery ---
// Delivery counters are per object put, so a file pair counts as 2.

// IncDeliveryPutSuccess records a successful object put.
func (c *Collector) IncDeliveryPutSuccess() {
	if c == nil {
		return
	}
	c.add(&c.deliveryPutSuccess, 1)
}

// IncDeliveryPutFailure records a failed object put.
func (c *Collector) IncDeliveryPutFailure() {
	if c == nil {
		return
	}
	c.add(&c.deliveryPutFailure, 1)
}

// --- Notification ---

// IncNotifySuccess records a delivered batch completed event.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.add(&c.notifySuccess, 1)
}

// IncNotifyFailure records a batch completed event that could not be delivered.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.add(&c.notifyFailure, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		BatchesStarted:   c.batchesStarted,
		BatchesCompleted: c.batchesCompleted,
		BatchesFailed:    c.batchesFailed,

		FilesConverted: c.filesConverted,
		FilesFailed:    c.filesFailed,
		RowsConverted:  c.rowsConverted,
		RunIDsAssigned: c.runIDsAssigned,

		DeliveryPutSuccess: c.deliveryPutSuccess,
		DeliveryPutFailure: c.deliveryPutFailure,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		ApplicationID:  c.applicationID,
		StorageBackend: c.storageBackend,
		BatchID:        c.batchID,
	}
}
