// Package delivery copies finished metadata and detailed file pairs to a
// Lode store and records one manifest entry per pair.
//
// Objects land at <prefix>/<application_id>/<run_id>/<filename>. Manifest
// records are written to a Hive-partitioned Lode dataset keyed by
// application id and delivery day, so history can be rebuilt from the
// store alone.
package delivery

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/log"
	"github.com/justapithecus/billingflatfile/metrics"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

// DefaultDataset is the manifest dataset id.
const DefaultDataset = "billingflatfile"

// Config configures a Deliverer.
type Config struct {
	// Dataset is the manifest dataset id. Empty uses DefaultDataset.
	Dataset string
	// Prefix is prepended to every object key (optional).
	Prefix string
	// Backend names the store for logs and metrics.
	Backend string
	// Logger receives progress. If nil, nothing is logged.
	Logger *log.Logger
	// Collector records put counters. May be nil.
	Collector *metrics.Collector
}

// Receipt lists what a delivery wrote.
type Receipt struct {
	// Keys holds the object keys in write order.
	Keys []string `json:"keys" yaml:"keys"`
	// ManifestRecords is the number of manifest entries written.
	ManifestRecords int `json:"manifest_records" yaml:"manifest_records"`
}

// Deliverer writes batch outputs to a Lode store.
type Deliverer struct {
	config   Config
	factory  lode.StoreFactory
	manifest lode.Dataset
	logger   *log.Logger
	now      func() time.Time

	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

// New creates a Deliverer over factory.
// Use lode.NewMemoryFactory() for testing.
func New(factory lode.StoreFactory, cfg Config) (*Deliverer, error) {
	if factory == nil {
		return nil, fmt.Errorf("delivery store factory is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	ds, err := NewManifestDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, wrapStorageError("init", cfg.Dataset, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Deliverer{
		config:   cfg,
		factory:  factory,
		manifest: ds,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// ObjectKey returns the key a delivered file is stored under.
func ObjectKey(prefix, applicationID string, runID int, filename string) string {
	return path.Join(prefix, applicationID, runid.FilenameID(runID), filename)
}

// Deliver uploads every file pair of res and appends its manifest records.
// Any failure aborts the delivery with KindDeliveryFailed; objects already
// written are left in place and are overwritten by a retry.
func (d *Deliverer) Deliver(ctx context.Context, res *batch.Result) (*Receipt, error) {
	receipt := &Receipt{}
	if res == nil || len(res.Files) == 0 {
		return receipt, nil
	}

	store, err := d.getOrCreateStore()
	if err != nil {
		return receipt, types.Wrap(types.KindDeliveryFailed,
			wrapStorageError("init", d.config.Backend, err), "cannot open delivery store")
	}

	app := res.Run.ApplicationID
	deliveredAt := d.now().UTC()
	records := make([]any, 0, len(res.Files))

	for _, f := range res.Files {
		metaKey := ObjectKey(d.config.Prefix, app, f.RunID, filepath.Base(f.MetadataPath))
		detKey := ObjectKey(d.config.Prefix, app, f.RunID, filepath.Base(f.DetailedPath))

		for _, obj := range []struct{ src, key string }{
			{f.MetadataPath, metaKey},
			{f.DetailedPath, detKey},
		} {
			if err := d.put(ctx, store, obj.src, obj.key); err != nil {
				return receipt, err
			}
			receipt.Keys = append(receipt.Keys, obj.key)
		}

		records = append(records, toManifestRecordMap(res, f, metaKey, detKey, deliveredAt))
	}

	if _, err := d.manifest.Write(ctx, records, lode.Metadata{}); err != nil {
		return receipt, types.Wrap(types.KindDeliveryFailed,
			wrapStorageError("manifest", d.config.Dataset, err), "cannot write delivery manifest")
	}
	receipt.ManifestRecords = len(records)

	d.logger.Info("batch delivered", map[string]any{
		"backend": d.config.Backend,
		"objects": len(receipt.Keys),
	})
	return receipt, nil
}

func (d *Deliverer) put(ctx context.Context, store lode.Store, src, key string) error {
	f, err := os.Open(src)
	if err != nil {
		d.config.Collector.IncDeliveryPutFailure()
		return types.Wrap(types.KindDeliveryFailed, err, "cannot open %q for delivery", src)
	}
	defer func() { _ = f.Close() }()

	if err := store.Put(ctx, key, f); err != nil {
		d.config.Collector.IncDeliveryPutFailure()
		return types.Wrap(types.KindDeliveryFailed, wrapStorageError("put", key, err), "cannot deliver %q", src)
	}
	d.config.Collector.IncDeliveryPutSuccess()
	d.logger.Debug("object delivered", map[string]any{"key": key})
	return nil
}

// getOrCreateStore lazily initializes the Store from the factory.
func (d *Deliverer) getOrCreateStore() (lode.Store, error) {
	d.storeOnce.Do(func() {
		d.store, d.storeErr = d.factory()
	})
	return d.store, d.storeErr
}
