package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/runid"
)

// RecordKindDelivery discriminates manifest records.
const RecordKindDelivery = "delivery"

// ErrNoManifest is returned when the dataset holds no delivery records.
var ErrNoManifest = errors.New("no delivery records found")

// ManifestRecord describes one delivered file pair.
type ManifestRecord struct {
	RecordKind     string `json:"record_kind" yaml:"record_kind"`
	BatchID        string `json:"batch_id" yaml:"batch_id"`
	ApplicationID  string `json:"application_id" yaml:"application_id"`
	RunID          string `json:"run_id" yaml:"run_id"`
	Input          string `json:"input" yaml:"input"`
	MetadataKey    string `json:"metadata_key" yaml:"metadata_key"`
	DetailedKey    string `json:"detailed_key" yaml:"detailed_key"`
	RowCount       int    `json:"row_count" yaml:"row_count"`
	OldestDate     string `json:"oldest_date" yaml:"oldest_date"`
	MostRecentDate string `json:"most_recent_date" yaml:"most_recent_date"`
	DeliveredAt    string `json:"delivered_at" yaml:"delivered_at"`

	// Partition key
	Day string `json:"day" yaml:"day"`
}

// NewManifestDataset opens the manifest dataset. Reads and writes share the
// same layout and codec.
func NewManifestDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout("application_id", "day"),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// toManifestRecordMap converts one file result for Lode storage.
// Lode HiveLayout requires records as map[string]any.
func toManifestRecordMap(res *batch.Result, f batch.FileResult, metaKey, detKey string, at time.Time) map[string]any {
	return map[string]any{
		"record_kind":      RecordKindDelivery,
		"batch_id":         res.BatchID,
		"application_id":   res.Run.ApplicationID,
		"run_id":           runid.FilenameID(f.RunID),
		"input":            f.Input,
		"metadata_key":     metaKey,
		"detailed_key":     detKey,
		"row_count":        f.Conversion.RowCount,
		"oldest_date":      f.Conversion.OldestDate,
		"most_recent_date": f.Conversion.MostRecentDate,
		"delivered_at":     at.Format(time.RFC3339Nano),
		"day":              at.Format(time.DateOnly),
	}
}

// ReadManifest returns every delivery record in the dataset, oldest
// snapshot first. applicationID filters records when non-empty.
func ReadManifest(ctx context.Context, ds lode.Dataset, applicationID string) ([]ManifestRecord, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, wrapStorageError("manifest", string(ds.ID()), err)
	}

	var out []ManifestRecord
	for _, snap := range snapshots {
		if applicationID != "" && !snapshotMatches(snap, "application_id", applicationID) {
			continue
		}
		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, wrapStorageError("manifest", fmt.Sprint(snap.ID), err)
		}
		for _, item := range data {
			m, ok := item.(map[string]any)
			if !ok || m["record_kind"] != RecordKindDelivery {
				continue
			}
			rec := fromRecordMap(m)
			if applicationID != "" && rec.ApplicationID != applicationID {
				continue
			}
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoManifest
	}
	return out, nil
}

// snapshotMatches checks whether any file of the snapshot sits under the
// exact key=value partition segment.
func snapshotMatches(snap *lode.DatasetSnapshot, key, value string) bool {
	segment := key + "=" + value
	for _, f := range snap.Manifest.Files {
		for _, part := range strings.Split(f.Path, "/") {
			if part == segment {
				return true
			}
		}
	}
	return false
}

func fromRecordMap(m map[string]any) ManifestRecord {
	return ManifestRecord{
		RecordKind:     toString(m["record_kind"]),
		BatchID:        toString(m["batch_id"]),
		ApplicationID:  toString(m["application_id"]),
		RunID:          toString(m["run_id"]),
		Input:          toString(m["input"]),
		MetadataKey:    toString(m["metadata_key"]),
		DetailedKey:    toString(m["detailed_key"]),
		RowCount:       toInt(m["row_count"]),
		OldestDate:     toString(m["oldest_date"]),
		MostRecentDate: toString(m["most_recent_date"]),
		DeliveredAt:    toString(m["delivered_at"]),
		Day:            toString(m["day"]),
	}
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toInt accepts the numeric types a codec may decode to.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
