// Package runid resolves, allocates and persists the run ids of a batch.
//
// A batch takes its starting id from an explicit value or from a counter
// file. One id is assigned per input file, in input order. The counter file
// is read once before the batch and rewritten once after it succeeds, so a
// failed batch can be retried with the same ids.
package runid

import (
	"fmt"

	"github.com/justapithecus/billingflatfile/types"
)

const (
	// MaxExplicit is the largest run id accepted on the command line.
	// It matches the 5-digit run id slot of the metadata record.
	MaxExplicit = 99999
	// MaxAllocated bounds the counter. Output filenames only have room for
	// 4 digits, so the next id a batch hands over must still fit.
	MaxAllocated = 9999
)

// Assignment is the ordered list of ids allocated to one batch.
type Assignment struct {
	// Base is the first id of the batch.
	Base int
	// IDs holds one id per input file, in input order.
	IDs []int
}

// Next returns the first id not used by this assignment.
func (a Assignment) Next() int {
	return a.Base + len(a.IDs)
}

// Sequencer resolves the run ids for a batch.
type Sequencer struct {
	explicit  *int
	storePath string
}

// NewSequencer creates a sequencer from an optional explicit starting id
// and an optional counter file path (empty for none).
func NewSequencer(explicit *int, storePath string) *Sequencer {
	return &Sequencer{explicit: explicit, storePath: storePath}
}

// Allocate resolves the base id and assigns n consecutive ids.
// Nothing is written; see Commit.
func (s *Sequencer) Allocate(n int) (Assignment, error) {
	if s.explicit == nil && s.storePath == "" {
		return Assignment{}, types.Errorf(types.KindMissingRunIDSource,
			"one of `--run-id` or `--run-id-file` is required")
	}
	if n < 0 {
		return Assignment{}, fmt.Errorf("cannot allocate %d run ids", n)
	}

	base, err := s.base()
	if err != nil {
		return Assignment{}, err
	}

	// The counter persisted after the batch is base+n; it must stay a
	// 4-digit id or every later batch would start out of range.
	if next := base + n; n > 0 && next > MaxAllocated {
		return Assignment{}, types.Errorf(types.KindRunIDOverflow,
			"%d input files starting from run id %d would advance the run id to %d, above %d",
			n, base, next, MaxAllocated)
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = base + i
	}
	return Assignment{Base: base, IDs: ids}, nil
}

// Commit persists the next unused id to the counter file, if one is
// configured. Call it once, after every file of the batch is written.
func (s *Sequencer) Commit(a Assignment) error {
	if s.storePath == "" || len(a.IDs) == 0 {
		return nil
	}
	return WriteStore(s.storePath, a.Next())
}

func (s *Sequencer) base() (int, error) {
	if s.explicit != nil {
		if *s.explicit < 0 || *s.explicit > MaxExplicit {
			return 0, types.Errorf(types.KindRunIDOutOfRange,
				"the `--run-id` argument must be comprised between 0 and %d", MaxExplicit)
		}
		return *s.explicit, nil
	}

	v, found, err := ReadStore(s.storePath)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return v, nil
}

// FilenameID formats id for output filenames (4 digits).
func FilenameID(id int) string {
	return fmt.Sprintf("%04d", id)
}

// MetadataID formats id for the metadata record run id slot (5 digits).
func MetadataID(id int) string {
	return fmt.Sprintf("%05d", id)
}
