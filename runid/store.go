package runid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/types"
)

// ReadStore reads the counter file at path. found is false when the file
// does not exist.
func ReadStore(path string) (value int, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("cannot read run id file %q: %w", path, err)
	}

	s := strings.TrimSpace(string(data))
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, true, types.Errorf(types.KindInvalidRunIDStore,
			"the content of the run id file %q must be a non-negative number, got %q", path, s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, types.Wrap(types.KindInvalidRunIDStore, err,
			"the content of the run id file %q is not a valid run id", path)
	}
	return v, true, nil
}

// WriteStore replaces the counter file with next, as a bare decimal string.
// The parent directory is created if needed and the file is replaced
// atomically.
func WriteStore(path string, next int) error {
	if next < 0 {
		return fmt.Errorf("run id %d must not be negative", next)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create run id file directory: %w", err)
	}

	if err := iox.WriteFileAtomic(path, []byte(strconv.Itoa(next)), 0o644); err != nil {
		return fmt.Errorf("cannot write run id file %q: %w", path, err)
	}
	return nil
}
