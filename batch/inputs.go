package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/justapithecus/billingflatfile/types"
)

// ResolveInputs returns the input files named by path: path itself when it
// is a file, or every regular file directly inside it when it is a
// directory. Directory entries are sorted ascending by name; hidden files
// are included and subdirectories ignored.
func ResolveInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.Errorf(types.KindInputNotFound, "the input path %q does not exist", path)
		}
		return nil, types.Wrap(types.KindInputNotFound, err, "cannot access input path %q", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, types.Wrap(types.KindInputNotFound, err, "cannot list input directory %q", path)
	}

	var files []string
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		// Stat follows symlinks so a link to a regular file counts.
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	if len(files) == 0 {
		return nil, types.Errorf(types.KindNoInputFiles, "the input directory %q contains no files", path)
	}

	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}
