package batch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/runid"
)

const (
	metadataSuffix = "E"
	detailedSuffix = "D"
	txtExtension   = ".txt"
)

// OutputNames returns the metadata and detailed file basenames for one
// run id: S<app><runid:4>E and S<app><runid:4>D, with an optional .txt
// extension.
func OutputNames(applicationID string, runID int, txt bool) (metadata, detailed string) {
	stem := "S" + applicationID + runid.FilenameID(runID)
	ext := ""
	if txt {
		ext = txtExtension
	}
	return stem + metadataSuffix + ext, stem + detailedSuffix + ext
}

// exists reports whether path names an existing filesystem entry.
func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// sameDir reports whether file already lives directly inside dir.
func sameDir(file, dir string) bool {
	a, err1 := filepath.Abs(filepath.Dir(file))
	b, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return filepath.Clean(filepath.Dir(file)) == filepath.Clean(dir)
	}
	return a == b
}

// moveFile relocates src to dst. It renames when possible and falls back to
// copy and remove across filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(in)

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		iox.DiscardClose(out)
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
