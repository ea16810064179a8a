package fs

import (
	"io"
	"os"

	"github.com/gamedevlabs/pixe/internal/logging"
)

// Move moves a file from src to dst.
// It tries os.Rename() first and falls back on "copy and delete".
//
// If src cannot be deleted after a successful copy,
// NO error is returned and src remains as it was.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Rename may have failed when moving across file systems,
	// so try again w/ copy & delete.
	logging.Debug("Rename failed for %v -> %v, fall back on copy and delete", src, dst)
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, r)
	if err != nil {
		return err
	}

	// A bit untidy, but we carry on even if we fail to clean up behind us.
	if rmErr := os.Remove(src); rmErr != nil {
		logging.Error("Failed to remove file %v", src)
	}

	return nil
}

// WriteAtomic writes data to path by writing to a temp file in the same
// directory first and moving it in place.
func WriteAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	err := os.WriteFile(tmp, data, 0644)
	if err != nil {
		return err
	}
	return Move(tmp, path)
}
