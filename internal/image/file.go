package image

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"erre/internal/interp"
)

// SaveFile writes the image to a temporary file next to path and renames
// it into place, so a failed save leaves the previous image intact.
func SaveFile(path string, in *interp.Interp) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	f, err := os.CreateTemp(dir, ".erre-image-*")
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	w := bufio.NewWriter(f)
	if err := Save(w, in); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	return os.Rename(f.Name(), path)
}

// LoadFile restores the image at path. A missing file is not an error;
// loaded reports whether anything was read.
func LoadFile(path string, in *interp.Interp) (loaded bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("image: %w", err)
	}
	defer f.Close()
	if err := Load(bufio.NewReader(f), in); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}
