// Package store persists validation runs: the JSON issue log written next to
// the data, and an optional Postgres run store for the web UI.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

// PrepareOutput ensures dir exists and that name is free inside it.
// It returns the output path. A dir that exists as a file, or an existing
// output, is an error.
func PrepareOutput(dir, name string) (string, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("output directory %s exists and is not a directory", dir)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("stat output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := checkAbsent(path); err != nil {
		return "", err
	}
	return path, nil
}

func checkAbsent(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return fmt.Errorf("%w: %s", core.ErrOutputExists, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat output: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, refusing to replace a file that appeared since PrepareOutput.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := checkAbsent(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
