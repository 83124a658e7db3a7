package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrChangedOnDisk is returned when a file no longer holds the content it
// was transformed from by the time the result is ready to replace it.
var ErrChangedOnDisk = errors.New("file changed while being rewritten")

// writeFileAtomic replaces path with data through a temp file in the same
// directory and a rename, keeping the original permission bits. A reader
// sees either the old or the new content, never a half-written file, and no
// temp file is left behind on failure.
//
// The file is re-read just before the rename; if it no longer equals before,
// nothing is replaced and ErrChangedOnDisk is returned.
func writeFileAtomic(path string, before, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".basepatch-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not write temp file for %q: %w", path, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not set mode on temp file for %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close temp file for %q: %w", path, err)
	}
	current, err := os.ReadFile(path)
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("re-reading %q: %w", path, err)
	}
	if !bytes.Equal(current, before) {
		os.Remove(tmpName)
		return fmt.Errorf("%q: %w", path, ErrChangedOnDisk)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
