package lyrics

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the rendered document to path. The file is written to a
// temporary name in the same directory and renamed into place, so readers
// never see a partial document.
func Save(path string, doc Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(doc.Render()); err != nil {
		tmp.Close()
		return fmt.Errorf("write lyrics: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync lyrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close lyrics: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod lyrics: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename lyrics into place: %w", err)
	}
	return nil
}
