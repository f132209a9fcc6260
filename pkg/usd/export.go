package usd

import (
	"fmt"
	"os"
	"path/filepath"
)

// Export writes the encoded layer to path all-or-nothing: the bytes go
// to a temp file in the same directory which is renamed over the target
// only after a successful write. A failed conversion never leaves a
// truncated stage behind.
func (l *Layer) Export(path string) error {
	data, err := l.Encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	return nil
}
