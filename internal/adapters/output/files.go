package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath places a bare file name inside dir. Names that carry a
// directory component are used as given.
func ResolvePath(name, dir string) string {
	if dir == "" || filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(dir, name)
}

// Create opens path for writing, creating its parent directory. An
// existing file is only truncated when force is set.
func Create(path string, force bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("output file %q exists (use --force to overwrite): %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return f, nil
}
