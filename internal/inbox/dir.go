package inbox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/daybook/internal/checksum"
)

// File describes one calendar file in the inbox.
type File struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Dir is a read-only view of the inbox directory.
type Dir struct {
	root string // absolute path to the inbox
}

// NewDir opens the inbox rooted at root, creating the directory if needed.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("inbox: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("inbox: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inbox: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute inbox path.
func (d *Dir) Root() string {
	return d.root
}

// IsCalendarFile reports whether name has an .ics extension.
func IsCalendarFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".ics")
}

// safePath resolves a relative path against the root and rejects any
// result that escapes it.
func (d *Dir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("inbox: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("inbox: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("inbox: path escapes root: %s", rel)
	}
	return abs, nil
}

// rel converts an absolute path reported by the watcher.
func (d *Dir) rel(abs string) (string, error) {
	return filepath.Rel(d.root, abs)
}

// List walks the inbox and returns every calendar file.
func (d *Dir) List() ([]File, error) {
	var out []File
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if e.IsDir() || !IsCalendarFile(e.Name()) {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(d.root, p)
		out = append(out, File{
			Path:      rel,
			Checksum:  checksum.Calendar(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inbox: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of an inbox file.
func (d *Dir) Read(path string) ([]byte, error) {
	abs, err := d.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("inbox: read %s: %w", path, err)
	}
	return data, nil
}
