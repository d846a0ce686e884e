package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a per-request scratch directory.
type Workspace struct {
	Dir string
}

// New creates a fresh directory under base (os.TempDir when empty).
func New(base string) (*Workspace, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(base, "analysis-*")
	if err != nil {
		return nil, err
	}
	return &Workspace{Dir: dir}, nil
}

// Save copies r into the workspace under the base name of filename and returns
// the path. A repeated name is stored in a numbered subdirectory.
func (w *Workspace) Save(filename string, r io.Reader) (string, error) {
	name := SafeName(filename)
	path := filepath.Join(w.Dir, name)
	for i := 2; exists(path); i++ {
		sub := filepath.Join(w.Dir, fmt.Sprintf("%d", i))
		if err := os.MkdirAll(sub, 0o700); err != nil {
			return "", err
		}
		path = filepath.Join(sub, name)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// WriteFile writes data to name inside the workspace.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(w.Dir, SafeName(name))
	return path, os.WriteFile(path, data, 0o600)
}

// Cleanup removes the directory and everything in it.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}

// SafeName reduces an uploaded filename to its last path element.
func SafeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "upload"
	}
	return name
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
