package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// DefaultTempName is the directory created under the OS temp dir for
// synthesized and promised files.
const DefaultTempName = "Dropshelf"

// FS is the filesystem surface used inside the temp area.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// OSFS is FS backed by package os.
type OSFS struct{}

func (OSFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (OSFS) RemoveAll(path string) error { return os.RemoveAll(path) }

// TempDir is the process-scoped temp area. It is created on demand and may
// be used from several goroutines.
type TempDir struct {
	root string
	fs   FS
}

// NewTempDir manages root. A nil fsys selects OSFS.
func NewTempDir(root string, fsys FS) *TempDir {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &TempDir{root: root, fs: fsys}
}

// DefaultTempRoot returns os.TempDir()/name, or DefaultTempName when name
// is empty.
func DefaultTempRoot(name string) string {
	if name == "" {
		name = DefaultTempName
	}
	return filepath.Join(os.TempDir(), name)
}

// Path returns the root directory without creating it.
func (t *TempDir) Path() string { return t.root }

// Ensure creates the directory if needed and returns its path.
func (t *TempDir) Ensure() (string, error) {
	if err := t.fs.MkdirAll(t.root, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return t.root, nil
}

// Write stores data under name inside the temp area.
func (t *TempDir) Write(name string, data []byte) (string, error) {
	dir, err := t.Ensure()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := t.fs.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes the temp area and everything in it.
func (t *TempDir) Remove() error {
	if err := t.fs.RemoveAll(t.root); err != nil {
		return fmt.Errorf("remove temp dir: %w", err)
	}
	return nil
}

// Usage counts the files in the temp area and their total size. A missing
// directory is empty.
func (t *TempDir) Usage() (files int, size int64, err error) {
	if _, err := os.Stat(t.root); os.IsNotExist(err) {
		return 0, 0, nil
	}
	var n, total atomic.Int64
	conf := &fastwalk.Config{Follow: false}
	err = fastwalk.Walk(conf, t.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		info, err := fastwalk.StatDirEntry(path, d)
		if err != nil {
			return nil
		}
		n.Add(1)
		total.Add(info.Size())
		return nil
	})
	return int(n.Load()), total.Load(), err
}
