package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
)

// FileBackend stores the snapshot as a single JSON file.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (f *FileBackend) Location() string { return f.Path }

func (f *FileBackend) Read(_ context.Context) (*kg.Snapshot, error) {
	file, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, kg.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return kg.DecodeSnapshot(file)
}

// Write replaces the file, creating missing parent directories.
func (f *FileBackend) Write(_ context.Context, snap *kg.Snapshot) error {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create graph dir: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := kg.EncodeSnapshot(&buf, snap); err != nil {
		return err
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace graph file: %w", err)
	}
	return nil
}
