package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemConfig targets a local directory.
type FilesystemConfig struct {
	// Directory is the directory files are written into. Created on
	// first store if absent.
	Directory string `yaml:"directory" json:"directory"`
}

type filesystemStore struct {
	dir string
}

func newFilesystemStore(cfg FilesystemConfig) *filesystemStore {
	return &filesystemStore{dir: cfg.Directory}
}

func (s *filesystemStore) Kind() Kind { return KindFilesystem }

func (s *filesystemStore) Configured() bool { return s.dir != "" }

// Store writes content to {directory}/{filename}, creating the directory
// tree if absent. MkdirAll treats an already-existing directory as
// success, so concurrent stores into the same new directory cannot race
// each other into failure.
func (s *filesystemStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem: create directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("filesystem: write %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Result{
		Backend:  KindFilesystem,
		Location: abs,
		Metadata: map[string]string{"directory": s.dir},
	}, nil
}
