// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

const blobFileExt = ".json"

// fileBlobStore keeps every key in its own file under dir. A write goes to a
// temporary file in the same directory which is then renamed over the
// target, so a crash leaves either the old or the new value on disk.
type fileBlobStore struct {
	dir    string
	logger *logger.Logger

	mu sync.RWMutex
}

// NewFileBlobStore creates dir if needed and returns a [BlobStore] rooted at it.
func NewFileBlobStore(dir string, log *logger.Logger) (BlobStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrInvalidKey)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Err(err).Str("func", "NewFileBlobStore").Msg("error creating storage directory")
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return &fileBlobStore{dir: dir, logger: log}, nil
}

func (f *fileBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+blobFileExt), nil
}

func (f *fileBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (f *fileBlobStore) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err = tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		f.logger.Err(err).Str("func", "*fileBlobStore.Set").Str("key", key).Msg("error replacing blob file")
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *fileBlobStore) Remove(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (f *fileBlobStore) Close() error {
	return nil
}
