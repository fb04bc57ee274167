// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"sync"
)

// memoryBlobStore keeps blobs in process memory. It backs tests and
// throwaway sessions; nothing survives the process.
type memoryBlobStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	closed bool
}

// NewMemoryBlobStore returns an empty in-memory [BlobStore].
func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *memoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageClosed
	}
	v, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return bytes.Clone(v), nil
}

func (m *memoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	m.blobs[key] = bytes.Clone(value)
	return nil
}

func (m *memoryBlobStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	delete(m.blobs, key)
	return nil
}

func (m *memoryBlobStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
