// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage keys for the persisted session fields.
const (
	KeyAuthToken     = "authToken"
	KeyAuthTokenType = "authTokenType"
	KeyUsername      = "username"
	KeyUserID        = "userId"
)

// sessionKeys is the full key set, in write order.
var sessionKeys = []string{KeyAuthToken, KeyAuthTokenType, KeyUsername, KeyUserID}

// Backend is the persistence port the Store writes through. Implementations
// must treat a missing key as (value "", ok false, err nil), not an error.
type Backend interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any existing value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// DirBackend stores each key as a file in a directory. The directory is
// created on first write with owner-only permissions, as are the files:
// the auth token is a bearer credential.
type DirBackend struct {
	dir string
}

// NewDirBackend creates a backend rooted at dir. The directory is not
// created until the first Set.
func NewDirBackend(dir string) (*DirBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("sessionstore: backend directory is required")
	}
	return &DirBackend{dir: dir}, nil
}

func (b *DirBackend) path(key string) string {
	return filepath.Join(b.dir, key)
}

// Get reads the file for key. A missing file or missing directory is an
// absent key, not an error.
func (b *DirBackend) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sessionstore: reading %s: %w", key, err)
	}
	return strings.TrimRight(string(data), "\n"), true, nil
}

// Set writes the file for key with 0600 permissions, creating the
// directory (0700) if needed.
func (b *DirBackend) Set(key, value string) error {
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return fmt.Errorf("sessionstore: creating %s: %w", b.dir, err)
	}
	if err := os.WriteFile(b.path(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("sessionstore: writing %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (b *DirBackend) Delete(key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sessionstore: deleting %s: %w", key, err)
	}
	return nil
}

// MapBackend is an in-memory Backend. It backs tests and one-shot
// invocations that must not touch the filesystem.
type MapBackend struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMapBackend creates an empty in-memory backend.
func NewMapBackend() *MapBackend {
	return &MapBackend{values: make(map[string]string)}
}

func (b *MapBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *MapBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

func (b *MapBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}
