// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package mediacache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestCache(t *testing.T, maxBytes int64) *Cache {
	t.Helper()
	cache, err := Open(CacheConfig{Path: t.TempDir(), MaxBytes: maxBytes})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return cache
}

// noiseBytes generates deterministic high-entropy bytes with no image
// magic, for exercising the incompressible path.
func noiseBytes(size int) []byte {
	data := make([]byte, size)
	state := uint64(0x9E3779B97F4A7C15)
	for i := range data {
		state = state*6364136223846793005 + 1442695040888963407
		data[i] = byte(state >> 33)
	}
	if alreadyCompressed(data) {
		data[0] = 0x01
	}
	return data
}

// jpegBytes fabricates a payload with a JPEG magic so it stores raw.
func jpegBytes(size int) []byte {
	data := bytes.Repeat([]byte{0xAB}, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF})
	return data
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t, 0)
	payload := jpegBytes(1024)

	if _, ok := cache.Get("http://example.com/a.jpg"); ok {
		t.Fatal("hit on empty cache")
	}
	if err := cache.Put("http://example.com/a.jpg", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := cache.Get("http://example.com/a.jpg")
	if !ok {
		t.Fatal("miss after Put")
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("cached bytes differ from stored bytes")
	}

	count, stored := cache.Stats()
	if count != 1 || stored != int64(len(payload)) {
		t.Fatalf("Stats = (%d, %d), want (1, %d)", count, stored, len(payload))
	}
}

func TestCacheCompressesCompressibleEntries(t *testing.T) {
	cache := newTestCache(t, 0)
	// SVG-like text, highly compressible, no image magic.
	payload := []byte(strings.Repeat("<rect width=\"10\" height=\"10\"/>\n", 200))

	if err := cache.Put("http://example.com/a.svg", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, stored := cache.Stats()
	if stored >= int64(len(payload)) {
		t.Fatalf("stored %d bytes, want smaller than %d", stored, len(payload))
	}

	got, ok := cache.Get("http://example.com/a.svg")
	if !ok || !bytes.Equal(got, payload) {
		t.Fatal("compressed entry did not round-trip")
	}
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	payload := jpegBytes(512)

	first, err := Open(CacheConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Put("http://example.com/a.jpg", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second, err := Open(CacheConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := second.Get("http://example.com/a.jpg")
	if !ok || !bytes.Equal(got, payload) {
		t.Fatal("entry did not survive reopen")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newTestCache(t, 3000)

	current := time.Unix(1_000_000, 0)
	cache.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}

	for i := range 3 {
		url := fmt.Sprintf("http://example.com/%d.jpg", i)
		if err := cache.Put(url, jpegBytes(1000)); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	// Touch entry 0 so entry 1 becomes the oldest.
	if _, ok := cache.Get("http://example.com/0.jpg"); !ok {
		t.Fatal("miss on entry 0")
	}

	// A fourth entry pushes the cache over budget.
	if err := cache.Put("http://example.com/3.jpg", jpegBytes(1000)); err != nil {
		t.Fatalf("Put 3: %v", err)
	}

	if _, ok := cache.Get("http://example.com/1.jpg"); ok {
		t.Fatal("least recently used entry survived eviction")
	}
	for _, url := range []string{"http://example.com/0.jpg", "http://example.com/2.jpg", "http://example.com/3.jpg"} {
		if _, ok := cache.Get(url); !ok {
			t.Errorf("entry %s evicted unexpectedly", url)
		}
	}
}

func TestCacheRejectsOversizedEntries(t *testing.T) {
	cache := newTestCache(t, 100)
	if err := cache.Put("http://example.com/huge.jpg", jpegBytes(5000)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if count, _ := cache.Stats(); count != 0 {
		t.Fatal("oversized entry was cached")
	}
}

func TestCacheClear(t *testing.T) {
	cache := newTestCache(t, 0)
	if err := cache.Put("http://example.com/a.jpg", jpegBytes(100)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count, stored := cache.Stats(); count != 0 || stored != 0 {
		t.Fatalf("Stats after Clear = (%d, %d)", count, stored)
	}
	if _, ok := cache.Get("http://example.com/a.jpg"); ok {
		t.Fatal("hit after Clear")
	}
}

func TestGetOrFetch(t *testing.T) {
	t.Run("fetches once", func(t *testing.T) {
		cache := newTestCache(t, 0)
		payload := jpegBytes(256)
		fetches := 0
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			fetches++
			return payload, nil
		}

		for range 2 {
			got, err := cache.GetOrFetch(context.Background(), "http://example.com/a.jpg", fetch)
			if err != nil {
				t.Fatalf("GetOrFetch: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatal("wrong bytes")
			}
		}
		if fetches != 1 {
			t.Fatalf("fetched %d times, want 1", fetches)
		}
	})

	t.Run("fetch errors pass through", func(t *testing.T) {
		cache := newTestCache(t, 0)
		fetchErr := errors.New("server down")
		_, err := cache.GetOrFetch(context.Background(), "http://example.com/a.jpg",
			func(ctx context.Context, url string) ([]byte, error) { return nil, fetchErr })
		if !errors.Is(err, fetchErr) {
			t.Fatalf("error = %v, want fetch error", err)
		}
	})
}

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantTag CompressionTag
	}{
		{"jpeg stays raw", jpegBytes(500), CompressionNone},
		{"incompressible bytes stay raw", noiseBytes(512), CompressionNone},
		{"text compresses", []byte(strings.Repeat("<svg xmlns=\"http://www.w3.org/2000/svg\">", 100)), CompressionZstd},
		{"empty stays raw", nil, CompressionNone},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stored, tag := compress(test.payload)
			if tag != test.wantTag {
				t.Fatalf("tag = %v, want %v", tag, test.wantTag)
			}
			restored, err := decompress(stored, tag, len(test.payload))
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(restored, test.payload) {
				t.Fatal("round trip mismatch")
			}
		})
	}

	t.Run("size mismatch is rejected", func(t *testing.T) {
		if _, err := decompress([]byte("abc"), CompressionNone, 99); err == nil {
			t.Fatal("mismatched size accepted")
		}
	})
}
