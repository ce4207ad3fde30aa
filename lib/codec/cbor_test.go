// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type indexRecord struct {
	Address string `cbor:"address"`
	Size    int64  `cbor:"size"`
	Tag     string `cbor:"tag"`
}

func TestRoundTrip(t *testing.T) {
	original := indexRecord{Address: "b3:abcdef", Size: 42, Tag: "none"}

	encoded, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded indexRecord
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	// Same logical map must encode identically regardless of insertion order.
	first, err := Marshal(map[string]int{"a": 1, "b": 2, "c": 3})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(map[string]int{"c": 3, "a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding is not deterministic across map insertion orders")
	}
}

func TestDefaultMapType(t *testing.T) {
	encoded, err := Marshal(map[string]any{"nested": map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded any
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded top level is %T, want map[string]any", decoded)
	}
	if _, ok := top["nested"].(map[string]any); !ok {
		t.Errorf("nested value is %T, want map[string]any", top["nested"])
	}
}

func TestStreamEncoder(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range []indexRecord{
		{Address: "b3:01", Size: 1, Tag: "none"},
		{Address: "b3:02", Size: 2, Tag: "lz4"},
	} {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	var first, second indexRecord
	if err := decoder.Decode(&first); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := decoder.Decode(&second); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if first.Address != "b3:01" || second.Address != "b3:02" {
		t.Errorf("stream order mismatch: %q, %q", first.Address, second.Address)
	}
}
