package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/listing"
)

func TestEntry_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry
		want  bool
	}{
		{"nil entry", nil, true},
		{"no items", &Entry{Total: 5}, true},
		{"with items", NewEntry(listing.Sample(), 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Age(t *testing.T) {
	now := time.Now()

	entry := &Entry{Timestamp: now.Add(-5 * time.Minute)}
	if got := entry.Age(now); got != 5*time.Minute {
		t.Errorf("Age() = %v, want 5m", got)
	}

	future := &Entry{Timestamp: now.Add(time.Hour)}
	if got := future.Age(now); got != 0 {
		t.Errorf("Age() of future entry = %v, want 0", got)
	}

	if got := (&Entry{}).Age(now); got != 0 {
		t.Errorf("Age() of unstamped entry = %v, want 0", got)
	}
}

func TestEncodeDecodeEntry(t *testing.T) {
	entry := NewEntry(listing.Sample(), 42)

	data, err := encodeEntry(entry)
	if err != nil {
		t.Fatalf("encodeEntry failed: %v", err)
	}

	decoded, err := decodeEntry(data)
	if err != nil {
		t.Fatalf("decodeEntry failed: %v", err)
	}
	if decoded.Total != 42 {
		t.Errorf("Total = %d, want 42", decoded.Total)
	}
	if len(decoded.Items) != len(entry.Items) {
		t.Fatalf("Items = %d, want %d", len(decoded.Items), len(entry.Items))
	}
	for i := range entry.Items {
		if decoded.Items[i].ID != entry.Items[i].ID || decoded.Items[i].Title != entry.Items[i].Title {
			t.Errorf("Item %d = %+v, want %+v", i, decoded.Items[i], entry.Items[i])
		}
	}
	if !decoded.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, entry.Timestamp)
	}
}

func TestEncodeEntry_Nil(t *testing.T) {
	if _, err := encodeEntry(nil); err == nil {
		t.Error("Expected error for nil entry")
	}
}

func TestDecodeEntry_Corrupt(t *testing.T) {
	_, err := decodeEntry([]byte(`{"items": "not a list"`))
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}
