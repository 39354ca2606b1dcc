package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/listing"
)

// Entry is the cached result of the last successful fetch.
type Entry struct {
	// Timestamp is when the entry was written.
	Timestamp time.Time `json:"timestamp"`

	// Items are the normalized records of that fetch.
	Items []listing.Record `json:"items"`

	// Total is the server-reported total, or len(Items) when absent.
	Total int `json:"total"`

	// Page is the server page Items were fetched for. Zero means the
	// first page.
	Page int `json:"page,omitempty"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(items []listing.Record, total int) *Entry {
	return &Entry{
		Timestamp: time.Now().UTC(),
		Items:     items,
		Total:     total,
	}
}

// IsEmpty reports whether the entry holds no items. An empty entry is
// treated like a miss by the pipeline.
func (e *Entry) IsEmpty() bool {
	return e == nil || len(e.Items) == 0
}

// Age returns how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	if e == nil || e.Timestamp.IsZero() {
		return 0
	}
	age := now.Sub(e.Timestamp)
	if age < 0 {
		return 0
	}
	return age
}

func encodeEntry(entry *Entry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("cache entry cannot be nil")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}
