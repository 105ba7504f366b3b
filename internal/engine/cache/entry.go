package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a single cached value with its expiry.
type Entry struct {
	// Key is the SHA256 hex digest of the normalized input.
	Key string `json:"key"`

	// Data is the cached value.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// TTLSeconds is kept for reference when inspecting cache files by hand.
	TTLSeconds int `json:"ttl_seconds"`
}

// NewEntry creates an entry that expires ttlSeconds from now.
func NewEntry(key string, data json.RawMessage, ttlSeconds int) *Entry {
	now := time.Now()
	return &Entry{
		Key:        key,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpired reports whether the entry's expiry has passed.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Age returns the time since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the remaining lifetime, or 0 once expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Decode unmarshals the cached data into v.
func (e *Entry) Decode(v any) error {
	if len(e.Data) == 0 {
		return errors.New("cache entry has no data")
	}
	return json.Unmarshal(e.Data, v)
}

// MarshalJSON writes timestamps as RFC3339 with nanoseconds.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(&struct {
		*alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias:     (*alias)(e),
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON parses the RFC3339 timestamps written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type alias Entry
	aux := &struct {
		*alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias: (*alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, aux.CreatedAt); err != nil {
		return err
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339Nano, aux.ExpiresAt); err != nil {
		return err
	}
	return nil
}
