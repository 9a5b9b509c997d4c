package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayout is ISO-8601 without an offset, as Python's isoformat() writes it.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp decodes an event date. Values without an offset are read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 and offset-less ISO-8601 strings. null
// leaves the zero time, which event validation reports as missing.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v.UTC()
		return nil
	}
	v, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("date %q is not an ISO-8601 timestamp", s)
	}
	t.Time = v
	return nil
}
