package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexTime decodes the timestamp shapes found in tracking payloads and
// preference documents imported from the mobile client: RFC3339 strings,
// epoch milliseconds, and {seconds,nanos} objects. Anything unrecognized
// decodes to the current time instead of failing, so a malformed event
// can never abort profile aggregation.
type FlexTime struct {
	time.Time
}

type secondsNanos struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// UnmarshalJSON implements json.Unmarshaler
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Now()
		return nil
	}

	// RFC3339 / ISO string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			t.Time = parsed
			return nil
		}
		if parsed, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
			t.Time = parsed
			return nil
		}
		t.Time = time.Now()
		return nil
	}

	// Epoch milliseconds
	if millis, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		t.Time = time.UnixMilli(millis)
		return nil
	}

	// Store-native {seconds, nanos} object
	var sn secondsNanos
	if err := json.Unmarshal(data, &sn); err == nil && sn.Seconds > 0 {
		t.Time = time.Unix(sn.Seconds, sn.Nanos)
		return nil
	}

	t.Time = time.Now()
	return nil
}

// MarshalJSON implements json.Marshaler
func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
