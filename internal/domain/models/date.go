package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// CalendarDate is a record date submitted by a client, either as a plain
// "2006-01-02" day or as an RFC 3339 timestamp.
type CalendarDate struct {
	time.Time
}

// UnmarshalJSON accepts a plain day, an RFC 3339 timestamp or null.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		return nil
	}

	if t, err := time.Parse(dateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("date %q is neither YYYY-MM-DD nor RFC 3339", raw)
	}
	d.Time = t
	return nil
}

// Day returns the calendar day of the submitted value.
func (d CalendarDate) Day() time.Time {
	return CalendarDay(d.Time)
}

// CalendarDay reduces t to the day it falls on in its own offset, expressed as
// midnight UTC. Stored dates are always in this form so they survive a trip through
// the database unchanged.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
