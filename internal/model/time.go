package model

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the layout used by date inputs in session forms.
const DateLayout = "2006-01-02"

const wireLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	wireLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	DateLayout,
}

// Time is a timestamp as exchanged with the booking API. The backend sends
// local date-times without an offset, so decoding accepts several layouts.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// ParseTime parses any of the accepted wire layouts.
func ParseTime(s string) (Time, error) {
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized time %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(wireLayout) + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("time must be a JSON string, got %s", b)
	}
	parsed, err := ParseTime(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date formats the day part for form inputs.
func (t Time) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
