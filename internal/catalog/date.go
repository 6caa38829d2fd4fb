package catalog

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date (no time-of-day, no timezone), serialized as an
// ISO 8601 date string ("2024-03-05").
type Date struct {
	t time.Time
}

// NewDate builds a Date from year/month/day components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("catalog: invalid release date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON renders the date as a quoted ISO 8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted ISO 8601 string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
