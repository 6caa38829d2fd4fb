// Package catalog holds the in-memory music catalog: artists, albums,
// tracks, and the bidirectional album/artist index.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Identifier is either a numeric (u64-ish) id or an owned string id. It is
// used everywhere an entity crosses the serialization boundary so that both
// numeric backends (LMS) and string-keyed ones (MPRIS URIs, UUIDs) can be
// represented without loss.
//
// Identifier is a value type (not an interface) so it stays comparable and
// usable as a map key.
type Identifier struct {
	numeric bool
	num     uint64
	str     string
}

// NewNumericID builds a numeric Identifier.
func NewNumericID(v uint64) Identifier {
	return Identifier{numeric: true, num: v}
}

// NewStringID builds a string Identifier.
func NewStringID(v string) Identifier {
	return Identifier{numeric: false, str: v}
}

// IsNumeric reports whether this Identifier holds a numeric value.
func (id Identifier) IsNumeric() bool { return id.numeric }

// Numeric returns the numeric value and true if this Identifier is numeric.
func (id Identifier) Numeric() (uint64, bool) {
	if !id.numeric {
		return 0, false
	}
	return id.num, true
}

// String returns the string value if this Identifier is a string, or the
// decimal rendering of the numeric value otherwise.
func (id Identifier) String() string {
	if id.numeric {
		return fmt.Sprintf("%d", id.num)
	}
	return id.str
}

// Less defines a total order over identifiers: numeric identifiers sort
// before string identifiers, and within a kind identifiers sort by value.
// Callers can sort mixed identifiers with it without knowing which kind they
// hold; the Catalog's own snapshots iterate maps and are not sorted by it.
func (id Identifier) Less(other Identifier) bool {
	if id.numeric != other.numeric {
		return id.numeric
	}
	if id.numeric {
		return id.num < other.num
	}
	return id.str < other.str
}

// MarshalJSON serializes the Identifier as a native JSON number or string.
func (id Identifier) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return json.Marshal(id.num)
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var num uint64
	if err := json.Unmarshal(data, &num); err == nil {
		id.numeric = true
		id.num = num
		id.str = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("identifier: value is neither a number nor a string: %w", err)
	}
	id.numeric = false
	id.str = str
	id.num = 0
	return nil
}
