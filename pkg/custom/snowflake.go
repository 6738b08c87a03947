package custom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake is a Discord identifier. It is always held in its canonical string form, but older configuration files
// stored identifiers as JSON numbers, so both forms are accepted when decoding.
type Snowflake string

// String implements the fmt.Stringer interface.
func (s Snowflake) String() string {
	return string(s)
}

// IsZero reports whether the identifier is unset.
func (s Snowflake) IsZero() bool {
	return s == ""
}

// Valid reports whether the identifier is a non-empty string of digits.
func (s Snowflake) Valid() bool {
	return IsNumeric(string(s))
}

// MarshalJSON implements the json.Marshaler interface. Unset identifiers are written as null.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid snowflake %s: %w", data, err)
		}
		*s = Snowflake(str)
		return nil
	default:
		// Numbers are decoded without going through float64 so large IDs keep every digit.
		n, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snowflake %s: %w", data, err)
		}
		*s = Snowflake(strconv.FormatUint(n, 10))
		return nil
	}
}

// IsNumeric reports whether s is a non-empty string of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
