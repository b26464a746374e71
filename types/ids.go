package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a 64-bit record identifier. Identifiers exceed the safe integer
// range of JSON numbers, so an ID always marshals as a decimal string and
// accepts either a string or a number when unmarshaling. Every primary and
// foreign key in the API uses this type, which keeps the wire representation
// consistent across all endpoints.
type ID int64

// ParseID parses a decimal identifier from a path, query, or form value.
func ParseID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return ID(value), nil
}

// String returns the decimal representation of the identifier.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Int64 returns the identifier as a plain int64 for store queries.
func (id ID) Int64() int64 {
	return int64(id)
}

// MarshalJSON renders the identifier as a decimal string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts either "123" or 123.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", raw)
		}
		*id = ID(value)
		return nil
	}
	value, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(value)
	return nil
}
