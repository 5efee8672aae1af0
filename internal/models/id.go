// internal/models/id.go
package models

import (
	"encoding/json"
	"fmt"
)

// ID is a backend identifier. The directory sends ids as JSON numbers on
// some endpoints and strings on others; both decode to the same text and
// marshal back as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := numberOrString(data)
	if err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string {
	return string(id)
}

// numberOrString returns the text of a JSON string or number. null is "".
func numberOrString(data []byte) (string, error) {
	if string(data) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
