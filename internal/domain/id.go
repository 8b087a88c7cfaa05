package domain

import (
	"bytes"
	"encoding/json"
)

// ID is a record identifier. Some CRM backends send numeric ids, so both
// "42" and 42 decode to the same value.
type ID string

// UnmarshalJSON accepts a JSON string, number or null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*id = ""
		return nil
	}
	*id = ID(n.String())
	return nil
}
