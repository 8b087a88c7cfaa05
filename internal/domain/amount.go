package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary or numeric field as the CRM API sends it.
// The API is inconsistent about quoting, so both "1000" and 1000 are accepted.
type Amount string

// NewAmount builds an Amount from a decimal
func NewAmount(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// IsZero reports whether the field was absent
func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// Decimal parses the amount. Absent or unparsable values are zero.
func (a Amount) Decimal() decimal.Decimal {
	d, err := a.Parse()
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Parse parses the amount and reports malformed input
func (a Amount) Parse() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// UnmarshalJSON accepts a JSON string, number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// booleans and objects are kept out of the value rather than failing the whole list
		*a = ""
		return nil
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON writes the amount as a string, matching what the web forms submit
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}
