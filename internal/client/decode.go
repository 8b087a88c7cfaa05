package client

import (
	"bytes"
	"encoding/json"

	"deal-board/internal/domain"
	"deal-board/internal/response"
)

// listEnvelope is the wrapped list shape some API deployments return
type listEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeDeals decodes a deal list. The payload must be a JSON array, or an
// object whose "data" field is one; anything else is an INVALID_INPUT error.
func DecodeDeals(raw []byte) ([]domain.Deal, error) {
	return decodeList[domain.Deal](raw, "deals")
}

// DecodeCustomers decodes a customer list with the same rules as DecodeDeals
func DecodeCustomers(raw []byte) ([]domain.Customer, error) {
	return decodeList[domain.Customer](raw, "customers")
}

func decodeList[T any](raw []byte, what string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, response.NewInvalidInputError("Empty "+what+" payload", "")
	}

	if raw[0] == '{' {
		var env listEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, response.NewInvalidInputError("Malformed "+what+" payload", err.Error())
		}
		raw = bytes.TrimSpace(env.Data)
		if len(raw) == 0 {
			return nil, response.NewInvalidInputError("Payload has no "+what+" list", "")
		}
	}

	if raw[0] != '[' {
		return nil, response.NewInvalidInputError("Expected a list of "+what, "")
	}

	items := make([]T, 0)
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, response.NewInvalidInputError("Malformed "+what+" payload", err.Error())
	}
	return items, nil
}

// decodeOne decodes a single object, accepting the same "data" envelope
func decodeOne(raw []byte, out interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env listEnvelope
		if err := json.Unmarshal(raw, &env); err == nil {
			data := bytes.TrimSpace(env.Data)
			if len(data) > 0 && data[0] == '{' {
				raw = data
			}
		}
	}
	return json.Unmarshal(raw, out)
}
