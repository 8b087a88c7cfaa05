package domain

import (
	"encoding/json"
	"strings"
)

// Customer is referenced by deals; it carries no business rules here
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
}

// UnmarshalJSON accepts numeric customer ids
func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	aux := struct {
		*plain
		ID ID `json:"id"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = string(aux.ID)
	return nil
}

// FullName joins first and last name
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DisplayName is the name shown next to a deal card
func (c Customer) DisplayName() string {
	name := c.FullName()
	if c.Company != "" {
		if name == "" {
			return c.Company
		}
		return name + " (" + c.Company + ")"
	}
	if name == "" {
		return c.Email
	}
	return name
}
