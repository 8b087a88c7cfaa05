package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Deal represents a sales opportunity as returned by the CRM API
type Deal struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Value             Amount     `json:"value"`
	Stage             Stage      `json:"stage"`
	Priority          Priority   `json:"priority,omitempty"`
	ExpectedCloseDate string     `json:"expectedCloseDate,omitempty"`
	CustomerID        string     `json:"customerId,omitempty"`
	Customer          *Customer  `json:"customer,omitempty"`
	Description       string     `json:"description,omitempty"`
	Type              string     `json:"type,omitempty"`
	LeadSource        string     `json:"leadSource,omitempty"`
	NextStep          string     `json:"nextStep,omitempty"`
	Probability       Amount     `json:"probability,omitempty"`
	CampaignSource    string     `json:"campaignSource,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// DisplayPriority returns the priority, defaulting to MEDIUM
func (d Deal) DisplayPriority() Priority {
	return d.Priority.OrDefault()
}

// CustomerRef returns the referenced customer id, preferring the embedded copy
func (d Deal) CustomerRef() string {
	if d.CustomerID != "" {
		return d.CustomerID
	}
	if d.Customer != nil {
		return d.Customer.ID
	}
	return ""
}

// UnmarshalJSON decodes a deal, tolerating numeric ids and timestamps
// without a zone. A bad timestamp is dropped instead of failing the list.
func (d *Deal) UnmarshalJSON(data []byte) error {
	type plain Deal
	aux := struct {
		*plain
		ID         ID              `json:"id"`
		CustomerID ID              `json:"customerId"`
		CreatedAt  json.RawMessage `json:"createdAt"`
		UpdatedAt  json.RawMessage `json:"updatedAt"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.ID = string(aux.ID)
	d.CustomerID = string(aux.CustomerID)
	d.CreatedAt = parseTimestamp(aux.CreatedAt)
	d.UpdatedAt = parseTimestamp(aux.UpdatedAt)
	return nil
}

// MatchesQuery reports whether the title or description contains q, ignoring case
func (d Deal) MatchesQuery(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Description), q)
}

// closeDateLayouts are the formats seen in expectedCloseDate
var closeDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CloseDate parses ExpectedCloseDate. ok is false when it is absent or malformed.
func (d Deal) CloseDate() (t time.Time, ok bool) {
	return parseDate(d.ExpectedCloseDate)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range closeDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseTimestamp reads a server timestamp in any of the layouts the API uses.
// Non-string and unparsable values yield nil.
func parseTimestamp(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	t, ok := parseDate(s)
	if !ok {
		return nil
	}
	return &t
}
