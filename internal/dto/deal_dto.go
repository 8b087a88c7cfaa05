package dto

import (
	"encoding/json"
	"fmt"
	"io"

	"deal-board/internal/domain"
)

// CustomerMode selects how a draft references its customer
type CustomerMode string

const (
	CustomerModeLinkExisting CustomerMode = "LINK_EXISTING"
	CustomerModeCreateNew    CustomerMode = "CREATE_NEW"
)

// CustomerDraft holds the fields for a customer created alongside a deal
type CustomerDraft struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
}

// DealDraft is the create/edit form state. Every recognised field is listed;
// anything else is rejected when decoding.
type DealDraft struct {
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	Value             string          `json:"value,omitempty"`
	Stage             domain.Stage    `json:"stage"`
	Priority          domain.Priority `json:"priority,omitempty"`
	ExpectedCloseDate string          `json:"expectedCloseDate,omitempty"`
	Type              string          `json:"type,omitempty"`
	LeadSource        string          `json:"leadSource,omitempty"`
	NextStep          string          `json:"nextStep,omitempty"`
	Probability       string          `json:"probability,omitempty"`
	CampaignSource    string          `json:"campaignSource,omitempty"`
	CustomerMode      CustomerMode    `json:"customerMode"`
	CustomerID        string          `json:"customerId,omitempty"`
	NewCustomer       CustomerDraft   `json:"newCustomer"`
}

// NewDealDraft returns the blank form used when opening the create modal
func NewDealDraft() DealDraft {
	return DealDraft{
		Stage:        domain.StageNew,
		Priority:     domain.PriorityMedium,
		CustomerMode: CustomerModeLinkExisting,
	}
}

// DraftFromDeal pre-populates the edit form from an existing deal
func DraftFromDeal(d domain.Deal) DealDraft {
	return DealDraft{
		Title:             d.Title,
		Description:       d.Description,
		Value:             string(d.Value),
		Stage:             d.Stage,
		Priority:          d.DisplayPriority(),
		ExpectedCloseDate: d.ExpectedCloseDate,
		Type:              d.Type,
		LeadSource:        d.LeadSource,
		NextStep:          d.NextStep,
		Probability:       string(d.Probability),
		CampaignSource:    d.CampaignSource,
		CustomerMode:      CustomerModeLinkExisting,
		CustomerID:        d.CustomerRef(),
	}
}

// DealPayload is the body sent to the create and update deal endpoints
type DealPayload struct {
	Title             string          `json:"title"`
	Value             domain.Amount   `json:"value"`
	Stage             domain.Stage    `json:"stage"`
	Priority          domain.Priority `json:"priority"`
	ExpectedCloseDate string          `json:"expectedCloseDate,omitempty"`
	CustomerID        string          `json:"customerId"`
	Description       string          `json:"description,omitempty"`
	Type              string          `json:"type,omitempty"`
	LeadSource        string          `json:"leadSource,omitempty"`
	NextStep          string          `json:"nextStep,omitempty"`
	Probability       domain.Amount   `json:"probability,omitempty"`
	CampaignSource    string          `json:"campaignSource,omitempty"`
}

// ToPayload builds the API payload once the customer reference is resolved
func (d DealDraft) ToPayload(customerID string) DealPayload {
	return DealPayload{
		Title:             d.Title,
		Value:             domain.Amount(d.Value),
		Stage:             d.Stage,
		Priority:          d.Priority.OrDefault(),
		ExpectedCloseDate: d.ExpectedCloseDate,
		CustomerID:        customerID,
		Description:       d.Description,
		Type:              d.Type,
		LeadSource:        d.LeadSource,
		NextStep:          d.NextStep,
		Probability:       domain.Amount(d.Probability),
		CampaignSource:    d.CampaignSource,
	}
}

// CustomerPayload is the body sent to the create customer endpoint
type CustomerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
}

// ToPayload converts the inline customer form
func (c CustomerDraft) ToPayload() CustomerPayload {
	return CustomerPayload(c)
}

// DealDraftPatch carries a partial draft edit; nil fields are left unchanged
type DealDraftPatch struct {
	Title             *string          `json:"title"`
	Description       *string          `json:"description"`
	Value             *string          `json:"value"`
	Stage             *domain.Stage    `json:"stage"`
	Priority          *domain.Priority `json:"priority"`
	ExpectedCloseDate *string          `json:"expectedCloseDate"`
	Type              *string          `json:"type"`
	LeadSource        *string          `json:"leadSource"`
	NextStep          *string          `json:"nextStep"`
	Probability       *string          `json:"probability"`
	CampaignSource    *string          `json:"campaignSource"`
	CustomerMode      *CustomerMode    `json:"customerMode"`
	CustomerID        *string          `json:"customerId"`
	NewCustomer       *CustomerDraft   `json:"newCustomer"`
}

// Apply copies the set fields onto d
func (p DealDraftPatch) Apply(d *DealDraft) {
	setString(&d.Title, p.Title)
	setString(&d.Description, p.Description)
	setString(&d.Value, p.Value)
	setString(&d.ExpectedCloseDate, p.ExpectedCloseDate)
	setString(&d.Type, p.Type)
	setString(&d.LeadSource, p.LeadSource)
	setString(&d.NextStep, p.NextStep)
	setString(&d.Probability, p.Probability)
	setString(&d.CampaignSource, p.CampaignSource)
	setString(&d.CustomerID, p.CustomerID)
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.CustomerMode != nil {
		d.CustomerMode = *p.CustomerMode
	}
	if p.NewCustomer != nil {
		d.NewCustomer = *p.NewCustomer
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// DecodeDealDraft strictly decodes a full draft
func DecodeDealDraft(r io.Reader) (DealDraft, error) {
	draft := NewDealDraft()
	if err := decodeStrict(r, &draft); err != nil {
		return DealDraft{}, err
	}
	return draft, nil
}

// DecodeDealDraftPatch strictly decodes a partial draft
func DecodeDealDraftPatch(r io.Reader) (DealDraftPatch, error) {
	var patch DealDraftPatch
	if err := decodeStrict(r, &patch); err != nil {
		return DealDraftPatch{}, err
	}
	return patch, nil
}

func decodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid draft: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid draft: trailing data after object")
	}
	return nil
}
