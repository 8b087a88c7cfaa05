package service

import (
	"strings"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/response"
)

// validateDraft checks a draft before any API call is made. The customer
// reference is checked first since it is the one rule the form cannot default.
func validateDraft(d dto.DealDraft, stages []domain.StageDefinition) error {
	switch d.CustomerMode {
	case dto.CustomerModeLinkExisting:
		if strings.TrimSpace(d.CustomerID) == "" {
			return response.NewValidationError("missing customer", "select an existing customer or create a new one")
		}
	case dto.CustomerModeCreateNew:
		if err := validateCustomerDraft(d.NewCustomer); err != nil {
			return err
		}
	default:
		return response.NewValidationError("missing customer", "unknown customer mode "+string(d.CustomerMode))
	}

	if strings.TrimSpace(d.Title) == "" {
		return response.NewValidationError("Title is required", "")
	}

	value, err := domain.Amount(d.Value).Parse()
	if err != nil {
		return response.NewValidationError("Value must be a number", d.Value)
	}
	if value.IsNegative() {
		return response.NewValidationError("Value must not be negative", d.Value)
	}

	if _, ok := findDefinition(stages, d.Stage); !ok {
		return response.NewValidationError("Unknown stage", string(d.Stage))
	}

	if d.Priority != "" && !d.Priority.IsValid() {
		return response.NewValidationError("Unknown priority", string(d.Priority))
	}
	return nil
}

func validateCustomerDraft(c dto.CustomerDraft) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return response.NewValidationError("missing customer", "first and last name are required for a new customer")
	}
	if !strings.Contains(c.Email, "@") {
		return response.NewValidationError("missing customer", "a valid email is required for a new customer")
	}
	return nil
}
