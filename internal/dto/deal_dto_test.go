package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-board/internal/domain"
)

func TestDecodeDealDraft(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		draft, err := DecodeDealDraft(strings.NewReader(`{"title":"Expansion","customerId":"c1"}`))
		require.NoError(t, err)

		assert.Equal(t, "Expansion", draft.Title)
		assert.Equal(t, domain.StageNew, draft.Stage)
		assert.Equal(t, domain.PriorityMedium, draft.Priority)
		assert.Equal(t, CustomerModeLinkExisting, draft.CustomerMode)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := DecodeDealDraft(strings.NewReader(`{"title":"x","owner":"bob"}`))
		assert.Error(t, err)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		_, err := DecodeDealDraft(strings.NewReader(`{"title":"x"} {"title":"y"}`))
		assert.Error(t, err)
	})
}

func TestDealDraftPatch_Apply(t *testing.T) {
	draft := NewDealDraft()
	draft.Title = "Old"
	draft.Value = "100"

	patch, err := DecodeDealDraftPatch(strings.NewReader(`{"title":"New","stage":"NEGOTIATION","customerMode":"CREATE_NEW","newCustomer":{"firstName":"Grace","lastName":"Hopper","email":"g@h.io"}}`))
	require.NoError(t, err)
	patch.Apply(&draft)

	assert.Equal(t, "New", draft.Title)
	assert.Equal(t, "100", draft.Value, "unset fields are kept")
	assert.Equal(t, domain.StageNegotiation, draft.Stage)
	assert.Equal(t, CustomerModeCreateNew, draft.CustomerMode)
	assert.Equal(t, "Grace", draft.NewCustomer.FirstName)

	empty := ""
	DealDraftPatch{Value: &empty}.Apply(&draft)
	assert.Empty(t, draft.Value, "explicit empty string clears the field")
}

func TestDraftFromDeal(t *testing.T) {
	deal := domain.Deal{
		ID:          "d1",
		Title:       "Renewal",
		Value:       "1200",
		Stage:       domain.StageProposal,
		Customer:    &domain.Customer{ID: "c9"},
		Probability: "60",
	}

	draft := DraftFromDeal(deal)

	assert.Equal(t, "Renewal", draft.Title)
	assert.Equal(t, "1200", draft.Value)
	assert.Equal(t, domain.PriorityMedium, draft.Priority)
	assert.Equal(t, "c9", draft.CustomerID)
	assert.Equal(t, "60", draft.Probability)

	payload := draft.ToPayload("c9")
	assert.Equal(t, domain.Amount("1200"), payload.Value)
	assert.Equal(t, "c9", payload.CustomerID)
}
