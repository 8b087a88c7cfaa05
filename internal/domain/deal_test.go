package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Amount
	}{
		{`"1000"`, "1000"},
		{`1000`, "1000"},
		{`12.75`, "12.75"},
		{`null`, ""},
		{`true`, ""},
		{`{"amount":1}`, ""},
		{`"abc"`, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &a))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestAmount_Decimal(t *testing.T) {
	assert.Equal(t, "0", Amount("").Decimal().String())
	assert.Equal(t, "0", Amount("abc").Decimal().String())
	assert.Equal(t, "-5.5", Amount(" -5.5 ").Decimal().String())

	_, err := Amount("abc").Parse()
	assert.Error(t, err)
}

func TestAmount_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		V Amount `json:"v"`
		E Amount `json:"e"`
	}{V: "750"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"750","e":null}`, string(out))
}

func TestStage(t *testing.T) {
	assert.True(t, StageNegotiation.IsValid())
	assert.False(t, StageProspecting.IsValid())
	assert.True(t, StageProspecting.IsLegacy())
	assert.Equal(t, StageNew, StageProspecting.Canonical())
	assert.Equal(t, StageQualified, StageQualification.Canonical())
	assert.Equal(t, Stage("OTHER"), Stage("OTHER").Canonical())
	assert.True(t, StageClosedLost.IsClosed())
	assert.False(t, StageProposal.IsClosed())
	assert.Equal(t, StageClosedWon, ParseStage(" closed won "))
	assert.Equal(t, StageClosedLost, ParseStage("closed-lost"))
}

func TestDefaultStageDefinitions(t *testing.T) {
	defs := DefaultStageDefinitions()
	require.Len(t, defs, len(CanonicalStages()))

	for i, def := range defs {
		assert.Equal(t, CanonicalStages()[i], def.Stage)
		assert.Equal(t, i, def.DisplayOrder)
		assert.NotEmpty(t, def.Label)
	}
	assert.True(t, defs[0].Matches(StageProspecting))
	assert.True(t, defs[1].Matches(StageQualification))
	assert.False(t, defs[2].Matches(StageNew))
}

func TestPriority(t *testing.T) {
	assert.Equal(t, PriorityMedium, Priority("").OrDefault())
	assert.Equal(t, PriorityHigh, PriorityHigh.OrDefault())
	assert.False(t, Priority("URGENT").IsValid())
}

func TestDeal_MatchesQuery(t *testing.T) {
	d := Deal{Title: "Q3 Renewal", Description: "Enterprise seats"}

	assert.True(t, d.MatchesQuery(""))
	assert.True(t, d.MatchesQuery("q3"))
	assert.True(t, d.MatchesQuery("SEATS"))
	assert.False(t, d.MatchesQuery("q4"))
	assert.True(t, d.MatchesQuery("q3 "), "trailing space is part of the query")
	assert.False(t, d.MatchesQuery(" q3"))
	assert.False(t, d.MatchesQuery("   "))
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
	}{
		{`"d-1"`, "d-1"},
		{`42`, "42"},
		{`9007199254740993`, "9007199254740993"},
		{`null`, ""},
		{`true`, ""},
		{`{"id":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestDeal_UnmarshalJSON_NumericIDsAndLocalTimestamps(t *testing.T) {
	var d Deal
	err := json.Unmarshal([]byte(`{
		"id": 17,
		"title": "Renewal",
		"value": "500",
		"stage": "NEW",
		"customerId": 7,
		"customer": {"id": 7, "firstName": "Ada"},
		"createdAt": "2024-01-15T10:30:00",
		"updatedAt": "yesterday"
	}`), &d)
	require.NoError(t, err)

	assert.Equal(t, "17", d.ID)
	assert.Equal(t, "Renewal", d.Title)
	assert.Equal(t, "500", string(d.Value))
	assert.Equal(t, StageNew, d.Stage)
	assert.Equal(t, "7", d.CustomerID)
	require.NotNil(t, d.Customer)
	assert.Equal(t, "7", d.Customer.ID)
	assert.Equal(t, "Ada", d.Customer.FirstName)

	require.NotNil(t, d.CreatedAt)
	assert.Equal(t, time.January, d.CreatedAt.Month())
	assert.Equal(t, 10, d.CreatedAt.Hour())
	assert.Nil(t, d.UpdatedAt)
}

func TestDeal_UnmarshalJSON_TimestampTypes(t *testing.T) {
	var d Deal
	require.NoError(t, json.Unmarshal([]byte(`{"id":"d1","createdAt":1705314600,"updatedAt":"2024-02-01T08:00:00.250Z"}`), &d))

	assert.Nil(t, d.CreatedAt)
	require.NotNil(t, d.UpdatedAt)
	assert.Equal(t, time.February, d.UpdatedAt.Month())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"d1"`)
	assert.NotContains(t, string(out), "createdAt")
}

func TestDeal_CloseDate(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		month  time.Month
	}{
		{"2024-03-15", true, time.March},
		{"2024-07-01T10:00:00Z", true, time.July},
		{"2024-11-30T08:15:00", true, time.November},
		{"", false, 0},
		{"15/03/2024", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Deal{ExpectedCloseDate: tt.raw}.CloseDate()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.month, got.Month())
			}
		})
	}
}

func TestDeal_CustomerRef(t *testing.T) {
	assert.Equal(t, "c1", Deal{CustomerID: "c1", Customer: &Customer{ID: "c2"}}.CustomerRef())
	assert.Equal(t, "c2", Deal{Customer: &Customer{ID: "c2"}}.CustomerRef())
	assert.Empty(t, Deal{}.CustomerRef())
}

func TestCustomer_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Customer{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Acme", Customer{Company: "Acme"}.DisplayName())
	assert.Equal(t, "x@y.z", Customer{Email: "x@y.z"}.DisplayName())
}
