package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/response"
)

func newTestSession(t *testing.T, api *MockCRMClient) BoardSession {
	t.Helper()
	c := loadedController(t, api, sampleDeals(), AlwaysConfirm)
	return NewBoardSession(c, zap.NewNop())
}

func TestBoardSession_DealsQueryLeavesFilterAlone(t *testing.T) {
	s := newTestSession(t, &MockCRMClient{})

	s.SetSearch("pilot")
	assert.Equal(t, []string{"d1", "d2"}, dealIDs(s.Deals("q3")))
	assert.Equal(t, []string{"d3"}, dealIDs(s.Deals("")))
	assert.Equal(t, "pilot", s.View().SearchQuery)
}

func TestBoardSession_ModalRoundTrip(t *testing.T) {
	api := &MockCRMClient{}
	s := newTestSession(t, api)

	modal, err := s.OpenCreate()
	require.NoError(t, err)
	assert.Equal(t, dto.ModalDrafting, modal.State)

	title := "From the API"
	customer := "c1"
	modal, err = s.PatchDraft(dto.DealDraftPatch{Title: &title, CustomerID: &customer})
	require.NoError(t, err)
	assert.Equal(t, title, modal.Draft.Title)

	view, err := s.SubmitDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ModalClosed, view.Modal.State)
	assert.Equal(t, 1, api.Calls("CreateDeal"))

	_, err = s.PatchDraft(dto.DealDraftPatch{Title: &title})
	assert.Equal(t, response.ErrCodeInvalidState, response.CodeOf(err))
}

func TestBoardSession_DeleteAndSelect(t *testing.T) {
	api := &MockCRMClient{}
	s := newTestSession(t, api)

	deal, err := s.SelectDeal("d2")
	require.NoError(t, err)
	assert.Equal(t, "d2", deal.ID)
	s.ClearSelection()

	api.ListDealsFunc = func(ctx context.Context) ([]domain.Deal, error) { return sampleDeals()[:1], nil }
	view, err := s.DeleteDeal(context.Background(), "d2")
	require.NoError(t, err)
	assert.Len(t, view.Deals, 1)
	assert.Equal(t, 1, s.Stats().DealCount)
}

func TestBoardSession_ConcurrentAccess(t *testing.T) {
	s := newTestSession(t, &MockCRMClient{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetSearch("q3")
			} else {
				_, _ = s.ToggleMenu("d1")
			}
			_ = s.View()
			_ = s.Revenue()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "q3", s.View().SearchQuery)
}
