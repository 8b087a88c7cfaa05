package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
)

// BoardSession exposes one BoardController to concurrent HTTP requests.
// Calls are serialised, so a submit that is waiting on the CRM API blocks
// every other call until it completes.
type BoardSession interface {
	View() dto.BoardView
	Reload(ctx context.Context) (dto.BoardView, error)
	Deals(query string) []domain.Deal
	Stats() dto.SummaryStats
	Revenue() []dto.RevenuePeriod
	SetViewMode(mode dto.ViewMode) (dto.BoardView, error)
	SetSearch(query string) dto.BoardView
	ToggleMenu(id string) (dto.BoardView, error)
	SelectDeal(id string) (domain.Deal, error)
	ClearSelection()
	OpenCreate() (dto.ModalView, error)
	OpenEdit(id string) (dto.ModalView, error)
	PatchDraft(patch dto.DealDraftPatch) (dto.ModalView, error)
	SubmitDraft(ctx context.Context) (dto.BoardView, error)
	CloseModal() dto.ModalView
	DeleteDeal(ctx context.Context, id string) (dto.BoardView, error)
}

type boardSessionImpl struct {
	mu         sync.Mutex
	controller *BoardController
	logger     *zap.Logger
}

// NewBoardSession creates a new BoardSession
func NewBoardSession(controller *BoardController, logger *zap.Logger) BoardSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &boardSessionImpl{
		controller: controller,
		logger:     logger,
	}
}

func (s *boardSessionImpl) View() dto.BoardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.View()
}

func (s *boardSessionImpl) Reload(ctx context.Context) (dto.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.LoadAll(ctx); err != nil {
		return dto.BoardView{}, err
	}
	return s.controller.View(), nil
}

// Deals filters by query without touching the session's own search filter.
// An empty query uses the session filter.
func (s *boardSessionImpl) Deals(query string) []domain.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == "" {
		return s.controller.FilteredDeals()
	}
	all := s.controller.Deals()
	filtered := make([]domain.Deal, 0, len(all))
	for _, deal := range all {
		if deal.MatchesQuery(query) {
			filtered = append(filtered, deal)
		}
	}
	return filtered
}

func (s *boardSessionImpl) Stats() dto.SummaryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeSummaryStats(s.controller.Deals())
}

func (s *boardSessionImpl) Revenue() []dto.RevenuePeriod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.View().Revenue
}

func (s *boardSessionImpl) SetViewMode(mode dto.ViewMode) (dto.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.SetViewMode(mode); err != nil {
		return dto.BoardView{}, err
	}
	return s.controller.View(), nil
}

func (s *boardSessionImpl) SetSearch(query string) dto.BoardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.SetSearchQuery(query)
	return s.controller.View()
}

func (s *boardSessionImpl) ToggleMenu(id string) (dto.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.ToggleActionMenu(id); err != nil {
		return dto.BoardView{}, err
	}
	return s.controller.View(), nil
}

func (s *boardSessionImpl) SelectDeal(id string) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.SelectDeal(id); err != nil {
		return domain.Deal{}, err
	}
	deal, _ := s.controller.SelectedDeal()
	return deal, nil
}

func (s *boardSessionImpl) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.ClearSelection()
}

func (s *boardSessionImpl) OpenCreate() (dto.ModalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.OpenCreate(); err != nil {
		return dto.ModalView{}, err
	}
	return s.controller.View().Modal, nil
}

func (s *boardSessionImpl) OpenEdit(id string) (dto.ModalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.OpenEdit(id); err != nil {
		return dto.ModalView{}, err
	}
	return s.controller.View().Modal, nil
}

func (s *boardSessionImpl) PatchDraft(patch dto.DealDraftPatch) (dto.ModalView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.UpdateDraft(patch.Apply); err != nil {
		return dto.ModalView{}, err
	}
	return s.controller.View().Modal, nil
}

func (s *boardSessionImpl) SubmitDraft(ctx context.Context) (dto.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.SubmitDraft(ctx); err != nil {
		return dto.BoardView{}, err
	}
	return s.controller.View(), nil
}

func (s *boardSessionImpl) CloseModal() dto.ModalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.CloseModal()
	return s.controller.View().Modal
}

func (s *boardSessionImpl) DeleteDeal(ctx context.Context, id string) (dto.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.controller.DeleteDeal(ctx, id); err != nil {
		return dto.BoardView{}, err
	}
	return s.controller.View(), nil
}
