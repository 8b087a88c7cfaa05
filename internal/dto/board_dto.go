package dto

import (
	"github.com/shopspring/decimal"

	"deal-board/internal/domain"
)

// SummaryStats are the headline numbers above the board
type SummaryStats struct {
	TotalValue  decimal.Decimal `json:"totalValue"`
	ActiveCount int             `json:"activeCount"`
	WinRate     int             `json:"winRate"`
	AvgDealSize decimal.Decimal `json:"avgDealSize"`
	WonCount    int             `json:"wonCount"`
	LostCount   int             `json:"lostCount"`
	DealCount   int             `json:"dealCount"`
}

// StageGroup is one board column
type StageGroup struct {
	Definition domain.StageDefinition `json:"definition"`
	Deals      []domain.Deal          `json:"deals"`
	TotalValue decimal.Decimal        `json:"totalValue"`
}

// RevenuePeriod is one bar of the revenue chart
type RevenuePeriod struct {
	Period string          `json:"period"`
	Won    decimal.Decimal `json:"won"`
	Lost   decimal.Decimal `json:"lost"`
}

// StageCount is one slice of the pipeline chart
type StageCount struct {
	Stage domain.Stage    `json:"stage"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// PriorityCount is the number of deals per display priority
type PriorityCount struct {
	Priority domain.Priority `json:"priority"`
	Count    int             `json:"count"`
}

// ViewMode selects the board or list rendering
type ViewMode string

const (
	ViewModeBoard ViewMode = "BOARD"
	ViewModeList  ViewMode = "LIST"
)

// IsValid reports whether m is a known view mode
func (m ViewMode) IsValid() bool {
	return m == ViewModeBoard || m == ViewModeList
}

// ModalState is the create/edit modal state
type ModalState string

const (
	ModalClosed   ModalState = "CLOSED"
	ModalDrafting ModalState = "DRAFTING"
)

// ModalView describes the open modal, if any
type ModalView struct {
	State     ModalState `json:"state"`
	EditingID string     `json:"editingId,omitempty"`
	Draft     *DealDraft `json:"draft,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// BoardView is a snapshot of everything the render layer needs
type BoardView struct {
	Mode              ViewMode          `json:"mode"`
	SearchQuery       string            `json:"searchQuery"`
	Columns           []StageGroup      `json:"columns,omitempty"`
	Deals             []domain.Deal     `json:"deals"`
	Customers         []domain.Customer `json:"customers"`
	Stats             SummaryStats      `json:"stats"`
	Revenue           []RevenuePeriod   `json:"revenue"`
	StageDistribution []StageCount      `json:"stageDistribution"`
	Priorities        []PriorityCount   `json:"priorities"`
	OpenMenuID        string            `json:"openMenuId,omitempty"`
	SelectedID        string            `json:"selectedId,omitempty"`
	Modal             ModalView         `json:"modal"`
}

// ViewModeRequest switches between board and list
type ViewModeRequest struct {
	Mode ViewMode `json:"mode" binding:"required,oneof=BOARD LIST"`
}

// SearchRequest sets the search filter
type SearchRequest struct {
	Query string `json:"query"`
}
