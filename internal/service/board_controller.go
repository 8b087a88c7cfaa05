package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deal-board/internal/client"
	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/metrics"
	"deal-board/internal/response"
)

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	ConfirmDelete(deal domain.Deal) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(deal domain.Deal) bool

// ConfirmDelete calls f
func (f ConfirmFunc) ConfirmDelete(deal domain.Deal) bool {
	return f(deal)
}

// AlwaysConfirm is used when the caller has already obtained confirmation
var AlwaysConfirm = ConfirmFunc(func(domain.Deal) bool { return true })

// ControllerOptions configures a BoardController
type ControllerOptions struct {
	Stages      []domain.StageDefinition
	DefaultView dto.ViewMode
	Confirmer   Confirmer
	// LoadTimeout bounds each full load; zero leaves it to the caller's context
	LoadTimeout time.Duration
	PeriodKey   PeriodKeyFunc
	Now         func() time.Time
}

// BoardController owns the deal and customer lists and the board UI state.
// It is not safe for concurrent use; callers that share one (serve mode)
// serialise access themselves.
type BoardController struct {
	api         client.CRMClient
	stages      []domain.StageDefinition
	confirm     Confirmer
	loadTimeout time.Duration
	periodKey   PeriodKeyFunc
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      *zap.Logger

	deals       []domain.Deal
	customers   []domain.Customer
	viewMode    dto.ViewMode
	searchQuery string
	selectedID  string
	openMenuID  string

	modal     dto.ModalState
	editingID string
	draft     dto.DealDraft
	draftErr  string
}

// NewBoardController creates a controller with empty lists and a closed modal
func NewBoardController(api client.CRMClient, opts ControllerOptions, m *metrics.Metrics, logger *zap.Logger) *BoardController {
	if logger == nil {
		logger = zap.NewNop()
	}
	stages := opts.Stages
	if len(stages) == 0 {
		stages = domain.DefaultStageDefinitions()
	}
	view := opts.DefaultView
	if !view.IsValid() {
		view = dto.ViewModeBoard
	}
	periodKey := opts.PeriodKey
	if periodKey == nil {
		periodKey = MonthPeriod
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &BoardController{
		api:         api,
		stages:      stages,
		confirm:     opts.Confirmer,
		loadTimeout: opts.LoadTimeout,
		periodKey:   periodKey,
		now:         now,
		metrics:     m,
		logger:      logger,
		deals:       []domain.Deal{},
		customers:   []domain.Customer{},
		viewMode:    view,
		modal:       dto.ModalClosed,
	}
}

// LoadAll fetches deals and customers concurrently and replaces both lists.
// If either request fails nothing is replaced.
func (c *BoardController) LoadAll(ctx context.Context) error {
	deals, customers, err := c.fetch(ctx, true)
	c.metrics.RecordBoardLoad(err)
	if err != nil {
		c.logger.Error("Failed to load board", zap.Error(err))
		return err
	}

	c.replaceDeals(deals)
	c.customers = customers
	c.logger.Info("Board loaded",
		zap.Int("deals", len(deals)),
		zap.Int("customers", len(customers)),
	)
	return nil
}

// fetch loads the deal list and, when withCustomers is set, the customer list
func (c *BoardController) fetch(ctx context.Context, withCustomers bool) ([]domain.Deal, []domain.Customer, error) {
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}

	var (
		deals     []domain.Deal
		customers []domain.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := c.api.ListDeals(gctx)
		if err != nil {
			return err
		}
		deals = result
		return nil
	})
	if withCustomers {
		g.Go(func() error {
			result, err := c.api.ListCustomers(gctx)
			if err != nil {
				return err
			}
			customers = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, asNetworkError(err)
	}
	return deals, customers, nil
}

// replaceDeals swaps in a fresh list and drops selection state for deals that vanished
func (c *BoardController) replaceDeals(deals []domain.Deal) {
	if deals == nil {
		deals = []domain.Deal{}
	}
	c.deals = deals

	if c.selectedID != "" && !c.hasDeal(c.selectedID) {
		c.selectedID = ""
	}
	if c.openMenuID != "" && !c.hasDeal(c.openMenuID) {
		c.openMenuID = ""
	}

	legacy := 0
	for _, deal := range deals {
		if deal.Stage.IsLegacy() {
			legacy++
		}
	}
	if legacy > 0 {
		c.logger.Warn("Deals use legacy stage names; they are shown in their canonical columns",
			zap.Int("count", legacy),
		)
	}

	c.metrics.SetPipelineStats(ComputeSummaryStats(deals))
}

// Deals returns a copy of the authoritative deal list
func (c *BoardController) Deals() []domain.Deal {
	return append([]domain.Deal(nil), c.deals...)
}

// Customers returns a copy of the customer list
func (c *BoardController) Customers() []domain.Customer {
	return append([]domain.Customer(nil), c.customers...)
}

// Stages returns the board column definitions
func (c *BoardController) Stages() []domain.StageDefinition {
	return append([]domain.StageDefinition(nil), c.stages...)
}

// FilteredDeals returns the deals whose title or description contains the search query
func (c *BoardController) FilteredDeals() []domain.Deal {
	filtered := make([]domain.Deal, 0, len(c.deals))
	for _, deal := range c.deals {
		if deal.MatchesQuery(c.searchQuery) {
			filtered = append(filtered, deal)
		}
	}
	return filtered
}

// SetSearchQuery sets the search filter
func (c *BoardController) SetSearchQuery(q string) {
	c.searchQuery = q
}

// SearchQuery returns the search filter
func (c *BoardController) SearchQuery() string {
	return c.searchQuery
}

// SetViewMode switches between board and list
func (c *BoardController) SetViewMode(mode dto.ViewMode) error {
	if !mode.IsValid() {
		return response.NewValidationError("Unknown view mode", string(mode))
	}
	c.viewMode = mode
	return nil
}

// ToggleViewMode flips between board and list
func (c *BoardController) ToggleViewMode() dto.ViewMode {
	if c.viewMode == dto.ViewModeBoard {
		c.viewMode = dto.ViewModeList
	} else {
		c.viewMode = dto.ViewModeBoard
	}
	return c.viewMode
}

// ViewMode returns the active view mode
func (c *BoardController) ViewMode() dto.ViewMode {
	return c.viewMode
}

// ToggleActionMenu opens the action menu of id, closing any other; a second
// toggle of the same id closes it.
func (c *BoardController) ToggleActionMenu(id string) error {
	if c.openMenuID == id {
		c.openMenuID = ""
		return nil
	}
	if !c.hasDeal(id) {
		return response.NewNotFoundError("Deal not found", id)
	}
	c.openMenuID = id
	return nil
}

// OpenMenuID returns the deal whose action menu is open, or ""
func (c *BoardController) OpenMenuID() string {
	return c.openMenuID
}

// SelectDeal opens a deal for viewing
func (c *BoardController) SelectDeal(id string) error {
	if !c.hasDeal(id) {
		return response.NewNotFoundError("Deal not found", id)
	}
	c.selectedID = id
	c.openMenuID = ""
	return nil
}

// ClearSelection closes the deal view
func (c *BoardController) ClearSelection() {
	c.selectedID = ""
}

// SelectedDeal returns the deal open for viewing
func (c *BoardController) SelectedDeal() (domain.Deal, bool) {
	if c.selectedID == "" {
		return domain.Deal{}, false
	}
	return c.findDeal(c.selectedID)
}

// OpenCreate opens the modal with a blank draft
func (c *BoardController) OpenCreate() error {
	if c.modal != dto.ModalClosed {
		return response.NewInvalidStateError("A deal form is already open")
	}
	c.modal = dto.ModalDrafting
	c.editingID = ""
	c.draft = dto.NewDealDraft()
	c.draftErr = ""
	c.openMenuID = ""
	return nil
}

// OpenEdit opens the modal pre-populated from an existing deal
func (c *BoardController) OpenEdit(id string) error {
	if c.modal != dto.ModalClosed {
		return response.NewInvalidStateError("A deal form is already open")
	}
	deal, ok := c.findDeal(id)
	if !ok {
		return response.NewNotFoundError("Deal not found", id)
	}
	c.modal = dto.ModalDrafting
	c.editingID = id
	c.draft = dto.DraftFromDeal(deal)
	c.draftErr = ""
	c.openMenuID = ""
	return nil
}

// UpdateDraft edits the open draft in place
func (c *BoardController) UpdateDraft(fn func(d *dto.DealDraft)) error {
	if c.modal != dto.ModalDrafting {
		return response.NewInvalidStateError("No deal form is open")
	}
	fn(&c.draft)
	return nil
}

// CloseModal discards the draft
func (c *BoardController) CloseModal() {
	c.modal = dto.ModalClosed
	c.editingID = ""
	c.draft = dto.DealDraft{}
	c.draftErr = ""
}

// ModalState returns the modal state
func (c *BoardController) ModalState() dto.ModalState {
	return c.modal
}

// Draft returns a copy of the open draft
func (c *BoardController) Draft() (dto.DealDraft, bool) {
	if c.modal != dto.ModalDrafting {
		return dto.DealDraft{}, false
	}
	return c.draft, true
}

// EditingID returns the id of the deal being edited, or "" when creating
func (c *BoardController) EditingID() string {
	return c.editingID
}

// DraftError returns the message of the last failed submit
func (c *BoardController) DraftError() string {
	return c.draftErr
}

// SubmitDraft validates the draft, resolves its customer, creates or updates the
// deal and re-fetches the full deal list. On failure the modal stays open with
// the error attached.
func (c *BoardController) SubmitDraft(ctx context.Context) error {
	if c.modal != dto.ModalDrafting {
		return response.NewInvalidStateError("No deal form is open")
	}

	if err := validateDraft(c.draft, c.stages); err != nil {
		return c.failDraft(err)
	}

	var newCustomer *domain.Customer
	customerID := strings.TrimSpace(c.draft.CustomerID)
	if c.draft.CustomerMode == dto.CustomerModeCreateNew {
		customer, err := c.api.CreateCustomer(ctx, c.draft.NewCustomer.ToPayload())
		if err != nil {
			return c.failDraft(err)
		}
		newCustomer = customer
		customerID = customer.ID
		// a retry links the customer that now exists instead of creating another
		c.draft.CustomerMode = dto.CustomerModeLinkExisting
		c.draft.CustomerID = customer.ID
		c.draft.NewCustomer = dto.CustomerDraft{}
		c.logger.Info("Customer created for deal", zap.String("customer_id", customer.ID))
	}

	// the customer exists remotely from here on, so a failure must not hide it
	fail := func(err error) error {
		if newCustomer != nil {
			c.addCustomer(*newCustomer)
		}
		return c.failDraft(err)
	}

	payload := c.draft.ToPayload(customerID)
	if c.editingID == "" {
		created, err := c.api.CreateDeal(ctx, payload)
		c.metrics.RecordDealMutation("create", err)
		if err != nil {
			return fail(err)
		}
		if created.ID != "" {
			// a retry after a failed re-fetch updates instead of duplicating
			c.editingID = created.ID
		}
		c.logger.Info("Deal created", zap.String("deal_id", created.ID))
	} else {
		_, err := c.api.UpdateDeal(ctx, c.editingID, payload)
		c.metrics.RecordDealMutation("update", err)
		if err != nil {
			return fail(err)
		}
		c.logger.Info("Deal updated", zap.String("deal_id", c.editingID))
	}

	deals, customers, err := c.fetch(ctx, newCustomer != nil)
	if err != nil {
		return fail(err)
	}
	c.replaceDeals(deals)
	if newCustomer != nil {
		c.customers = customers
	}

	c.CloseModal()
	return nil
}

// addCustomer appends a customer the local list does not know yet
func (c *BoardController) addCustomer(customer domain.Customer) {
	for _, existing := range c.customers {
		if existing.ID == customer.ID {
			return
		}
	}
	c.customers = append(c.customers, customer)
}

func (c *BoardController) failDraft(err error) error {
	c.draftErr = response.MessageOf(err)
	c.logger.Warn("Deal form submit failed",
		zap.String("editing_id", c.editingID),
		zap.String("code", response.CodeOf(err)),
		zap.Error(err),
	)
	return err
}

// DeleteDeal deletes a deal after confirmation and re-fetches the deal list.
// If the delete fails the lists are left untouched.
func (c *BoardController) DeleteDeal(ctx context.Context, id string) error {
	deal, ok := c.findDeal(id)
	if !ok {
		return response.NewNotFoundError("Deal not found", id)
	}
	if c.confirm == nil || !c.confirm.ConfirmDelete(deal) {
		return response.NewValidationError("Deletion was not confirmed", id)
	}

	err := c.api.DeleteDeal(ctx, id)
	c.metrics.RecordDealMutation("delete", err)
	if err != nil {
		c.logger.Warn("Failed to delete deal", zap.String("deal_id", id), zap.Error(err))
		return err
	}
	c.logger.Info("Deal deleted", zap.String("deal_id", id))

	deals, _, err := c.fetch(ctx, false)
	if err != nil {
		return err
	}
	c.replaceDeals(deals)
	return nil
}

// View returns a snapshot of everything the render layer needs
func (c *BoardController) View() dto.BoardView {
	filtered := c.FilteredDeals()

	view := dto.BoardView{
		Mode:              c.viewMode,
		SearchQuery:       c.searchQuery,
		Deals:             filtered,
		Customers:         c.Customers(),
		Stats:             ComputeSummaryStats(c.deals),
		Revenue:           BucketRevenueByPeriod(c.deals, c.periodKey, c.now()),
		StageDistribution: StageDistribution(c.deals),
		Priorities:        PriorityBreakdown(c.deals),
		OpenMenuID:        c.openMenuID,
		SelectedID:        c.selectedID,
		Modal: dto.ModalView{
			State:     c.modal,
			EditingID: c.editingID,
			Error:     c.draftErr,
		},
	}
	if c.viewMode == dto.ViewModeBoard {
		view.Columns = BoardColumns(filtered, c.stages)
	}
	if c.modal == dto.ModalDrafting {
		draft := c.draft
		view.Modal.Draft = &draft
	}
	return view
}

func (c *BoardController) findDeal(id string) (domain.Deal, bool) {
	for _, deal := range c.deals {
		if deal.ID == id {
			return deal, true
		}
	}
	return domain.Deal{}, false
}

func (c *BoardController) hasDeal(id string) bool {
	_, ok := c.findDeal(id)
	return ok
}

// asNetworkError keeps AppErrors and wraps everything else (timeouts, cancellation)
func asNetworkError(err error) error {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return response.NewNetworkError("Loading the board timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return response.NewNetworkError("Loading the board was canceled", err)
	}
	return response.NewNetworkError("Failed to load the board", err)
}
