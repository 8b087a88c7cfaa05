package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deal-board/internal/dto"
	"deal-board/internal/response"
	"deal-board/internal/service"
)

type BoardHandler struct {
	session service.BoardSession
}

func NewBoardHandler(session service.BoardSession) *BoardHandler {
	return &BoardHandler{
		session: session,
	}
}

// GetBoard returns the full board snapshot
// GET /board
func (h *BoardHandler) GetBoard(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.session.View())
}

// GetDeals lists deals, filtered by ?q= or the session search when absent
// GET /deals
func (h *BoardHandler) GetDeals(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.session.Deals(c.Query("q")))
}

// GetStats returns the summary statistics
// GET /stats
func (h *BoardHandler) GetStats(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.session.Stats())
}

// GetRevenue returns the won/lost revenue per period
// GET /revenue
func (h *BoardHandler) GetRevenue(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.session.Revenue())
}

// Reload re-fetches deals and customers from the CRM API
// POST /reload
func (h *BoardHandler) Reload(c *gin.Context) {
	view, err := h.session.Reload(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}

// SetViewMode switches between board and list
// PUT /view-mode
func (h *BoardHandler) SetViewMode(c *gin.Context) {
	var req dto.ViewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	view, err := h.session.SetViewMode(req.Mode)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}

// SetSearch sets the search filter
// PUT /search
func (h *BoardHandler) SetSearch(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	response.SendSuccess(c, http.StatusOK, h.session.SetSearch(req.Query))
}

// ToggleMenu opens or closes a deal's action menu
// POST /menu/:id
func (h *BoardHandler) ToggleMenu(c *gin.Context) {
	view, err := h.session.ToggleMenu(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}

// SelectDeal opens a deal for viewing
// POST /select/:id
func (h *BoardHandler) SelectDeal(c *gin.Context) {
	deal, err := h.session.SelectDeal(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, deal)
}

// ClearSelection closes the deal view
// DELETE /select
func (h *BoardHandler) ClearSelection(c *gin.Context) {
	h.session.ClearSelection()
	c.Status(http.StatusNoContent)
}

// OpenCreate opens the modal with a blank draft
// POST /modal/create
func (h *BoardHandler) OpenCreate(c *gin.Context) {
	modal, err := h.session.OpenCreate()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, modal)
}

// OpenEdit opens the modal for an existing deal
// POST /modal/edit/:id
func (h *BoardHandler) OpenEdit(c *gin.Context) {
	modal, err := h.session.OpenEdit(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, modal)
}

// PatchDraft applies a partial edit to the open draft. Unknown fields are rejected.
// PATCH /modal/draft
func (h *BoardHandler) PatchDraft(c *gin.Context) {
	patch, err := dto.DecodeDealDraftPatch(c.Request.Body)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	modal, err := h.session.PatchDraft(patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, modal)
}

// SubmitDraft creates or updates the deal and returns the refreshed board
// POST /modal/submit
func (h *BoardHandler) SubmitDraft(c *gin.Context) {
	view, err := h.session.SubmitDraft(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}

// CloseModal discards the draft
// DELETE /modal
func (h *BoardHandler) CloseModal(c *gin.Context) {
	response.SendSuccess(c, http.StatusOK, h.session.CloseModal())
}

// DeleteDeal deletes a deal; ?confirm=true is required
// DELETE /deals/:id
func (h *BoardHandler) DeleteDeal(c *gin.Context) {
	if c.Query("confirm") != "true" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Deletion requires confirm=true")
		return
	}

	view, err := h.session.DeleteDeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}
