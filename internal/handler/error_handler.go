package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deal-board/internal/response"
)

// handleServiceError maps service layer errors to appropriate HTTP responses
func handleServiceError(c *gin.Context, err error) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		statusCode := mapErrorCodeToHTTPStatus(appErr.Code)
		response.SendError(c, statusCode, appErr.Code, appErr.Message)
		return
	}

	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeValidation:
		return http.StatusBadRequest
	case response.ErrCodeInvalidState:
		return http.StatusConflict
	case response.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case response.ErrCodeNetwork, response.ErrCodeInvalidInput:
		// the CRM API failed or answered with something unusable
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
