package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/metrics"
	"deal-board/internal/response"
)

// maxErrorBody caps how much of a failed response body is kept in error details
const maxErrorBody = 512

// CRMClient defines the CRM API endpoints the board consumes
type CRMClient interface {
	ListDeals(ctx context.Context) ([]domain.Deal, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	CreateDeal(ctx context.Context, payload dto.DealPayload) (*domain.Deal, error)
	UpdateDeal(ctx context.Context, id string, payload dto.DealPayload) (*domain.Deal, error)
	DeleteDeal(ctx context.Context, id string) error
	CreateCustomer(ctx context.Context, payload dto.CustomerPayload) (*domain.Customer, error)
}

// AuthClient defines the pass-through auth endpoints
type AuthClient interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResult, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.AuthResult, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.AuthResult, error)
}

// crmClient implements CRMClient and AuthClient over HTTP/JSON
type crmClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenStore
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Client is the concrete client returned by NewCRMClient
type Client interface {
	CRMClient
	AuthClient
}

// NewCRMClient creates a new CRM API client
func NewCRMClient(baseURL string, timeout time.Duration, tokens *TokenStore, logger *zap.Logger, m *metrics.Metrics) Client {
	if tokens == nil {
		tokens = NewTokenStore("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &crmClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens:  tokens,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// ListDeals fetches every deal
func (c *crmClient) ListDeals(ctx context.Context) ([]domain.Deal, error) {
	raw, err := c.do(ctx, http.MethodGet, "/deals", nil)
	if err != nil {
		return nil, err
	}
	return DecodeDeals(raw)
}

// ListCustomers fetches every customer
func (c *crmClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	raw, err := c.do(ctx, http.MethodGet, "/customers", nil)
	if err != nil {
		return nil, err
	}
	return DecodeCustomers(raw)
}

// CreateDeal creates a deal and returns it with its assigned id
func (c *crmClient) CreateDeal(ctx context.Context, payload dto.DealPayload) (*domain.Deal, error) {
	raw, err := c.do(ctx, http.MethodPost, "/deals", payload)
	if err != nil {
		return nil, err
	}
	var deal domain.Deal
	if err := decodeOne(raw, &deal); err != nil {
		return nil, response.NewInvalidInputError("Malformed deal in create response", err.Error())
	}
	return &deal, nil
}

// UpdateDeal replaces the editable fields of a deal
func (c *crmClient) UpdateDeal(ctx context.Context, id string, payload dto.DealPayload) (*domain.Deal, error) {
	raw, err := c.do(ctx, http.MethodPut, "/deals/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	var deal domain.Deal
	if len(bytes.TrimSpace(raw)) == 0 {
		// some deployments answer 204 on update
		deal.ID = id
		return &deal, nil
	}
	if err := decodeOne(raw, &deal); err != nil {
		return nil, response.NewInvalidInputError("Malformed deal in update response", err.Error())
	}
	return &deal, nil
}

// DeleteDeal deletes a deal; no body is expected
func (c *crmClient) DeleteDeal(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/deals/"+url.PathEscape(id), nil)
	return err
}

// CreateCustomer creates a customer and returns it with its assigned id
func (c *crmClient) CreateCustomer(ctx context.Context, payload dto.CustomerPayload) (*domain.Customer, error) {
	raw, err := c.do(ctx, http.MethodPost, "/customers", payload)
	if err != nil {
		return nil, err
	}
	var customer domain.Customer
	if err := decodeOne(raw, &customer); err != nil {
		return nil, response.NewInvalidInputError("Malformed customer in create response", err.Error())
	}
	return &customer, nil
}

// do sends one authenticated request and returns the response body for 2xx answers
func (c *crmClient) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	return c.send(ctx, method, path, body, true)
}

func (c *crmClient) send(ctx context.Context, method, path string, body interface{}, withToken bool) ([]byte, error) {
	endpoint := c.baseURL + path

	if withToken && c.tokens.Expired(c.now()) {
		c.tokens.Clear()
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Session expired, please log in again", "")
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			c.logger.Error("Failed to marshal request body",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to encode request", err.Error())
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create request", err.Error())
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); withToken && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(endpoint, method, statusCode, duration, err)

	if err != nil {
		c.logger.Error("CRM API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, response.NewNetworkError("Could not reach the CRM service", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, response.NewNetworkError("Failed to read CRM response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("CRM API request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
		)
		return respBody, nil
	}

	c.logger.Warn("CRM API returned non-success status",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
	)
	return nil, statusError(resp.StatusCode, respBody)
}

// statusError maps a non-2xx answer onto the error taxonomy
func statusError(statusCode int, body []byte) error {
	message := apiMessage(body)
	details := fmt.Sprintf("status=%d", statusCode)

	switch statusCode {
	case http.StatusNotFound:
		if message == "" {
			message = "Deal or customer no longer exists"
		}
		return response.NewNotFoundError(message, details)
	case http.StatusUnauthorized:
		if message == "" {
			message = "Not logged in"
		}
		return response.NewAppError(response.ErrCodeUnauthorized, message, details)
	}

	if message == "" {
		message = fmt.Sprintf("CRM service returned %d", statusCode)
	}
	appErr := response.NewNetworkError(message, nil)
	appErr.Details = details
	return appErr
}

// apiMessage extracts {"message": "..."} or {"error": "..."} from an error body
func apiMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		text = truncateUTF8(text, maxErrorBody)
		if strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	if payload.Message != "" {
		return payload.Message
	}
	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return s
	}
	return ""
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
