package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/metrics"
	"deal-board/internal/service"
)

// stubCRMClient serves a fixed deal list
type stubCRMClient struct {
	deals []domain.Deal
}

func (s *stubCRMClient) ListDeals(ctx context.Context) ([]domain.Deal, error) {
	return s.deals, nil
}

func (s *stubCRMClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return []domain.Customer{{ID: "c1", FirstName: "Ada"}}, nil
}

func (s *stubCRMClient) CreateDeal(ctx context.Context, payload dto.DealPayload) (*domain.Deal, error) {
	deal := domain.Deal{ID: "d9", Title: payload.Title, Value: payload.Value, Stage: payload.Stage, CustomerID: payload.CustomerID}
	s.deals = append(s.deals, deal)
	return &deal, nil
}

func (s *stubCRMClient) UpdateDeal(ctx context.Context, id string, payload dto.DealPayload) (*domain.Deal, error) {
	return &domain.Deal{ID: id}, nil
}

func (s *stubCRMClient) DeleteDeal(ctx context.Context, id string) error {
	return nil
}

func (s *stubCRMClient) CreateCustomer(ctx context.Context, payload dto.CustomerPayload) (*domain.Customer, error) {
	return &domain.Customer{ID: "c2"}, nil
}

// setupTestRouter creates a router over a loaded session with an isolated registry
func setupTestRouter(t *testing.T, basePath string) (*Config, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	logger := zap.NewNop()
	m := metrics.NewWithRegistry(registry, logger)

	api := &stubCRMClient{deals: []domain.Deal{
		{ID: "d1", Title: "Q3 renewal", Value: "1000", Stage: domain.StageNew},
		{ID: "d2", Title: "Pilot", Value: "500", Stage: domain.StageClosedWon},
	}}
	controller := service.NewBoardController(api, service.ControllerOptions{Confirmer: service.AlwaysConfirm}, m, logger)
	require.NoError(t, controller.LoadAll(context.Background()))

	return &Config{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       registry,
		Session:        service.NewBoardSession(controller, logger),
		BasePath:       basePath,
		AllowedOrigins: []string{"http://localhost:5173"},
	}, registry
}

func TestMetricsEndpoint_RootPath(t *testing.T) {
	cfg, _ := setupTestRouter(t, "")
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	body := w.Body.String()
	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "# TYPE")
	assert.Contains(t, body, "deal_board_deals_total 2")
	assert.Contains(t, body, "deal_board_pipeline_value 1500")
}

func TestMetricsEndpoint_WithBasePath(t *testing.T) {
	basePath := "/api/pipeline"
	cfg, _ := setupTestRouter(t, basePath)
	router := Setup(*cfg)

	for _, path := range []string{"/metrics", basePath + "/metrics", "/health", basePath + "/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMetricsEndpoint_ContainsPipelineMetrics(t *testing.T) {
	_, registry := setupTestRouter(t, "")

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	metricNames := make(map[string]bool)
	for _, mf := range metricFamilies {
		metricNames[mf.GetName()] = true
	}

	expected := []string{
		"deal_board_pipeline_value",
		"deal_board_active_deals",
		"deal_board_win_rate_percent",
		"deal_board_average_deal_size",
		"deal_board_deals_total",
		"deal_board_board_loads_total",
	}
	for _, name := range expected {
		assert.True(t, metricNames[name], "Registry should contain metric: %s", name)
	}
}

func TestBoardRoutes_EndToEnd(t *testing.T) {
	cfg, _ := setupTestRouter(t, "/api")
	router := Setup(*cfg)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var board struct {
		Data dto.BoardView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Data.Columns, 6)
	assert.Len(t, board.Data.Deals, 2)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/modal/create", "").Code)
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "/api/modal/create", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, "/api/modal/draft", `{"title":"Expansion","value":"250","customerId":"c1"}`).Code)

	w = do(http.MethodPost, "/api/modal/submit", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Data.Deals, 3)
	assert.Equal(t, dto.ModalClosed, board.Data.Modal.State)

	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "/api/modal/submit", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/api/menu/missing", "").Code)

	w = do(http.MethodGet, "/api/deals?q=q3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var deals struct {
		Data []domain.Deal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deals))
	require.Len(t, deals.Data, 1)
	assert.Equal(t, "d1", deals.Data[0].ID)
}
