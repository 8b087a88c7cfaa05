package service

import (
	"context"
	"sync"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
)

// MockCRMClient is a mock implementation of client.CRMClient that counts calls
type MockCRMClient struct {
	ListDealsFunc      func(ctx context.Context) ([]domain.Deal, error)
	ListCustomersFunc  func(ctx context.Context) ([]domain.Customer, error)
	CreateDealFunc     func(ctx context.Context, payload dto.DealPayload) (*domain.Deal, error)
	UpdateDealFunc     func(ctx context.Context, id string, payload dto.DealPayload) (*domain.Deal, error)
	DeleteDealFunc     func(ctx context.Context, id string) error
	CreateCustomerFunc func(ctx context.Context, payload dto.CustomerPayload) (*domain.Customer, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockCRMClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how often name was called
func (m *MockCRMClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// TotalCalls returns the number of calls across all methods
func (m *MockCRMClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MockCRMClient) ListDeals(ctx context.Context) ([]domain.Deal, error) {
	m.record("ListDeals")
	if m.ListDealsFunc != nil {
		return m.ListDealsFunc(ctx)
	}
	return []domain.Deal{}, nil
}

func (m *MockCRMClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	m.record("ListCustomers")
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx)
	}
	return []domain.Customer{}, nil
}

func (m *MockCRMClient) CreateDeal(ctx context.Context, payload dto.DealPayload) (*domain.Deal, error) {
	m.record("CreateDeal")
	if m.CreateDealFunc != nil {
		return m.CreateDealFunc(ctx, payload)
	}
	return &domain.Deal{ID: "new-deal", Title: payload.Title}, nil
}

func (m *MockCRMClient) UpdateDeal(ctx context.Context, id string, payload dto.DealPayload) (*domain.Deal, error) {
	m.record("UpdateDeal")
	if m.UpdateDealFunc != nil {
		return m.UpdateDealFunc(ctx, id, payload)
	}
	return &domain.Deal{ID: id, Title: payload.Title}, nil
}

func (m *MockCRMClient) DeleteDeal(ctx context.Context, id string) error {
	m.record("DeleteDeal")
	if m.DeleteDealFunc != nil {
		return m.DeleteDealFunc(ctx, id)
	}
	return nil
}

func (m *MockCRMClient) CreateCustomer(ctx context.Context, payload dto.CustomerPayload) (*domain.Customer, error) {
	m.record("CreateCustomer")
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, payload)
	}
	return &domain.Customer{ID: "new-customer", FirstName: payload.FirstName, LastName: payload.LastName}, nil
}
