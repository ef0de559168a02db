package wizard

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"buildmarket/project-wizard/wizard-backend/internal/estimation"
	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
)

// MockEstimator is a mock implementation of estimation.Estimator
type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Estimate(ctx context.Context, req estimation.Request) (*estimation.Estimate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimation.Estimate), args.Error(1)
}

// MockCreator is a mock implementation of projectapi.Creator
type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateProject(ctx context.Context, req projectapi.ProjectRequest) (*projectapi.ProjectCreated, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projectapi.ProjectCreated), args.Error(1)
}

// MockReceipts is a mock implementation of receipts.Repository
type MockReceipts struct {
	mock.Mock
}

func (m *MockReceipts) Create(ctx context.Context, receipt *receipts.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceipts) ListByUser(ctx context.Context, userID string, limit int) ([]receipts.Receipt, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receipts.Receipt), args.Error(1)
}

// eventRecorder collects notifications for assertions
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// validBasics fills every required basics field
func validBasics() DraftPatch {
	return DraftPatch{Basics: &BasicsPatch{
		ProjectType:   strPtr("single-family"),
		SquareFootage: intPtr(2400),
		Stories:       intPtr(2),
		Bedrooms:      intPtr(4),
		Bathrooms:     intPtr(3),
	}}
}
