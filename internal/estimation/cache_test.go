package estimation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Estimate), args.Error(1)
}

func TestCachingEstimatorServesRepeatRequests(t *testing.T) {
	defer goleak.VerifyNone(t)

	cache := NewCache(time.Minute)
	defer cache.Stop()

	next := new(MockEstimator)
	ctx := context.Background()
	req := Request{Classification: map[string]interface{}{"projectType": "house"}}
	next.On("Estimate", ctx, req).Return(&Estimate{Description: "home", EstimatedCost: 10}, nil).Once()

	estimator := NewCachingEstimator(next, cache)

	first, err := estimator.Estimate(ctx, req)
	require.NoError(t, err)
	first.Description = "mutated by caller"

	second, err := estimator.Estimate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "home", second.Description)
	assert.Equal(t, 1, cache.Size())

	next.AssertExpectations(t)
}

func TestCachingEstimatorDoesNotCacheErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	cache := NewCache(time.Minute)
	defer cache.Stop()

	next := new(MockEstimator)
	ctx := context.Background()
	next.On("Estimate", ctx, Request{}).Return(nil, errors.New("boom")).Twice()

	estimator := NewCachingEstimator(next, cache)
	_, err := estimator.Estimate(ctx, Request{})
	assert.Error(t, err)
	_, err = estimator.Estimate(ctx, Request{})
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Size())

	next.AssertExpectations(t)
}

func TestCacheExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	cache := NewCache(time.Millisecond)
	defer cache.Stop()

	cache.Set("k", &Estimate{Description: "x"})
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("k")
	assert.False(t, ok)

	cache.removeExpired()
	assert.Equal(t, 0, cache.Size())
}
