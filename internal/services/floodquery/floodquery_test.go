package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// MockTideRepo реализует интерфейс TideRepository
type MockTideRepo struct {
	mock.Mock
}

func (m *MockTideRepo) FindFloodPredictions(ctx context.Context, from time.Time, thresholdFt float64) ([]*models.TidePrediction, error) {
	args := m.Called(ctx, from, thresholdFt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TidePrediction), args.Error(1)
}

// MockCache реализует интерфейс Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fixedNow 2023-10-05 12:00 по тихоокеанскому летнему времени
func fixedNow(t *testing.T) (clockwork.Clock, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation(models.StationTimezone)
	require.NoError(t, err)
	wall := time.Date(2023, 10, 5, 12, 0, 0, 0, loc)
	naive := time.Date(2023, 10, 5, 12, 0, 0, 0, time.UTC)
	return clockwork.NewFakeClockAt(wall), naive
}

func TestUpcoming_QueriesRepoOnCacheMiss(t *testing.T) {
	repo := new(MockTideRepo)
	cache := new(MockCache)
	clock, naive := fixedNow(t)

	predictions := []*models.TidePrediction{
		{Time: naive.Add(2 * time.Hour), HeightFt: 6.5, TideType: models.TideTypeHigh},
		{Time: naive.Add(26 * time.Hour), HeightFt: 7.01, TideType: models.TideTypeHigh},
	}
	cache.On("Get", CacheKey, mock.Anything).Return(false, nil)
	repo.On("FindFloodPredictions", mock.Anything, naive, models.FloodThresholdFt).
		Return(predictions, nil)
	cache.On("Set", CacheKey, mock.Anything, cacheTTL).Return(nil)

	svc, err := NewFloodQueryService(repo, cache, clock, newTestLogger())
	require.NoError(t, err)

	events, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Thursday, October 5 at 2:00PM", events[0].DisplayTime)
	assert.Equal(t, "6.50", events[0].DisplayHeight)
	assert.Equal(t, "7.01", events[1].DisplayHeight)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpcoming_CacheHitRefiltersPastEvents(t *testing.T) {
	repo := new(MockTideRepo)
	cache := new(MockCache)
	clock, naive := fixedNow(t)

	cached := []models.FloodEvent{
		models.NewFloodEvent(naive.Add(-1*time.Hour), 6.8),
		models.NewFloodEvent(naive.Add(3*time.Hour), 6.6),
	}
	cache.On("Get", CacheKey, mock.Anything).Run(func(args mock.Arguments) {
		raw, err := json.Marshal(cached)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, args.Get(1)))
	}).Return(true, nil)

	svc, err := NewFloodQueryService(repo, cache, clock, newTestLogger())
	require.NoError(t, err)

	events, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "6.60", events[0].DisplayHeight)
	repo.AssertNotCalled(t, "FindFloodPredictions", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpcoming_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := new(MockTideRepo)
	cache := new(MockCache)
	clock, naive := fixedNow(t)

	cache.On("Get", CacheKey, mock.Anything).Return(false, errors.New("redis: connection refused"))
	repo.On("FindFloodPredictions", mock.Anything, naive, models.FloodThresholdFt).
		Return([]*models.TidePrediction{}, nil)
	cache.On("Set", CacheKey, mock.Anything, cacheTTL).Return(errors.New("redis: connection refused"))

	svc, err := NewFloodQueryService(repo, cache, clock, newTestLogger())
	require.NoError(t, err)

	events, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	repo.AssertExpectations(t)
}

func TestUpcoming_RepoError(t *testing.T) {
	repo := new(MockTideRepo)
	cache := new(MockCache)
	clock, _ := fixedNow(t)

	cache.On("Get", CacheKey, mock.Anything).Return(false, nil)
	repo.On("FindFloodPredictions", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	svc, err := NewFloodQueryService(repo, cache, clock, newTestLogger())
	require.NoError(t, err)

	_, err = svc.Upcoming(context.Background())
	require.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
