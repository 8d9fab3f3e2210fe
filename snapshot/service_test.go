package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coindash/market-dashboard/cache"
	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/config"
)

// MockMarketsAPI implements coingecko.MarketsAPI for testing
type MockMarketsAPI struct {
	mock.Mock
}

func (m *MockMarketsAPI) FetchMarketSnapshot(ctx context.Context) (coingecko.MarketSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(coingecko.MarketSnapshot), args.Error(1)
}

func (m *MockMarketsAPI) Healthy() bool {
	args := m.Called()
	return args.Bool(0)
}

func testSnapshot() coingecko.MarketSnapshot {
	return coingecko.MarketSnapshot{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth"},
	}
}

func newTestService(apiClient coingecko.MarketsAPI, ttl time.Duration) *Service {
	cfg := &config.Config{
		Markets: config.MarketsConfig{TTL: ttl},
	}
	byteCache := cache.NewByteCache(ttl, time.Minute)
	return NewService(apiClient, byteCache, cfg)
}

func TestService_StartValidatesDependencies(t *testing.T) {
	apiClient := new(MockMarketsAPI)

	service := newTestService(apiClient, time.Minute)
	assert.NoError(t, service.Start(context.Background()))

	missing := NewService(nil, nil, &config.Config{})
	assert.Error(t, missing.Start(context.Background()))
}

func TestGetSnapshot_CachesWithinTTL(t *testing.T) {
	apiClient := new(MockMarketsAPI)
	apiClient.On("FetchMarketSnapshot", mock.Anything).Return(testSnapshot(), nil).Once()

	service := newTestService(apiClient, time.Minute)

	first, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)

	second, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)

	// Identical values, exactly one upstream fetch
	assert.Equal(t, first, second)
	apiClient.AssertNumberOfCalls(t, "FetchMarketSnapshot", 1)
}

func TestGetSnapshot_RefetchesAfterExpiry(t *testing.T) {
	apiClient := new(MockMarketsAPI)
	apiClient.On("FetchMarketSnapshot", mock.Anything).Return(testSnapshot(), nil).Twice()

	service := newTestService(apiClient, 30*time.Millisecond)

	_, err := service.GetSnapshot(context.Background())
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = service.GetSnapshot(context.Background())
	require.NoError(t, err)

	apiClient.AssertNumberOfCalls(t, "FetchMarketSnapshot", 2)
}

func TestGetSnapshot_FetchFailureReturnsEmpty(t *testing.T) {
	fetchErr := &coingecko.FetchError{Kind: coingecko.KindTimeout, Err: errors.New("deadline")}

	apiClient := new(MockMarketsAPI)
	apiClient.On("FetchMarketSnapshot", mock.Anything).Return(coingecko.MarketSnapshot{}, fetchErr)

	service := newTestService(apiClient, time.Minute)

	snap, err := service.GetSnapshot(context.Background())
	require.Error(t, err)
	assert.Empty(t, snap)

	// A failure is not cached: the next read fetches again
	_, _ = service.GetSnapshot(context.Background())
	apiClient.AssertNumberOfCalls(t, "FetchMarketSnapshot", 2)
}

func TestGetSnapshot_ConcurrentReadersSingleRefresh(t *testing.T) {
	apiClient := new(MockMarketsAPI)
	apiClient.On("FetchMarketSnapshot", mock.Anything).
		Return(testSnapshot(), nil).
		Once().
		Run(func(args mock.Arguments) { time.Sleep(20 * time.Millisecond) })

	service := newTestService(apiClient, time.Minute)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := service.GetSnapshot(context.Background())
			done <- err
		}()
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	apiClient.AssertNumberOfCalls(t, "FetchMarketSnapshot", 1)
}

func TestRefresh_EmitsUpdateEvent(t *testing.T) {
	apiClient := new(MockMarketsAPI)
	apiClient.On("FetchMarketSnapshot", mock.Anything).Return(testSnapshot(), nil)

	service := newTestService(apiClient, time.Minute)

	sub := service.SubscribeOnUpdate()
	defer sub.Cancel()

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)

	select {
	case <-sub.Chan():
	case <-time.After(time.Second):
		t.Fatal("expected update event after refresh")
	}
}

func TestService_Healthy(t *testing.T) {
	apiClient := new(MockMarketsAPI)
	apiClient.On("Healthy").Return(true)

	service := newTestService(apiClient, time.Minute)
	assert.True(t, service.Healthy())
	apiClient.AssertExpectations(t)
}
