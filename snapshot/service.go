package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/coindash/market-dashboard/cache"
	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/config"
	"github.com/coindash/market-dashboard/events"
	"github.com/coindash/market-dashboard/metrics"
)

const (
	// Cache key for the market snapshot; the listing request parameters
	// are constant, so a single entry is enough
	SNAPSHOT_CACHE_KEY = "markets:snapshot"
)

// Service memoizes the market listing fetch for the configured TTL.
//
// Reads after expiry trigger a synchronous refetch before anything is
// returned; there is no stale-serve. The read-check-refresh sequence is
// guarded by a mutex so concurrent callers cannot start duplicate
// refreshes or observe a torn value
type Service struct {
	apiClient           coingecko.MarketsAPI
	cache               *cache.ByteCache
	config              *config.Config
	subscriptionManager *events.SubscriptionManager

	mu sync.Mutex
}

// NewService creates a snapshot cache service backed by the given cache
func NewService(apiClient coingecko.MarketsAPI, byteCache *cache.ByteCache, cfg *config.Config) *Service {
	return &Service{
		apiClient:           apiClient,
		cache:               byteCache,
		config:              cfg,
		subscriptionManager: events.NewSubscriptionManager(),
	}
}

// Start implements the service lifecycle
func (s *Service) Start(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("cache dependency not provided")
	}
	if s.apiClient == nil {
		return fmt.Errorf("api client dependency not provided")
	}
	return nil
}

// Stop implements the service lifecycle
func (s *Service) Stop() {
	if s.cache != nil {
		s.cache.Delete(SNAPSHOT_CACHE_KEY)
	}
}

// GetSnapshot returns the cached market snapshot, refetching it
// synchronously when the entry is missing or expired. On fetch failure
// an empty snapshot is returned together with the error
func (s *Service) GetSnapshot(ctx context.Context) (coingecko.MarketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, found := s.cache.Get(SNAPSHOT_CACHE_KEY); found {
		var snapshot coingecko.MarketSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			return snapshot, nil
		}
		// Corrupt entry, drop it and refetch
		log.Printf("Snapshot: dropping unreadable cache entry")
		s.cache.Delete(SNAPSHOT_CACHE_KEY)
	}

	return s.refresh(ctx)
}

// Refresh forces a refetch regardless of the cached entry's age
func (s *Service) Refresh(ctx context.Context) (coingecko.MarketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refresh(ctx)
}

// refresh fetches, caches and announces a new snapshot. Callers hold s.mu
func (s *Service) refresh(ctx context.Context) (coingecko.MarketSnapshot, error) {
	snapshot, err := s.apiClient.FetchMarketSnapshot(ctx)
	if err != nil {
		return coingecko.MarketSnapshot{}, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return coingecko.MarketSnapshot{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.cache.Set(SNAPSHOT_CACHE_KEY, data, s.config.Markets.GetTTL())
	metrics.RecordSnapshotRefresh()

	log.Printf("Snapshot: refreshed market snapshot with %d coins, ttl %s",
		len(snapshot), s.config.Markets.GetTTL())

	s.subscriptionManager.Emit(ctx)

	return snapshot, nil
}

// SubscribeOnUpdate returns a subscription fired after each successful refresh
func (s *Service) SubscribeOnUpdate() *events.Subscription {
	return s.subscriptionManager.Subscribe()
}

// Healthy reports whether the upstream client has fetched successfully
func (s *Service) Healthy() bool {
	if s.apiClient == nil {
		return false
	}
	return s.apiClient.Healthy()
}
