package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/coindash/market-dashboard/config"
	"github.com/coindash/market-dashboard/metrics"
)

// MarketsAPI is the part of the fetch client the snapshot cache needs
type MarketsAPI interface {
	FetchMarketSnapshot(ctx context.Context) (MarketSnapshot, error)
	Healthy() bool
}

// ChartAPI is the part of the fetch client the series assembler needs
type ChartAPI interface {
	FetchMarketChart(ctx context.Context, coinID string, window Window) (HistoricalSeries, error)
	Healthy() bool
}

// Client fetches market data from the CoinGecko API.
//
// Every failure is returned as a *FetchError together with an empty
// result value, so callers can treat "no data" uniformly
type Client struct {
	config          *config.Config
	httpClient      *HTTPClientWithRetry
	logPrefix       string
	successfulFetch atomic.Bool
}

// NewClient creates a fetch client reporting metrics under serviceName
func NewClient(cfg *config.Config, serviceName string) *Client {
	opts := DefaultHTTPClientOptions()
	opts.RequestTimeout = cfg.Fetcher.GetRequestTimeout()
	opts.RetryBackoff = cfg.Fetcher.GetRetryBackoff()
	opts.LogPrefix = "CoinGecko-" + serviceName

	metricsWriter := metrics.NewMetricsWriter(serviceName)
	limiter := NewRateLimiter(cfg.Fetcher.RateLimitPerMinute)

	return &Client{
		config:     cfg,
		httpClient: NewHTTPClientWithRetry(opts, metricsWriter, limiter),
		logPrefix:  opts.LogPrefix,
	}
}

// Healthy reports whether at least one fetch has succeeded
func (c *Client) Healthy() bool {
	return c.successfulFetch.Load()
}

func (c *Client) baseURL() string {
	if c.config.OverrideCoingeckoPublicURL != "" {
		return c.config.OverrideCoingeckoPublicURL
	}
	return COINGECKO_PUBLIC_URL
}

// FetchMarketSnapshot fetches the ranked market listing with the fixed
// parameters: usd, market-cap order, one page, sparkline included
func (c *Client) FetchMarketSnapshot(ctx context.Context) (MarketSnapshot, error) {
	builder := NewMarketsRequestBuilder(c.baseURL()).
		WithPerPage(c.config.Markets.GetPerPage())
	builder.WithCurrency(c.config.Markets.GetCurrency()).
		WithApiKey(c.config.APIKey)

	req, err := builder.Build()
	if err != nil {
		return MarketSnapshot{}, &FetchError{Kind: KindTransport, Err: err}
	}

	body, err := c.httpClient.ExecuteRequest(req.WithContext(ctx))
	if err != nil {
		log.Printf("%s: markets fetch failed: %v", c.logPrefix, err)
		return MarketSnapshot{}, err
	}

	var snapshot MarketSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		log.Printf("%s: error parsing markets response: %v", c.logPrefix, err)
		return MarketSnapshot{}, &FetchError{Kind: KindDecode, Err: err}
	}

	if err := snapshot.Validate(); err != nil {
		log.Printf("%s: invalid markets response: %v", c.logPrefix, err)
		return MarketSnapshot{}, &FetchError{Kind: KindDecode, Err: err}
	}

	log.Printf("%s: fetched market snapshot with %d coins", c.logPrefix, len(snapshot))
	c.successfulFetch.Store(true)

	return snapshot, nil
}

// FetchMarketChart fetches the historical price series for one coin and
// window. Not valid for the sparkline-backed 1h window
func (c *Client) FetchMarketChart(ctx context.Context, coinID string, window Window) (HistoricalSeries, error) {
	empty := HistoricalSeries{CoinID: coinID, Window: window, Points: []PricePoint{}}

	if coinID == "" {
		return empty, &FetchError{Kind: KindDecode, Err: fmt.Errorf("coin id is required")}
	}
	if window.UsesSparkline() {
		return empty, &FetchError{Kind: KindDecode,
			Err: fmt.Errorf("window %s is served from the sparkline, not the chart endpoint", window)}
	}

	builder := NewMarketChartRequestBuilder(c.baseURL(), coinID).
		WithDays(window.Days()).
		WithInterval(window.Interval())
	builder.WithCurrency(c.config.Markets.GetCurrency()).
		WithApiKey(c.config.APIKey)

	req, err := builder.Build()
	if err != nil {
		return empty, &FetchError{Kind: KindTransport, Err: err}
	}

	body, err := c.httpClient.ExecuteRequest(req.WithContext(ctx))
	if err != nil {
		log.Printf("%s: market chart fetch failed for %s/%s: %v", c.logPrefix, coinID, window, err)
		return empty, err
	}

	var chart marketChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		log.Printf("%s: error parsing market chart response for %s: %v", c.logPrefix, coinID, err)
		return empty, &FetchError{Kind: KindDecode, Err: err}
	}

	series := HistoricalSeries{
		CoinID: coinID,
		Window: window,
		Points: chart.Prices,
	}
	if series.Points == nil {
		series.Points = []PricePoint{}
	}

	log.Printf("%s: fetched %d points for %s/%s", c.logPrefix, len(series.Points), coinID, window)
	c.successfulFetch.Store(true)

	return series, nil
}
