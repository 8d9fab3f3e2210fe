package coingecko

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Base URL for the public API
	COINGECKO_PUBLIC_URL = "https://api.coingecko.com"

	MARKETS_API_PATH              = "/api/v3/coins/markets"
	MARKET_CHART_API_PATH_PATTERN = "/api/v3/coins/%s/market_chart"
)

// joinURL safely combines a base URL with a path
func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// RequestBuilder implements the Builder pattern for CoinGecko API requests
type RequestBuilder struct {
	baseURL   string
	apiPath   string
	params    map[string]string
	apiKey    string
	userAgent string
	headers   map[string]string
}

// NewRequestBuilder creates a new base request builder for a CoinGecko endpoint
func NewRequestBuilder(baseURL, apiPath string) *RequestBuilder {
	rb := &RequestBuilder{
		baseURL:   baseURL,
		apiPath:   apiPath,
		params:    make(map[string]string),
		headers:   make(map[string]string),
		userAgent: "Mozilla/5.0 Market-Dashboard",
	}

	rb.headers["Accept"] = "application/json"

	return rb
}

// With adds a custom parameter to the URL query
func (rb *RequestBuilder) With(key, value string) *RequestBuilder {
	rb.params[key] = value
	return rb
}

// WithCurrency adds the vs_currency parameter
func (rb *RequestBuilder) WithCurrency(currency string) *RequestBuilder {
	if currency != "" {
		rb.params["vs_currency"] = currency
	}
	return rb
}

// WithApiKey sets the demo API key, sent as x_cg_demo_api_key
func (rb *RequestBuilder) WithApiKey(apiKey string) *RequestBuilder {
	rb.apiKey = apiKey
	return rb
}

// BuildURL builds the complete URL for the request
func (rb *RequestBuilder) BuildURL() string {
	fullPath := joinURL(rb.baseURL, rb.apiPath)

	query := url.Values{}
	for key, value := range rb.params {
		query.Add(key, value)
	}

	if rb.apiKey != "" {
		query.Add("x_cg_demo_api_key", rb.apiKey)
	}

	queryString := query.Encode()
	if queryString != "" {
		return fmt.Sprintf("%s?%s", fullPath, queryString)
	}
	return fullPath
}

// Build creates an http.Request object
func (rb *RequestBuilder) Build() (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, rb.BuildURL(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", rb.userAgent)
	for key, value := range rb.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// MarketsRequestBuilder builds /coins/markets requests
type MarketsRequestBuilder struct {
	*RequestBuilder
}

// NewMarketsRequestBuilder creates a request builder for the markets
// endpoint with the fixed listing parameters: USD pricing, market-cap
// ordering, first page, 7-day sparkline included
func NewMarketsRequestBuilder(baseURL string) *MarketsRequestBuilder {
	rb := &MarketsRequestBuilder{
		RequestBuilder: NewRequestBuilder(baseURL, MARKETS_API_PATH),
	}

	rb.WithCurrency("usd")
	rb.With("order", "market_cap_desc")
	rb.With("page", "1")
	rb.With("sparkline", "true")

	return rb
}

// WithPerPage adds the per_page parameter
func (rb *MarketsRequestBuilder) WithPerPage(perPage int) *MarketsRequestBuilder {
	if perPage > 0 {
		rb.With("per_page", strconv.Itoa(perPage))
	}
	return rb
}

// MarketChartRequestBuilder builds /coins/{id}/market_chart requests
type MarketChartRequestBuilder struct {
	*RequestBuilder
	coinID string
}

// NewMarketChartRequestBuilder creates a request builder for the market
// chart endpoint of one coin
func NewMarketChartRequestBuilder(baseURL, coinID string) *MarketChartRequestBuilder {
	apiPath := fmt.Sprintf(MARKET_CHART_API_PATH_PATTERN, url.PathEscape(coinID))

	rb := &MarketChartRequestBuilder{
		RequestBuilder: NewRequestBuilder(baseURL, apiPath),
		coinID:         coinID,
	}

	rb.WithCurrency("usd")

	return rb
}

// WithDays adds the days parameter
func (rb *MarketChartRequestBuilder) WithDays(days string) *MarketChartRequestBuilder {
	if days != "" {
		rb.With("days", days)
	}
	return rb
}

// WithInterval adds the interval parameter
func (rb *MarketChartRequestBuilder) WithInterval(interval string) *MarketChartRequestBuilder {
	if interval != "" {
		rb.With("interval", interval)
	}
	return rb
}
