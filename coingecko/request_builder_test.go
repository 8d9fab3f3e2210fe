package coingecko

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, rawURL string) (string, url.Values) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestMarketsRequestBuilder_Defaults(t *testing.T) {
	builder := NewMarketsRequestBuilder("https://api.coingecko.com")

	path, query := parseQuery(t, builder.BuildURL())

	assert.Equal(t, "/api/v3/coins/markets", path)
	assert.Equal(t, "usd", query.Get("vs_currency"))
	assert.Equal(t, "market_cap_desc", query.Get("order"))
	assert.Equal(t, "1", query.Get("page"))
	assert.Equal(t, "true", query.Get("sparkline"))
}

func TestMarketsRequestBuilder_PerPageAndKey(t *testing.T) {
	builder := NewMarketsRequestBuilder("https://api.coingecko.com").WithPerPage(50)
	builder.WithApiKey("demo-key")

	_, query := parseQuery(t, builder.BuildURL())

	assert.Equal(t, "50", query.Get("per_page"))
	assert.Equal(t, "demo-key", query.Get("x_cg_demo_api_key"))
}

func TestMarketChartRequestBuilder(t *testing.T) {
	builder := NewMarketChartRequestBuilder("https://api.coingecko.com", "bitcoin").
		WithDays("1").
		WithInterval("minute")

	path, query := parseQuery(t, builder.BuildURL())

	assert.Equal(t, "/api/v3/coins/bitcoin/market_chart", path)
	assert.Equal(t, "usd", query.Get("vs_currency"))
	assert.Equal(t, "1", query.Get("days"))
	assert.Equal(t, "minute", query.Get("interval"))
}

func TestMarketChartRequestBuilder_TrailingSlashBase(t *testing.T) {
	builder := NewMarketChartRequestBuilder("http://localhost:9090/", "ethereum").
		WithDays("30").
		WithInterval("daily")

	path, _ := parseQuery(t, builder.BuildURL())
	assert.Equal(t, "/api/v3/coins/ethereum/market_chart", path)
}

func TestRequestBuilder_BuildSetsHeaders(t *testing.T) {
	req, err := NewMarketsRequestBuilder("https://api.coingecko.com").Build()
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("User-Agent"))
}

func TestWindowRequestParameters(t *testing.T) {
	tests := []struct {
		window   Window
		days     string
		interval string
	}{
		{Window24h, "1", "minute"},
		{Window7d, "7", "daily"},
		{Window30d, "30", "daily"},
		{Window180d, "180", "daily"},
		{Window365d, "365", "daily"},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			assert.Equal(t, tt.days, tt.window.Days())
			assert.Equal(t, tt.interval, tt.window.Interval())
			assert.False(t, tt.window.UsesSparkline())
		})
	}

	assert.True(t, Window1h.UsesSparkline())
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("30d")
	require.NoError(t, err)
	assert.Equal(t, Window30d, w)

	_, err = ParseWindow("2h")
	assert.Error(t, err)
}
