package e2etest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

var chartPathRe = regexp.MustCompile(`^/api/v3/coins/([^/]+)/market_chart$`)

// MockCoinGecko is an httptest-backed stand-in for the CoinGecko API.
// It serves a fixed markets listing and synthetic chart series, with
// per-days failure injection and request counting
type MockCoinGecko struct {
	server *httptest.Server

	mu            sync.Mutex
	marketsBody   string
	failDays      map[string]int // days value -> status code to return
	marketsCalls  int
	chartCalls    map[string]int // "coinID/days" -> count
	rateLimitOnce bool
	rateLimitSeen bool
}

// NewMockCoinGecko starts the mock server
func NewMockCoinGecko() *MockCoinGecko {
	ms := &MockCoinGecko{
		marketsBody: defaultMarketsBody(),
		failDays:    make(map[string]int),
		chartCalls:  make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ms.handleRequest)
	ms.server = httptest.NewServer(mux)

	return ms
}

func (ms *MockCoinGecko) URL() string { return ms.server.URL }

func (ms *MockCoinGecko) Close() { ms.server.Close() }

// FailDays makes chart requests with the given days value return status
func (ms *MockCoinGecko) FailDays(days string, status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.failDays[days] = status
}

// RateLimitOnce makes the next markets request return a 429, once
func (ms *MockCoinGecko) RateLimitOnce() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rateLimitOnce = true
	ms.rateLimitSeen = false
}

// MarketsCalls returns the number of /coins/markets requests served
func (ms *MockCoinGecko) MarketsCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.marketsCalls
}

// ChartCalls returns the number of chart requests for a coin and days value
func (ms *MockCoinGecko) ChartCalls(coinID, days string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.chartCalls[coinID+"/"+days]
}

// TotalChartCalls returns the number of chart requests served overall
func (ms *MockCoinGecko) TotalChartCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	total := 0
	for _, n := range ms.chartCalls {
		total += n
	}
	return total
}

func (ms *MockCoinGecko) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v3/coins/markets" {
		ms.handleMarkets(w, r)
		return
	}

	if m := chartPathRe.FindStringSubmatch(r.URL.Path); m != nil {
		ms.handleChart(w, r, m[1])
		return
	}

	http.NotFound(w, r)
}

func (ms *MockCoinGecko) handleMarkets(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.marketsCalls++
	rateLimit := ms.rateLimitOnce && !ms.rateLimitSeen
	if rateLimit {
		ms.rateLimitSeen = true
	}
	body := ms.marketsBody
	ms.mu.Unlock()

	if rateLimit {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (ms *MockCoinGecko) handleChart(w http.ResponseWriter, r *http.Request, coinID string) {
	days := r.URL.Query().Get("days")

	ms.mu.Lock()
	ms.chartCalls[coinID+"/"+days]++
	status := ms.failDays[days]
	ms.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	// Synthetic ascending series, 10 points
	points := make([][2]float64, 10)
	for i := range points {
		points[i] = [2]float64{float64(1711843200000 + i*60000), 64000 + float64(i)}
	}
	response := map[string]interface{}{"prices": points}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Println("mock: failed to encode chart response:", err)
	}
}

func defaultMarketsBody() string {
	return `[
		{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":64123.12,"total_volume":35000000000,"sparkline_in_7d":{"price":[64000.1,64100.2,64050.3]}},
		{"id":"bitcoin-cash","name":"Bitcoin Cash","symbol":"bch","current_price":455.7,"total_volume":310000000,"sparkline_in_7d":{"price":[450.0,452.5,451.2]}},
		{"id":"ethereum","name":"Ethereum","symbol":"eth","current_price":3412.55,"total_volume":18000000000,"sparkline_in_7d":{"price":[3400.0,3410.5,3405.1]}}
	]`
}
