package coingecko

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CoinRecord is a single row of the market listing.
// Immutable once fetched; replaced wholesale on the next cache refresh
type CoinRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
	Sparkline7d  Sparkline       `json:"sparkline_in_7d"`
}

// Sparkline holds the pre-bucketed 7-day price trend embedded in a listing row
type Sparkline struct {
	Price []decimal.Decimal `json:"price"`
}

// MarketSnapshot is the ranked market listing at a point in time,
// ordered by descending market cap. IDs are unique within a snapshot
type MarketSnapshot []CoinRecord

// Validate checks the snapshot invariant: no duplicate coin ids
func (s MarketSnapshot) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, record := range s {
		if _, dup := seen[record.ID]; dup {
			return fmt.Errorf("duplicate coin id %q in snapshot", record.ID)
		}
		seen[record.ID] = struct{}{}
	}
	return nil
}

// FindByID returns the record with the given id, or nil
func (s MarketSnapshot) FindByID(id string) *CoinRecord {
	for i := range s {
		if s[i].ID == id {
			return &s[i]
		}
	}
	return nil
}

// PricePoint is a single (timestamp, price) sample.
// Timestamp is epoch milliseconds, matching the upstream wire format
type PricePoint struct {
	Timestamp int64
	Price     decimal.Decimal
}

// UnmarshalJSON decodes the upstream [timestamp_ms, price] pair
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var pair [2]json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	ts, err := pair[0].Float64()
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", pair[0], err)
	}

	price, err := decimal.NewFromString(pair[1].String())
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", pair[1], err)
	}

	p.Timestamp = int64(ts)
	p.Price = price
	return nil
}

// MarshalJSON encodes the point back to the [timestamp_ms, price] pair
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]json.RawMessage{
		json.RawMessage(fmt.Sprintf("%d", p.Timestamp)),
		json.RawMessage(p.Price.String()),
	})
}

// HistoricalSeries is an ordered price series for one coin and window.
// Points are ascending by timestamp and may be empty when the fetch failed
type HistoricalSeries struct {
	CoinID string       `json:"coin_id"`
	Window Window       `json:"window"`
	Points []PricePoint `json:"points"`
}

// marketChartResponse mirrors the /coins/{id}/market_chart body
type marketChartResponse struct {
	Prices []PricePoint `json:"prices"`
}

// Window is a named historical time range
type Window string

const (
	Window1h   Window = "1h"
	Window24h  Window = "24h"
	Window7d   Window = "7d"
	Window30d  Window = "30d"
	Window180d Window = "180d"
	Window365d Window = "365d"
)

// AllWindows lists every known window in display order
var AllWindows = []Window{Window1h, Window24h, Window7d, Window30d, Window180d, Window365d}

// ParseWindow converts a config/request string into a Window
func ParseWindow(s string) (Window, error) {
	for _, w := range AllWindows {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Days returns the upstream days parameter for the window.
// Window1h has no upstream request; it is served from the sparkline
func (w Window) Days() string {
	switch w {
	case Window24h:
		return "1"
	case Window7d:
		return "7"
	case Window30d:
		return "30"
	case Window180d:
		return "180"
	case Window365d:
		return "365"
	}
	return ""
}

// Interval returns the upstream interval parameter: minute-level for
// the 1-day request, daily for all longer ranges
func (w Window) Interval() string {
	if w == Window24h {
		return "minute"
	}
	return "daily"
}

// UsesSparkline reports whether the window is served from the embedded
// 7-day sparkline instead of a market_chart request
func (w Window) UsesSparkline() bool {
	return w == Window1h
}
