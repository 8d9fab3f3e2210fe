package history

import (
	"context"
	"log"

	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/config"
)

// Assembler produces per-window historical price series for one coin.
//
// Windows are fetched independently and sequentially; a failed window
// yields an empty series and a user-facing message while the remaining
// windows proceed. Nothing here is cached: every chart request hits the
// network
type Assembler struct {
	apiClient coingecko.ChartAPI
	config    *config.Config
}

// NewAssembler creates a series assembler using the given chart client
func NewAssembler(apiClient coingecko.ChartAPI, cfg *config.Config) *Assembler {
	return &Assembler{
		apiClient: apiClient,
		config:    cfg,
	}
}

// Windows returns the configured window set in declaration order,
// dropping unknown names
func (a *Assembler) Windows() []coingecko.Window {
	names := a.config.History.GetWindows()
	windows := make([]coingecko.Window, 0, len(names))
	for _, name := range names {
		w, err := coingecko.ParseWindow(name)
		if err != nil {
			log.Printf("History: skipping %v", err)
			continue
		}
		windows = append(windows, w)
	}
	return windows
}

// Assemble fetches one series per configured window for the resolved
// coin. The errors map carries a user-facing message for every window
// whose fetch failed; its series is present but empty.
//
// The 1h window never hits the network: it reuses the 7-day sparkline
// embedded in the listing record, indexed by sample number. The
// original dashboard labels those samples as minutes even though they
// span seven days; that relabeling is reproduced here deliberately and
// is tracked as a product question, not silently corrected
func (a *Assembler) Assemble(ctx context.Context, record *coingecko.CoinRecord) (map[coingecko.Window]coingecko.HistoricalSeries, map[coingecko.Window]string) {
	series := make(map[coingecko.Window]coingecko.HistoricalSeries)
	failures := make(map[coingecko.Window]string)

	if record == nil {
		return series, failures
	}

	for _, window := range a.Windows() {
		if window.UsesSparkline() {
			series[window] = sparklineSeries(record, window)
			continue
		}

		s, err := a.apiClient.FetchMarketChart(ctx, record.ID, window)
		if err != nil {
			log.Printf("History: window %s failed for %s: %v", window, record.ID, err)
			failures[window] = coingecko.UserMessageFor(err)
		}
		// On failure s is the empty series for this window
		series[window] = s
	}

	return series, failures
}

// sparklineSeries reinterprets the embedded 7-day sparkline as a series,
// with sample index in place of a real timestamp
func sparklineSeries(record *coingecko.CoinRecord, window coingecko.Window) coingecko.HistoricalSeries {
	points := make([]coingecko.PricePoint, 0, len(record.Sparkline7d.Price))
	for i, price := range record.Sparkline7d.Price {
		points = append(points, coingecko.PricePoint{
			Timestamp: int64(i),
			Price:     price,
		})
	}

	return coingecko.HistoricalSeries{
		CoinID: record.ID,
		Window: window,
		Points: points,
	}
}
