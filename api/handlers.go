package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/resolver"
)

// TableRow is the column selection the dashboard table shows
type TableRow struct {
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
}

// DashboardResponse is the full per-interaction payload: table rows,
// resolve state and, when a single coin is selected, its chart series.
// A failed section carries its message and leaves the others intact
type DashboardResponse struct {
	Table       []TableRow                                      `json:"table"`
	Resolve     *resolver.ResolveResult                         `json:"resolve,omitempty"`
	Charts      map[coingecko.Window]coingecko.HistoricalSeries `json:"charts,omitempty"`
	ChartErrors map[coingecko.Window]string                     `json:"chart_errors,omitempty"`
	Error       string                                          `json:"error,omitempty"`
}

// HistoryResponse carries the per-window series for one coin
type HistoryResponse struct {
	CoinID      string                                          `json:"coin_id"`
	Charts      map[coingecko.Window]coingecko.HistoricalSeries `json:"charts"`
	ChartErrors map[coingecko.Window]string                     `json:"chart_errors,omitempty"`
}

// handleDashboard runs one full interaction pass: read-or-refresh the
// snapshot, resolve the query (or explicit selection), and assemble the
// chart windows when exactly one coin remains. Fetch failures degrade
// the affected section to empty data plus a message, never to a failed
// response
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	selectID := r.URL.Query().Get("select")

	response := DashboardResponse{Table: []TableRow{}}

	snap, err := s.snapshotService.GetSnapshot(r.Context())
	if err != nil {
		response.Error = coingecko.UserMessageFor(err)
		s.sendJSONResponse(w, response)
		return
	}

	result := resolveRequest(snap, query, selectID)
	response.Resolve = &result
	response.Table = tableRows(result.Filtered)

	if result.Kind == resolver.SingleMatch {
		charts, chartErrors := s.assembler.Assemble(r.Context(), result.Match)
		response.Charts = charts
		if len(chartErrors) > 0 {
			response.ChartErrors = chartErrors
		}
	}

	s.sendJSONResponse(w, response)
}

// handleMarkets returns the full market snapshot for the table view
func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshotService.GetSnapshot(r.Context())
	if err != nil {
		http.Error(w, coingecko.UserMessageFor(err), http.StatusServiceUnavailable)
		return
	}

	s.sendJSONResponse(w, snap)
}

// handleResolve narrows the snapshot by the query parameter
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	snap, err := s.snapshotService.GetSnapshot(r.Context())
	if err != nil {
		http.Error(w, coingecko.UserMessageFor(err), http.StatusServiceUnavailable)
		return
	}

	result := resolver.Resolve(snap, query)
	s.sendJSONResponse(w, result)
}

// handleHistory assembles chart windows for one coin by id. The id must
// come from a prior resolve step; unknown ids are a 404
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	coinID := mux.Vars(r)["id"]
	if coinID == "" {
		http.Error(w, "coin id is required", http.StatusBadRequest)
		return
	}

	snap, err := s.snapshotService.GetSnapshot(r.Context())
	if err != nil {
		http.Error(w, coingecko.UserMessageFor(err), http.StatusServiceUnavailable)
		return
	}

	record := snap.FindByID(coinID)
	if record == nil {
		http.Error(w, "unknown coin id", http.StatusNotFound)
		return
	}

	charts, chartErrors := s.assembler.Assemble(r.Context(), record)

	response := HistoryResponse{
		CoinID: coinID,
		Charts: charts,
	}
	if len(chartErrors) > 0 {
		response.ChartErrors = chartErrors
	}

	s.sendJSONResponse(w, response)
}

// handleHealth reports upstream reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"healthy": s.snapshotService.Healthy(),
	}
	s.sendJSONResponse(w, status)
}

func tableRows(records coingecko.MarketSnapshot) []TableRow {
	rows := make([]TableRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, TableRow{
			Name:         record.Name,
			CurrentPrice: record.CurrentPrice,
			TotalVolume:  record.TotalVolume,
		})
	}
	return rows
}
