package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/events"
	"github.com/coindash/market-dashboard/resolver"
)

// SnapshotProvider is the snapshot cache surface the server consumes
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context) (coingecko.MarketSnapshot, error)
	SubscribeOnUpdate() *events.Subscription
	Healthy() bool
}

// SeriesAssembler is the history surface the server consumes
type SeriesAssembler interface {
	Assemble(ctx context.Context, record *coingecko.CoinRecord) (map[coingecko.Window]coingecko.HistoricalSeries, map[coingecko.Window]string)
}

// Server exposes the dashboard data over HTTP for the UI layer
type Server struct {
	port            string
	snapshotService SnapshotProvider
	assembler       SeriesAssembler
	server          *http.Server
	upgrader        websocket.Upgrader
}

func New(port string, snapshotService SnapshotProvider, assembler SeriesAssembler) *Server {
	return &Server{
		port:            port,
		snapshotService: snapshotService,
		assembler:       assembler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the route table; split out so tests can drive handlers
// through httptest without binding a port
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/dashboard", s.handleDashboard)
	router.HandleFunc("/api/v1/markets", s.handleMarkets)
	router.HandleFunc("/api/v1/resolve", s.handleResolve)
	router.HandleFunc("/api/v1/coins/{id}/history", s.handleHistory)
	router.HandleFunc("/api/v1/updates", s.handleUpdates)
	router.HandleFunc("/health", s.handleHealth)

	router.Handle("/metrics", promhttp.Handler())

	return router
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Router(),
	}

	log.Printf("API: listening on port %s", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.Printf("API: error shutting down server: %v", err)
		}
	}
}

// resolveRequest applies the query and optional explicit selection to a
// snapshot, the same narrowing every interaction performs
func resolveRequest(snap coingecko.MarketSnapshot, query, selectID string) resolver.ResolveResult {
	if selectID != "" {
		return resolver.ResolveByID(snap, selectID)
	}
	return resolver.Resolve(snap, query)
}
