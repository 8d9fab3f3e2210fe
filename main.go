package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coindash/market-dashboard/api"
	"github.com/coindash/market-dashboard/cache"
	"github.com/coindash/market-dashboard/coingecko"
	"github.com/coindash/market-dashboard/config"
	"github.com/coindash/market-dashboard/history"
	"github.com/coindash/market-dashboard/metrics"
	"github.com/coindash/market-dashboard/snapshot"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		cancel()
	}()

	// One fetch client per service so upstream metrics stay separable
	marketsClient := coingecko.NewClient(cfg, metrics.ServiceMarkets)
	chartsClient := coingecko.NewClient(cfg, metrics.ServiceCharts)

	// Snapshot cache: single entry, synchronous refresh on expiry
	byteCache := cache.NewByteCache(cfg.Markets.GetTTL(), 2*cfg.Markets.GetTTL())
	snapshotService := snapshot.NewService(marketsClient, byteCache, cfg)
	if err := snapshotService.Start(ctx); err != nil {
		log.Fatal("Failed to start snapshot service:", err)
	}
	defer snapshotService.Stop()

	// Historical series assembler: on-demand, never cached
	assembler := history.NewAssembler(chartsClient, cfg)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create and start HTTP server
	server := api.New(port, snapshotService, assembler)
	go func() {
		<-ctx.Done()
		server.Stop()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatal("Server failed:", err)
	}
}
