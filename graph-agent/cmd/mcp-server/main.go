package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/mcp"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.Tracing, observability.WithEnvironment(cfg.Environment))
	if err != nil {
		logger.Fatal("tracing setup failed", zap.Error(err))
	}

	gateway, err := mcp.NewGateway(cfg.MCP.APIURL, prometheus.DefaultRegisterer, logger)
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}

	router := mux.NewRouter()
	gateway.Routes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.MCP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("MCP server starting", zap.String("addr", cfg.MCP.Addr), zap.String("api", cfg.MCP.APIURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("trace flush failed", zap.Error(err))
	}
	logger.Info("server exited")
}
