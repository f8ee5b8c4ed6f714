// Package api serves the knowledge graph over HTTP: document upload,
// question answering, graph inspection and manual triplet edits.
package api

import (
	"net/http"
	"sync"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/extraction"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/graph"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

type Deps struct {
	Store     *kg.Store
	Extractor *extraction.Extractor
	Pipeline  *graph.Pipeline
	Retrieval config.RetrievalConfig
	// Metrics and Gatherer are optional; without a Gatherer /metrics serves
	// the default registry.
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type Server struct {
	store     *kg.Store
	extractor *extraction.Extractor
	pipeline  *graph.Pipeline
	retrieval config.RetrievalConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
	validate  *validator.Validate

	// writeMu serialises graph writers; the Store only guards single calls.
	writeMu sync.Mutex

	router *mux.Router
}

func NewServer(d Deps) *Server {
	s := &Server{
		store:     d.Store,
		extractor: d.Extractor,
		pipeline:  d.Pipeline,
		retrieval: d.Retrieval,
		metrics:   d.Metrics,
		logger:    logging.OrNop(d.Logger).Named("api"),
		validate:  validator.New(),
		router:    mux.NewRouter(),
	}
	if s.retrieval.TopK <= 0 {
		s.retrieval.TopK = graph.DefaultTopK
	}
	if s.retrieval.Hops <= 0 {
		s.retrieval.Hops = kg.DefaultSearchHops
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := s.router
	r.Use(s.requestID, s.instrument)
	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/api/graph", s.handleGraph).Methods(http.MethodGet)
	r.HandleFunc("/api/entities/{entity}/neighbors", s.handleNeighbors).Methods(http.MethodGet)
	r.HandleFunc("/api/triplets", s.handleAddTriplet).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s
}

// Handler wraps the router in a server span per request.
func (s *Server) Handler() http.Handler { return otelhttp.NewHandler(s.router, "graph-api") }
