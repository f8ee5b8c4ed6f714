package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	DocumentsProcessed *prometheus.CounterVec
	TripletsAdded      prometheus.Counter
	SynthesisTotal     *prometheus.CounterVec
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_rag_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "graph_rag_http_request_duration_seconds",
				Help: "Duration of HTTP requests",
			},
			[]string{"method", "route"},
		),
		DocumentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_rag_documents_processed_total",
				Help: "Documents sent through triplet extraction",
			},
			[]string{"status"},
		),
		TripletsAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "graph_rag_triplets_added_total",
				Help: "Triplets inserted into the knowledge graph",
			},
		),
		SynthesisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graph_rag_synthesis_total",
				Help: "Answers produced, by synthesis mode",
			},
			[]string{"mode"},
		),
		GraphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "graph_rag_graph_nodes",
				Help: "Entities in the in-memory graph",
			},
		),
		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "graph_rag_graph_edges",
				Help: "Relation edges in the in-memory graph",
			},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.DocumentsProcessed,
		m.TripletsAdded,
		m.SynthesisTotal,
		m.GraphNodes,
		m.GraphEdges,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Hook turns lifecycle events into counter updates.
func (m *Metrics) Hook() Hook {
	return func(_ context.Context, ev Event) {
		switch ev.Name {
		case EventDocumentProcessed:
			m.DocumentsProcessed.WithLabelValues("success").Inc()
			if n, ok := ev.Fields["triplets"].(int); ok {
				m.TripletsAdded.Add(float64(n))
			}
		case EventDocumentFailed:
			m.DocumentsProcessed.WithLabelValues("error").Inc()
		case EventSynthesisModel:
			m.SynthesisTotal.WithLabelValues("model").Inc()
		case EventSynthesisFallback:
			m.SynthesisTotal.WithLabelValues("fallback").Inc()
		case EventSynthesisLocal:
			m.SynthesisTotal.WithLabelValues("local").Inc()
		case EventGraphSaved, EventGraphLoaded:
			if n, ok := ev.Fields["nodes"].(int); ok {
				m.GraphNodes.Set(float64(n))
			}
			if n, ok := ev.Fields["edges"].(int); ok {
				m.GraphEdges.Set(float64(n))
			}
		}
	}
}
