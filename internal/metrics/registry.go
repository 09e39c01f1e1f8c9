// Prometheus instrumentation for the sending pipeline
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Message outcome labels
const (
	StatusSent     string = "sent"
	StatusTooLarge string = "too_large"
	StatusFailed   string = "failed"
	StatusCanceled string = "canceled"
)

const namespace string = "gelfsend"

// Per-process collectors. Each Registry owns its own prometheus registry so daemons (and tests) never collide.
type Registry struct {
	prom *prometheus.Registry

	Messages      *prometheus.CounterVec
	Chunks        prometheus.Counter
	ChunkBytes    prometheus.Counter
	MessageChunks prometheus.Histogram
	BeatsEvents   *prometheus.CounterVec

	sources map[string]bool
}

func New() (registry *Registry) {
	registry = &Registry{
		prom:    prometheus.NewRegistry(),
		sources: make(map[string]bool),
	}

	registry.Messages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "GELF messages handled by the forwarder, by outcome",
	}, []string{"status"})

	registry.Chunks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunks_total",
		Help:      "UDP chunks written to the destination",
	})

	registry.ChunkBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunk_bytes_total",
		Help:      "Bytes written to the destination including chunk headers",
	})

	registry.MessageChunks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_chunks",
		Help:      "Chunks needed per message",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	registry.BeatsEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "beats_events_total",
		Help:      "Events mirrored to the beats endpoint, by outcome",
	}, []string{"status"})

	registry.prom.MustRegister(
		registry.Messages,
		registry.Chunks,
		registry.ChunkBytes,
		registry.MessageChunks,
		registry.BeatsEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return
}

// Records one message outcome
func (registry *Registry) ObserveMessage(status string) {
	registry.Messages.WithLabelValues(status).Inc()
}

// Records the chunks written for one message
func (registry *Registry) ObserveChunks(chunks int, bytes int) {
	if chunks == 0 {
		return
	}
	registry.Chunks.Add(float64(chunks))
	registry.ChunkBytes.Add(float64(bytes))
	registry.MessageChunks.Observe(float64(chunks))
}

// Exposes an input's line counters under the source label.
// Sources are registered once, later calls for the same name are ignored.
func (registry *Registry) RegisterSource(source string, linesRead, emptyLines, truncated func() float64) (err error) {
	if registry.sources[source] {
		return
	}

	labels := prometheus.Labels{"source": source}
	counters := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "input_lines_total",
			Help:        "Lines read from an input",
			ConstLabels: labels,
		}, linesRead),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "input_empty_lines_total",
			Help:        "Blank lines skipped from an input",
			ConstLabels: labels,
		}, emptyLines),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "input_truncated_lines_total",
			Help:        "Lines cut to the maximum line size",
			ConstLabels: labels,
		}, truncated),
	}
	for _, counter := range counters {
		err = registry.prom.Register(counter)
		if err != nil {
			return
		}
	}
	registry.sources[source] = true
	return
}

func (registry *Registry) Gatherer() prometheus.Gatherer {
	return registry.prom
}

// Scrape handler for the registry
func (registry *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(registry.prom, promhttp.HandlerOpts{})
}
