package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creatask_sessions_started_total",
		Help: "Number of task sessions started.",
	})

	SessionsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creatask_sessions_reaped_total",
		Help: "Number of idle sessions torn down by the reaper.",
	})

	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creatask_events_ingested_total",
		Help: "Raw telemetry events accepted from browser batches.",
	})

	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creatask_chat_requests_total",
		Help: "Chat completion requests by outcome.",
	}, []string{"outcome"})

	ChatLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creatask_chat_latency_seconds",
		Help:    "Chat completion round-trip latency.",
		Buckets: prometheus.DefBuckets,
	})

	CompletionsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creatask_completions_saved_total",
		Help: "Completion records handed to the repository, by result.",
	}, []string{"result"})
)

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
