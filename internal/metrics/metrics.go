package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ivyresort",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ivyresort",
			Name:      "confirmation_emails_total",
			Help:      "Confirmation email attempts by transport and outcome.",
		},
		[]string{"transport", "outcome"},
	)

	sweepDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ivyresort",
			Name:      "retention_sweep_deleted_total",
			Help:      "Reservations removed by the retention sweep.",
		},
	)

	syncMerges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ivyresort",
			Name:      "sync_merges_total",
			Help:      "Mirror merge rounds completed.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, emailsSent, sweepDeleted, syncMerges)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncEmail counts one email transport attempt.
func IncEmail(transport, outcome string) {
	emailsSent.WithLabelValues(transport, outcome).Inc()
}

// AddSweepDeleted counts reservations removed by a sweep.
func AddSweepDeleted(n float64) {
	sweepDeleted.Add(n)
}

// IncSyncMerge counts one completed merge round.
func IncSyncMerge() {
	syncMerges.Inc()
}
