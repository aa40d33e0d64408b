package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        prometheus.Counter
	voteEventsDropped prometheus.Counter
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the polls API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "votes_total",
			Help:      "Accepted votes across all questions.",
		})

		voteEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "polling",
			Name:      "vote_events_dropped_total",
			Help:      "Vote events not delivered to the stats worker because its queue was full.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncVote counts one accepted vote. Per-question totals live in the database.
func IncVote() {
	if votesTotal == nil {
		return
	}
	votesTotal.Inc()
}

func IncVoteEventDropped() {
	if voteEventsDropped == nil {
		return
	}
	voteEventsDropped.Inc()
}
