// Package metrics holds the Prometheus collectors of the bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	relays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translatebot_relays_total",
			Help: "Relay tasks by outcome (relayed, error, or the skip reason).",
		},
		[]string{"outcome"},
	)

	translateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translatebot_translate_duration_seconds",
			Help:    "Latency of translation endpoint calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	replyOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translatebot_reply_operations_total",
			Help: "Reply messages edited, created and deleted by the synchronizer.",
		},
		[]string{"op"},
	)

	inflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "translatebot_relays_inflight",
			Help: "Relay tasks currently running.",
		},
	)
)

func init() {
	prometheus.MustRegister(relays)
	prometheus.MustRegister(translateDuration)
	prometheus.MustRegister(replyOps)
	prometheus.MustRegister(inflight)
}

func ObserveRelay(outcome string) {
	relays.WithLabelValues(outcome).Inc()
}

func ObserveTranslate(result string, started time.Time) {
	translateDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
}

func AddReplyOps(edited, created, deleted int) {
	replyOps.WithLabelValues("edit").Add(float64(edited))
	replyOps.WithLabelValues("create").Add(float64(created))
	replyOps.WithLabelValues("delete").Add(float64(deleted))
}

// TaskStarted increments the in-flight gauge and returns the matching decrement.
func TaskStarted() func() {
	inflight.Inc()
	return inflight.Dec
}

func Handler() http.Handler {
	return promhttp.Handler()
}
