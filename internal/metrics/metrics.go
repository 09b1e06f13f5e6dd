// Package metrics exposes the workflow's Prometheus counters. They are
// scraped from the status server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emailsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenflow_emails_processed_total",
		Help: "Total application emails screened.",
	})

	verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screenflow_verdicts_total",
		Help: "Screening verdicts by outcome.",
	}, []string{"outcome"})

	repliesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenflow_replies_sent_total",
		Help: "Total templated replies delivered.",
	})

	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenflow_errors_total",
		Help: "Total per-candidate processing errors.",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "screenflow_cycle_duration_seconds",
		Help:    "Duration of a full processing cycle.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordVerdict counts one screened email and its outcome.
func RecordVerdict(matched bool) {
	emailsProcessed.Inc()
	if matched {
		verdicts.WithLabelValues("matched").Inc()
	} else {
		verdicts.WithLabelValues("rejected").Inc()
	}
}

// RecordReply counts one delivered reply.
func RecordReply() { repliesSent.Inc() }

// RecordError counts one processing error.
func RecordError() { errorsTotal.Inc() }

// ObserveCycle records the duration of a processing cycle in seconds.
func ObserveCycle(seconds float64) { cycleDuration.Observe(seconds) }
