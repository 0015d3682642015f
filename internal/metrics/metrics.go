package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Admission metrics
	EventsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firehose_events_received_total",
			Help: "Total number of events accepted into the buffer",
		},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firehose_events_rejected_total",
			Help: "Total number of events rejected at admission",
		},
		[]string{"reason"},
	)

	// Dispatch metrics
	EventsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firehose_events_flushed_total",
			Help: "Total number of events durably written by the sink",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firehose_events_dropped_total",
			Help: "Total number of events lost to forced drops (return-to-front overflow, shutdown loss)",
		},
	)

	FlushFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firehose_flush_failures_total",
			Help: "Total number of failed sink flush attempts",
		},
	)

	FlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "firehose_flush_duration_seconds",
			Help:    "Duration of sink flush calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FlushBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "firehose_flush_batch_size",
			Help:    "Number of events per sink flush call",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Buffer metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "firehose_queue_depth",
			Help: "Current number of buffered events",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "firehose_queue_capacity",
			Help: "Maximum capacity of the event buffer",
		},
	)
)
