package syncqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth is written only by the shard's own worker.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "syncqueue",
			Name:      "submissions_total",
			Help:      "Sync jobs accepted for execution.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "syncqueue",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts rejected because the shard stayed full.",
		},
		[]string{"shard"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "syncqueue",
			Name:      "retries_total",
			Help:      "Job attempts repeated after a retryable error.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "urgekeeper",
			Subsystem: "syncqueue",
			Name:      "run_duration_seconds",
			Help:      "Duration of a single job attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "urgekeeper",
			Subsystem: "syncqueue",
			Name:      "queue_depth",
			Help:      "Jobs waiting in each shard.",
		},
		[]string{"shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
