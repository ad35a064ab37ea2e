package sendqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Subsystem: "sendqueue",
			Name:      "submissions_total",
			Help:      "Jobs accepted into the send queue.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Subsystem: "sendqueue",
			Name:      "queue_full_total",
			Help:      "Submissions rejected due to back-pressure.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homebase_chat",
			Subsystem: "sendqueue",
			Name:      "run_duration_seconds",
			Help:      "Duration of a single job attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "homebase_chat",
			Subsystem: "sendqueue",
			Name:      "queue_depth",
			Help:      "Jobs currently buffered per shard.",
		},
		[]string{"shard"},
	)
)

func labelFor(shard int) string { return strconv.Itoa(shard) }
