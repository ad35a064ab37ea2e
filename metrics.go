package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Name:      "messages_sent_total",
			Help:      "Optimistic messages appended by Send.",
		},
	)

	sendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Name:      "send_failures_total",
			Help:      "Messages whose persist request failed terminally.",
		},
	)

	framesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Name:      "frames_dropped_total",
			Help:      "Inbound live-channel frames dropped as malformed.",
		},
	)

	socketDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Name:      "socket_drops_total",
			Help:      "Live-channel connections lost while a session was open.",
		},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homebase_chat",
			Name:      "reconnects_total",
			Help:      "Successful live-channel reconnects.",
		},
	)
)
