package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "log",
		Name:      "records_total",
		Help:      "Log records written, by level.",
	}, []string{"level"})

	queueBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "log",
		Name:      "queue_blocked_total",
		Help:      "Writes that waited for room in the full log queue.",
	})

	sinkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "log",
		Name:      "sink_failures_total",
		Help:      "Log sinks disabled after a write error.",
	})
)
