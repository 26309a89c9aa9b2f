package dialog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "partyfinder",
	Subsystem: "dialog",
	Name:      "transitions_total",
	Help:      "Dialog transitions by source step, target step, and action kind.",
}, []string{"from", "to", "kind"})

var abortsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "partyfinder",
	Subsystem: "dialog",
	Name:      "aborts_total",
	Help:      "Transitions aborted to the main menu by a store failure.",
})
