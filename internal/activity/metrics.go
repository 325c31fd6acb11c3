package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeyshop",
		Subsystem: "activity",
		Name:      "events_total",
		Help:      "Total number of recorded activity events by type.",
	}, []string{"activity_type"})

	writeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeyshop",
		Subsystem: "activity",
		Name:      "sink_write_failures_total",
		Help:      "Total number of sink append failures by sink.",
	}, []string{"sink"})
)
