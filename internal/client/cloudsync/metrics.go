package cloudsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "cloudsync",
			Name:      "pushes_total",
			Help:      "Outbound event writes by operation and result.",
		},
		[]string{"op", "result"},
	)

	pollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "cloudsync",
			Name:      "polls_total",
			Help:      "Inbound polls by result.",
		},
		[]string{"result"},
	)

	mergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "urgekeeper",
			Subsystem: "cloudsync",
			Name:      "merged_events_total",
			Help:      "Remote events merged into the local journal.",
		},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
