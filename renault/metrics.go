package renault

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carlink",
		Name:      "refresh_total",
		Help:      "Refresh attempts by coordinator and result",
	}, []string{"coordinator", "result"})

	suspendedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "carlink",
		Name:      "coordinator_suspended",
		Help:      "Coordinators with permanently suspended polling",
	}, []string{"coordinator", "reason"})
)
