package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sessionTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tutor_session_transitions_total",
		Help: "Session lifecycle operations by outcome",
	},
	[]string{"transition", "result"},
)

func observe(transition string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	sessionTransitions.WithLabelValues(transition, result).Inc()
}
