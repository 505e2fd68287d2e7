package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_builder_commands_total",
			Help: "Chat commands handled, by command and outcome.",
		},
		[]string{"command", "result"},
	)

	Saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_builder_saves_total",
			Help: "Strategy submissions to the sink, by outcome (ok, error, superseded, invalid).",
		},
		[]string{"result"},
	)

	Sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategy_builder_sessions",
			Help: "Chats with an open editing session.",
		},
	)
)

func init() {
	prometheus.MustRegister(Commands, Saves, Sessions)
}
