package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plugwatch_cycles_total",
		Help: "Monitor cycles executed.",
	})
	cycleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plugwatch_cycle_failures_total",
		Help: "Monitor cycles that ended in a failure, by kind.",
	}, []string{"kind"})
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plugwatch_plug_writes_total",
		Help: "Relay writes issued to the plug, by target state.",
	}, []string{"state"})
	plugOn = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plugwatch_plug_on",
		Help: "1 when the plug relay is on, 0 when off.",
	})
	batteryPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plugwatch_battery_percent",
		Help: "Last sampled battery charge percentage.",
	})
	monitorRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plugwatch_monitor_running",
		Help: "1 while the monitor loop is running.",
	})
)
