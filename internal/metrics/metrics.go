package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors, registered once via Register.
var (
	regOK atomic.Bool

	cycleStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sterilizer",
			Subsystem: "cycle",
			Name:      "starts_total",
			Help:      "Number of sterilization cycles started.",
		},
	)
	cycleEnds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sterilizer",
			Subsystem: "cycle",
			Name:      "ends_total",
			Help:      "Number of terminated cycles by result.",
		}, []string{"result"},
	)
	alarms = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sterilizer",
			Subsystem: "controller",
			Name:      "alarms_total",
			Help:      "Number of alarms raised by error code.",
		}, []string{"code"},
	)
	chamberTemp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sterilizer",
			Subsystem: "chamber",
			Name:      "temperature_celsius",
			Help:      "Calibrated chamber temperature.",
		},
	)
	chamberPressure = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sterilizer",
			Subsystem: "chamber",
			Name:      "pressure_mpa",
			Help:      "Calibrated chamber pressure.",
		},
	)
	vacuumTests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sterilizer",
			Subsystem: "vacuum_test",
			Name:      "results_total",
			Help:      "Completed vacuum leak tests by verdict.",
		}, []string{"verdict"},
	)
)

// Register adds all collectors to the given registerer. Safe to call more
// than once; only the first call registers.
func Register(r prometheus.Registerer) error {
	if !regOK.CompareAndSwap(false, true) {
		return nil
	}
	for _, c := range []prometheus.Collector{
		cycleStarts, cycleEnds, alarms, chamberTemp, chamberPressure, vacuumTests,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func CycleStarted()                { cycleStarts.Inc() }
func CycleEnded(result string)     { cycleEnds.WithLabelValues(result).Inc() }
func AlarmRaised(code string)      { alarms.WithLabelValues(code).Inc() }
func ObserveChamber(tempC, pressureMPa float64) {
	chamberTemp.Set(tempC)
	chamberPressure.Set(pressureMPa)
}

func VacuumTestFinished(passed bool) {
	verdict := "fail"
	if passed {
		verdict = "pass"
	}
	vacuumTests.WithLabelValues(verdict).Inc()
}
