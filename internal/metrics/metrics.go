// Package metrics exposes Prometheus instrumentation for the decision core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the decision-core metric instruments. A nil *Recorder is a
// valid no-op recorder, so components never need to guard their calls.
type Recorder struct {
	regimeTransitions *prometheus.CounterVec
	rotations         *prometheus.CounterVec
	signalsFiltered   *prometheus.CounterVec
	tradingHalts      prometheus.Counter
	activeSymbols     prometheus.Gauge
	watchlistSize     prometheus.Gauge
}

// NewRecorder creates and registers the decision-core instruments.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		regimeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regime_transitions_total",
			Help: "Confirmed market regime transitions.",
		}, []string{"from", "to"}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rotations_total",
			Help: "Applied universe rotations by trigger.",
		}, []string{"trigger"}),
		signalsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_filtered_total",
			Help: "Strategy signals processed by the rotation filter.",
		}, []string{"outcome"}),
		tradingHalts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trading_halts_total",
			Help: "Weekly loss-limit halts.",
		}),
		activeSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_symbols",
			Help: "Symbols in the active trading set.",
		}),
		watchlistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "watchlist_size",
			Help: "Symbols on the force-close watchlist.",
		}),
	}
	reg.MustRegister(
		r.regimeTransitions,
		r.rotations,
		r.signalsFiltered,
		r.tradingHalts,
		r.activeSymbols,
		r.watchlistSize,
	)
	return r
}

// RegimeTransition records a confirmed regime change.
func (r *Recorder) RegimeTransition(from, to string) {
	if r == nil {
		return
	}
	r.regimeTransitions.WithLabelValues(from, to).Inc()
}

// RotationApplied records one applied rotation.
func (r *Recorder) RotationApplied(trigger string) {
	if r == nil {
		return
	}
	r.rotations.WithLabelValues(trigger).Inc()
}

// SignalFiltered records a signal filter outcome ("passed" or "dropped").
func (r *Recorder) SignalFiltered(outcome string) {
	if r == nil {
		return
	}
	r.signalsFiltered.WithLabelValues(outcome).Inc()
}

// HaltTriggered records a weekly loss-limit halt.
func (r *Recorder) HaltTriggered() {
	if r == nil {
		return
	}
	r.tradingHalts.Inc()
}

// SetRotationState updates the active-set and watchlist gauges.
func (r *Recorder) SetRotationState(active, watchlist int) {
	if r == nil {
		return
	}
	r.activeSymbols.Set(float64(active))
	r.watchlistSize.Set(float64(watchlist))
}
