package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mpons/battarb/core/metrics"
)

// Config selects which decision sinks the service runs.
type Config struct {
	// PromAddr enables the Prometheus exposition endpoint when non-empty,
	// e.g. ":9090".
	PromAddr string `json:"prom_addr" koanf:"prom_addr"`
	// Influx enables the InfluxDB sink when set.
	Influx *InfluxConfig `json:"influx,omitempty" koanf:"influx"`
}

// NewSink builds the configured sink combination. Zero configured sinks
// yield a NopSink; a failing Influx health check degrades to a NopSink on
// its own without affecting the others.
func NewSink(cfg Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PromAddr != "" {
		prom, err := NewPromSink(reg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.Influx != nil && cfg.Influx.URL != "" {
		sinks = append(sinks, NewInfluxSinkWithFallback(*cfg.Influx))
	}
	return coremetrics.NewMultiSink(sinks...), nil
}
