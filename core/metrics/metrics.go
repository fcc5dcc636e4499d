// Package metrics defines the decision recording interfaces. Sinks like the
// Prometheus and InfluxDB implementations under infra/metrics receive one
// record per evaluated interval and can be combined with NewMultiSink.
package metrics

import (
	"time"

	"github.com/mpons/battarb/core/model"
)

// DecisionRecord is the observable outcome of one interval evaluation.
type DecisionRecord struct {
	Time     time.Time
	Site     string
	Action   model.Action
	Rule     string
	Priority int

	BuyPrice  float64
	SellPrice float64
	SOC       float64

	ExportFloorSOC  float64
	ExportBudgetKWh float64
	SellThreshold   float64
}

// Sink records decision outcomes.
type Sink interface {
	RecordDecision(rec DecisionRecord) error
	Close() error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordDecision(DecisionRecord) error { return nil }
func (NopSink) Close() error                        { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink combines sinks; zero sinks degrade to a nop.
func NewMultiSink(sinks ...Sink) Sink {
	if len(sinks) == 0 {
		return NopSink{}
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards to all sinks, returning the first error.
func (m *MultiSink) RecordDecision(rec DecisionRecord) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordDecision(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink, returning the first error.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
