package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mpons/battarb/core/metrics"
)

// PromSink records decision outcomes in Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	soc       *prometheus.GaugeVec
	floor     *prometheus.GaugeVec
	budget    *prometheus.GaugeVec
	threshold *prometheus.GaugeVec
	sellPrice *prometheus.GaugeVec
}

// NewPromSink registers decision metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_decisions_total",
			Help: "Total number of dispatch decisions by action and rule",
		}, []string{"site", "action", "rule"}),
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "battery_soc_percent",
			Help: "Battery state of charge at the last evaluation",
		}, []string{"site"}),
		floor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "export_floor_soc_percent",
			Help: "Export floor SOC at the last evaluation",
		}, []string{"site"}),
		budget: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "export_budget_kwh",
			Help: "Export energy budget at the last evaluation",
		}, []string{"site"}),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sell_threshold_cents",
			Help: "Dynamic sell threshold at the last evaluation",
		}, []string{"site"}),
		sellPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sell_price_cents",
			Help: "Feed-in price at the last evaluation",
		}, []string{"site"}),
	}

	for _, c := range []prometheus.Collector{s.decisions, s.soc, s.floor, s.budget, s.threshold, s.sellPrice} {
		if err := register(reg, c, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, s *PromSink) error {
	err := reg.Register(c)
	if err == nil {
		return nil
	}
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		return err
	}
	switch v := c.(type) {
	case *prometheus.CounterVec:
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok && v == s.decisions {
			s.decisions = existing
		}
	case *prometheus.GaugeVec:
		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return err
		}
		switch v {
		case s.soc:
			s.soc = existing
		case s.floor:
			s.floor = existing
		case s.budget:
			s.budget = existing
		case s.threshold:
			s.threshold = existing
		case s.sellPrice:
			s.sellPrice = existing
		}
	}
	return nil
}

// RecordDecision increments the decision counter and refreshes the gauges.
func (s *PromSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	s.decisions.WithLabelValues(rec.Site, string(rec.Action), rec.Rule).Inc()
	s.soc.WithLabelValues(rec.Site).Set(rec.SOC)
	s.floor.WithLabelValues(rec.Site).Set(rec.ExportFloorSOC)
	s.budget.WithLabelValues(rec.Site).Set(rec.ExportBudgetKWh)
	s.threshold.WithLabelValues(rec.Site).Set(rec.SellThreshold)
	s.sellPrice.WithLabelValues(rec.Site).Set(rec.SellPrice)
	return nil
}

// Close implements the sink interface; Prometheus collectors need no
// teardown.
func (s *PromSink) Close() error { return nil }
