package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mpons/battarb/core/logger"
	"github.com/mpons/battarb/core/metrics"
	"github.com/mpons/battarb/core/model"
	"github.com/mpons/battarb/core/strategy"
)

// Condition gates a rule on the local hour window and simple price / SOC
// thresholds. Nil thresholds are ignored; set thresholds are AND-ed.
// The hour window is [FromHour, ToHour) and may wrap midnight.
type Condition struct {
	FromHour int `json:"from_hour" koanf:"from_hour"`
	ToHour   int `json:"to_hour" koanf:"to_hour"`

	SellAbove *float64 `json:"sell_above,omitempty" koanf:"sell_above"`
	BuyBelow  *float64 `json:"buy_below,omitempty" koanf:"buy_below"`
	MinSOC    *float64 `json:"min_soc,omitempty" koanf:"min_soc"`
	MaxSOC    *float64 `json:"max_soc,omitempty" koanf:"max_soc"`
}

func (c Condition) matches(snap model.Snapshot) bool {
	h := float64(snap.Hour)
	if c.FromHour != c.ToHour &&
		!strategy.InWrappingWindow(h, float64(c.FromHour), float64(c.ToHour)) {
		return false
	}
	if c.SellAbove != nil && snap.SellPrice <= *c.SellAbove {
		return false
	}
	if c.BuyBelow != nil && snap.BuyPrice >= *c.BuyBelow {
		return false
	}
	if c.MinSOC != nil && snap.SOC < *c.MinSOC {
		return false
	}
	if c.MaxSOC != nil && snap.SOC > *c.MaxSOC {
		return false
	}
	return true
}

// Rule pairs a condition with the action taken when it matches.
type Rule struct {
	Name   string       `json:"name" koanf:"name"`
	When   Condition    `json:"when" koanf:"when"`
	Action model.Action `json:"action" koanf:"action"`
	Reason string       `json:"reason" koanf:"reason"`
}

// Table is a regional first-match rule set with the wholesale-price
// overlays every region shares: a spike override that exports regardless
// of the matched rule, and a zero feed-in limit when the wholesale price
// goes negative.
//
// The wholesale spike threshold is compared against the rrp field exactly
// as the host delivers it. Deployed tables use thresholds like 800 next to
// retail prices in cents, so the field is presumed $/MWh, but the engine
// never converts it.
type Table struct {
	Region string `json:"region" koanf:"region"`
	Rules  []Rule `json:"rules" koanf:"rules"`

	RRPSpikeThreshold float64 `json:"rrp_spike_threshold" koanf:"rrp_spike_threshold"`
	RRPSpikeMinSOC    float64 `json:"rrp_spike_min_soc" koanf:"rrp_spike_min_soc"`
	// NegativeRRPFeedInW is the export cap applied while rrp < 0.
	NegativeRRPFeedInW float64 `json:"negative_rrp_feed_in_w" koanf:"negative_rrp_feed_in_w"`
}

// Validate rejects tables that could never produce a decision.
func (t Table) Validate() error {
	if t.Region == "" {
		return fmt.Errorf("rules: region is required")
	}
	for i, r := range t.Rules {
		if r.Name == "" {
			return fmt.Errorf("rules: rule %d of %s has no name", i, t.Region)
		}
		if r.Action == "" {
			return fmt.Errorf("rules: rule %q has no action", r.Name)
		}
		w := r.When
		if w.FromHour < 0 || w.FromHour > 24 || w.ToHour < 0 || w.ToHour > 24 {
			return fmt.Errorf("rules: rule %q hour window out of range", r.Name)
		}
	}
	return nil
}

// Apply evaluates the table against a normalized snapshot: first matching
// rule wins, auto when nothing matches, then the rrp overlays run on top.
func (t Table) Apply(snap model.Snapshot) model.Decision {
	d := model.Decision{
		Action:   model.ActionAuto,
		Priority: 1,
		Rule:     "default",
		Reason:   fmt.Sprintf("%s: default to auto mode", t.Region),
	}
	for _, r := range t.Rules {
		if r.When.matches(snap) {
			d.Action = r.Action
			d.Rule = r.Name
			d.Reason = fmt.Sprintf("%s: %s", t.Region, r.Reason)
			d.Priority = 10
			break
		}
	}

	if t.RRPSpikeThreshold > 0 && snap.RRP > t.RRPSpikeThreshold && snap.SOC > t.RRPSpikeMinSOC {
		d.Action = model.ActionExport
		d.Rule = "rrp_spike"
		d.Priority = 100
		d.Reason = fmt.Sprintf("%s: take the money down to %.0f%% (rrp %.0f)", t.Region, t.RRPSpikeMinSOC, snap.RRP)
	}
	if snap.RRP < 0 {
		d.FeedInLimitW = model.FeedInLimit(t.NegativeRRPFeedInW)
		d.Reason += fmt.Sprintf(" setting feed in to %.0f", t.NegativeRRPFeedInW)
	}

	d.Truncate()
	return d
}

// Engine adapts a Table into the snapshot evaluator interface the service
// exposes, sharing the arbitrage pipeline's input normalization.
type Engine struct {
	table Table
	cfg   strategy.Config
	log   logger.Logger
	sink  metrics.Sink
}

func New(table Table, cfg strategy.Config, log logger.Logger, sink metrics.Sink) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{table: table, cfg: cfg, log: log, sink: sink}
}

func (e *Engine) Evaluate(raw model.RawSnapshot) model.Decision {
	snap := strategy.Normalize(raw, e.cfg)
	d := e.table.Apply(snap)
	d.EvaluationID = uuid.NewString()
	d.Site = snap.Site

	e.log.Debugw("rule decision", map[string]any{
		"evaluation_id": d.EvaluationID,
		"site":          d.Site,
		"region":        e.table.Region,
		"action":        string(d.Action),
		"rule":          d.Rule,
	})

	if err := e.sink.RecordDecision(metrics.DecisionRecord{
		Time:      time.Now(),
		Site:      d.Site,
		Action:    d.Action,
		Rule:      d.Rule,
		Priority:  d.Priority,
		BuyPrice:  snap.BuyPrice,
		SellPrice: snap.SellPrice,
		SOC:       snap.SOC,
	}); err != nil {
		e.log.Warnf("record decision: %v", err)
	}
	return d
}
