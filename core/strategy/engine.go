package strategy

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpons/battarb/core/logger"
	"github.com/mpons/battarb/core/metrics"
	"github.com/mpons/battarb/core/model"
)

// Evaluator turns one host snapshot into one dispatch decision.
type Evaluator interface {
	Evaluate(raw model.RawSnapshot) model.Decision
}

// Engine is the dynamic arbitrage pipeline. It is stateless between
// evaluations; every decision derives solely from the snapshot and the
// configuration, so identical inputs always yield the same action.
type Engine struct {
	cfg  Config
	log  logger.Logger
	sink metrics.Sink
	now  func() time.Time
}

// New builds an engine with defaults applied for any zero-valued tunable.
// A nil sink disables decision recording.
func New(cfg Config, log logger.Logger, sink metrics.Sink) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{cfg: cfg, log: log, sink: sink, now: time.Now}
}

// Evaluate normalizes the raw snapshot, runs the pipeline, stamps the
// outcome with a fresh evaluation id and records it to the metrics sink.
func (e *Engine) Evaluate(raw model.RawSnapshot) model.Decision {
	snap := Normalize(raw, e.cfg)
	ev := e.pipeline(snap)
	d := resolve(ev, e.cfg)
	d.EvaluationID = uuid.NewString()
	d.Site = snap.Site

	e.log.Debugw("decision", map[string]any{
		"evaluation_id": d.EvaluationID,
		"site":          d.Site,
		"action":        string(d.Action),
		"rule":          d.Rule,
		"priority":      d.Priority,
		"reason":        d.Reason,
	})

	if err := e.sink.RecordDecision(metrics.DecisionRecord{
		Time:            e.now(),
		Site:            d.Site,
		Action:          d.Action,
		Rule:            d.Rule,
		Priority:        d.Priority,
		BuyPrice:        snap.BuyPrice,
		SellPrice:       snap.SellPrice,
		SOC:             snap.SOC,
		ExportFloorSOC:  ev.floor.ExportFloorSOC,
		ExportBudgetKWh: ev.floor.ExportBudgetKWh,
		SellThreshold:   ev.thr,
	}); err != nil {
		e.log.Warnf("record decision: %v", err)
	}
	return d
}

// Decide runs the pure pipeline over an already normalized snapshot.
// Unlike Evaluate it assigns no id and records nothing.
func (e *Engine) Decide(snap model.Snapshot) model.Decision {
	return resolve(e.pipeline(snap), e.cfg)
}

// pipeline derives every intermediate quantity the resolver consumes:
// discounted forecasts, solar classification, floors and budget, the charge
// plan, the dynamic sell threshold and the overnight ranking.
func (e *Engine) pipeline(snap model.Snapshot) evaluation {
	cfg := e.cfg

	ev := evaluation{snap: snap}
	ev.buyDisc = Discount(snap.BuyForecast, cfg.ForecastHorizonPeriods, cfg.BuyUncertaintyRate, Inflate)
	ev.sellDisc = Discount(snap.SellForecast, cfg.ForecastHorizonPeriods, cfg.SellUncertaintyRate, Deflate)

	ev.gti, ev.gtiSrc = FloorGTI(snap)
	ev.class = ClassifySolar(ev.gti, cfg)
	ev.premium = EveningPremium(snap.BuyForecast, snap.SellForecast, snap.Hour, cfg)
	ev.floor = ComputeFloor(ev.class, ev.premium, snap, cfg)

	ev.plan = PlanCharge(snap, ev.floor.ExportFloorSOC, ev.buyDisc, ev.sellDisc, cfg)

	ev.availSOC = snap.SOC - ev.floor.ExportFloorSOC
	if ev.availSOC < 0 {
		ev.availSOC = 0
	}
	ev.availKWh = snap.EnergyAboveKWh(ev.floor.ExportFloorSOC)
	ev.thr = SellThreshold(snap, ev.availKWh, ev.sellDisc, ev.buyDisc, cfg)

	if InWrappingWindow(float64(snap.Hour), float64(cfg.PeakStart), snap.SunriseHour) {
		ev.opp = AnalyzeOvernight(snap, ev.sellDisc, cfg)
	}
	if snap.Hour < cfg.PeakStart && snap.SOC < 100 {
		ev.nextBuy = NextBest(ev.buyDisc, snap.Hour, float64(cfg.PeakStart))
	}
	return ev
}
