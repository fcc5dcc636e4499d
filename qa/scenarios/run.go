package scenarios

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mpons/battarb/core/logger"
	"github.com/mpons/battarb/core/rules"
	"github.com/mpons/battarb/core/strategy"
	"github.com/mpons/battarb/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	var eval strategy.Evaluator
	if sc.Region != "" {
		table, ok := rules.Builtin(sc.Region)
		if !ok {
			t.Fatalf("scenario %s: unknown region %q", sc.Name, sc.Region)
		}
		eval = rules.New(table, strategy.Config{}, logger.NopLogger{}, sink)
	} else {
		eval = strategy.New(strategy.Config{}, logger.NopLogger{}, sink)
	}

	d := eval.Evaluate(sc.Snapshot.ToRaw())

	if string(d.Action) != sc.Expected.Action {
		t.Errorf("scenario %s expected action %q, got %q (%s)", sc.Name, sc.Expected.Action, d.Action, d.Reason)
	}
	if sc.Expected.Rule != "" && d.Rule != sc.Expected.Rule {
		t.Errorf("scenario %s expected rule %q, got %q (%s)", sc.Name, sc.Expected.Rule, d.Rule, d.Reason)
	}
	got, err := testutil.GatherAndCount(reg, "dispatch_decisions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != 1 {
		t.Errorf("scenario %s expected one recorded decision, got %d", sc.Name, got)
	}
}
