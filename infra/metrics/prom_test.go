package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/mpons/battarb/core/metrics"
	"github.com/mpons/battarb/core/model"
)

func TestPromSinkRecordsDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	rec := coremetrics.DecisionRecord{
		Time: time.Now(), Site: "s1", Action: model.ActionExport, Rule: "spike_sell",
		SOC: 55, ExportFloorSOC: 40, ExportBudgetKWh: 12.5, SellThreshold: 8, SellPrice: 30,
	}
	if err := sink.RecordDecision(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := testutil.ToFloat64(sink.decisions.WithLabelValues("s1", "export", "spike_sell")); got != 1 {
		t.Fatalf("expected counter 1 got %v", got)
	}
	if got := testutil.ToFloat64(sink.soc.WithLabelValues("s1")); got != 55 {
		t.Fatalf("expected soc gauge 55 got %v", got)
	}
	if got := testutil.ToFloat64(sink.threshold.WithLabelValues("s1")); got != 8 {
		t.Fatalf("expected threshold gauge 8 got %v", got)
	}
}

func TestPromSinkReusesExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
	if err := sink.RecordDecision(coremetrics.DecisionRecord{Site: "s1", Action: model.ActionAuto, Rule: "default"}); err != nil {
		t.Fatalf("record: %v", err)
	}
}
