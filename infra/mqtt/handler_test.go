package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/mpons/battarb/core/model"
)

type fakeEvaluator struct {
	decision model.Decision
	raws     []model.RawSnapshot
}

func (f *fakeEvaluator) Evaluate(raw model.RawSnapshot) model.Decision {
	f.raws = append(f.raws, raw)
	d := f.decision
	d.Site = raw.SiteID
	return d
}

type fakePublisher struct {
	sites    []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) PublishDecision(site string, payload []byte) error {
	f.sites = append(f.sites, site)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestHandlerEvaluatesAndPublishes(t *testing.T) {
	eval := &fakeEvaluator{decision: model.Decision{
		EvaluationID: "e1", Action: model.ActionExport, Reason: "Spike 40.0c >= 35c", Rule: "spike_sell", Priority: 100,
	}}
	pub := &fakePublisher{}
	h := NewHandler(eval, pub, nil)

	payload := []byte(`{"site_id":"s7","sell_price":40.0,"battery_soc":60.0}`)
	h.Handle("battarb/site/s7/interval", payload)

	if len(eval.raws) != 1 {
		t.Fatalf("expected one evaluation got %d", len(eval.raws))
	}
	if len(pub.sites) != 1 || pub.sites[0] != "s7" {
		t.Fatalf("expected publish to s7, got %v", pub.sites)
	}
	var d model.Decision
	if err := json.Unmarshal(pub.payloads[0], &d); err != nil {
		t.Fatalf("decode published decision: %v", err)
	}
	if d.Action != model.ActionExport || d.Rule != "spike_sell" {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestHandlerFillsSiteFromTopic(t *testing.T) {
	eval := &fakeEvaluator{decision: model.Decision{Action: model.ActionAuto, Reason: "x"}}
	pub := &fakePublisher{}
	h := NewHandler(eval, pub, nil)

	// Payload without a site id: the topic segment supplies it.
	h.Handle("battarb/site/s3/interval", []byte(`{"sell_price":1.0}`))
	if len(eval.raws) != 1 || eval.raws[0].SiteID != "s3" {
		t.Fatalf("expected site from topic, got %+v", eval.raws)
	}
}

func TestHandlerDecodeFailureDegradesToAuto(t *testing.T) {
	eval := &fakeEvaluator{decision: model.Decision{Action: model.ActionExport}}
	pub := &fakePublisher{}
	h := NewHandler(eval, pub, nil)

	h.Handle("battarb/site/s9/interval", []byte(`{not json`))

	if len(eval.raws) != 0 {
		t.Fatal("evaluator must not run on undecodable payloads")
	}
	if len(pub.payloads) != 1 {
		t.Fatal("a decision must still be published")
	}
	var d model.Decision
	if err := json.Unmarshal(pub.payloads[0], &d); err != nil {
		t.Fatalf("decode published decision: %v", err)
	}
	if d.Action != model.ActionAuto || d.Rule != "decode_error" {
		t.Fatalf("expected auto fallback, got %+v", d)
	}
	if d.Site != "s9" || d.EvaluationID == "" {
		t.Fatalf("fallback decision must be addressed and stamped, got %+v", d)
	}
}

func TestHandlerWithoutPublisherDropsQuietly(t *testing.T) {
	eval := &fakeEvaluator{decision: model.Decision{Action: model.ActionAuto, Reason: "x"}}
	h := NewHandler(eval, nil, nil)
	// Must not panic before SetPublisher.
	h.Handle("battarb/site/s1/interval", []byte(`{}`))

	pub := &fakePublisher{}
	h.SetPublisher(pub)
	h.Handle("battarb/site/s1/interval", []byte(`{}`))
	if len(pub.payloads) != 1 {
		t.Fatalf("expected publish after SetPublisher, got %d", len(pub.payloads))
	}
}

func TestSiteFromTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"battarb/site/s1/interval", "s1"},
		{"custom/prefix/site/abc/interval", "abc"},
		{"battarb/site", ""},
		{"no/match/here", ""},
	}
	for _, c := range cases {
		if got := SiteFromTopic(c.topic); got != c.want {
			t.Fatalf("SiteFromTopic(%q) = %q, want %q", c.topic, got, c.want)
		}
	}
}
