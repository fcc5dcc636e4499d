package mqtt

import (
	"encoding/json"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mpons/battarb/core/model"
	"github.com/mpons/battarb/core/strategy"
	"github.com/mpons/battarb/infra/logger"
)

// DecisionPublisher sends one encoded decision to a site's decision topic.
type DecisionPublisher interface {
	PublishDecision(site string, payload []byte) error
}

// Handler decodes interval snapshots, evaluates them and publishes the
// resulting decision.
type Handler struct {
	eval strategy.Evaluator
	log  logger.Logger

	mu  sync.RWMutex
	pub DecisionPublisher
}

func NewHandler(eval strategy.Evaluator, pub DecisionPublisher, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{eval: eval, pub: pub, log: log}
}

// SetPublisher installs the publisher after the client exists. The handler
// is registered as the subscription callback before the client connects, so
// the publisher arrives one step later.
func (h *Handler) SetPublisher(pub DecisionPublisher) {
	h.mu.Lock()
	h.pub = pub
	h.mu.Unlock()
}

func (h *Handler) publisher() DecisionPublisher {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pub
}

// OnSnapshot is the paho message callback for the snapshot subscription.
func (h *Handler) OnSnapshot(_ paho.Client, msg paho.Message) {
	h.Handle(msg.Topic(), msg.Payload())
}

// Handle processes one snapshot payload. A payload that cannot be decoded
// still produces a decision: the inverter must never be left without an
// instruction, so decode failures degrade to auto.
func (h *Handler) Handle(topic string, payload []byte) {
	site := SiteFromTopic(topic)

	var raw model.RawSnapshot
	var d model.Decision
	if err := json.Unmarshal(payload, &raw); err != nil {
		h.log.Errorf("decode snapshot on %s: %v", topic, err)
		d = model.Decision{
			EvaluationID: uuid.NewString(),
			Site:         site,
			Action:       model.ActionAuto,
			Priority:     1,
			Rule:         "decode_error",
			Reason:       "snapshot decode failed, defaulting to auto",
		}
	} else {
		if raw.SiteID == "" {
			raw.SiteID = site
		}
		d = h.eval.Evaluate(raw)
	}
	if d.Site == "" {
		d.Site = site
	}

	out, err := json.Marshal(d)
	if err != nil {
		h.log.Errorf("encode decision for %s: %v", d.Site, err)
		return
	}
	pub := h.publisher()
	if pub == nil {
		h.log.Warnf("no publisher yet, dropping decision for %s", d.Site)
		return
	}
	if err := pub.PublishDecision(d.Site, out); err != nil {
		h.log.Errorf("publish decision for %s: %v", d.Site, err)
	}
}

// SiteFromTopic extracts the site id from a "<prefix>/site/<id>/interval"
// style topic, empty when the layout does not match.
func SiteFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	for i, p := range parts {
		if p == "site" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
