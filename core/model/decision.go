package model

// Action is the control command returned to the inverter host.
type Action string

const (
	ActionAuto      Action = "auto"
	ActionImport    Action = "import"
	ActionExport    Action = "export"
	ActionCharge    Action = "charge"
	ActionDischarge Action = "discharge"
	// ActionCurtail keeps the inverter in auto mode while the host applies a
	// solar curtailment override through its API.
	ActionCurtail  Action = "auto_api_curtail"
	ActionFullStop Action = "fullstop"
)

// SolarMode is the optional solar handling hint attached to a decision.
type SolarMode string

const (
	SolarExport   SolarMode = "export"
	SolarCurtail  SolarMode = "curtail"
	SolarMaximize SolarMode = "maximize"
)

// MaxReasonLen bounds the reason string forwarded to the host display.
const MaxReasonLen = 256

// Decision is the single outcome of one dispatch-interval evaluation.
type Decision struct {
	EvaluationID string `json:"evaluation_id"`
	Site         string `json:"site,omitempty"`
	Action       Action `json:"action"`
	Reason       string `json:"reason"`
	Priority     int    `json:"priority"`
	Rule         string `json:"rule"`

	// FeedInLimitW caps grid export in watts when set.
	FeedInLimitW *float64  `json:"feed_in_power_limitation,omitempty"`
	Solar        SolarMode `json:"solar,omitempty"`
}

// Truncate bounds the reason to MaxReasonLen characters.
func (d *Decision) Truncate() {
	if len(d.Reason) > MaxReasonLen {
		d.Reason = d.Reason[:MaxReasonLen]
	}
}

// FeedInLimit is a convenience constructor for the optional export cap.
func FeedInLimit(w float64) *float64 { return &w }
