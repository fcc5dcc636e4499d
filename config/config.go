package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mpons/battarb/core/rules"
	"github.com/mpons/battarb/core/strategy"
	"github.com/mpons/battarb/infra/metrics"
	"github.com/mpons/battarb/infra/mqtt"
)

// Config is the full service configuration.
type Config struct {
	MQTT     mqtt.Config     `json:"mqtt"`
	Strategy strategy.Config `json:"strategy"`
	Policy   PolicyConfig    `json:"policy"`
	Metrics  metrics.Config  `json:"metrics"`
}

// PolicyConfig selects the evaluator: the dynamic arbitrage pipeline (the
// default) or a regional rule table.
type PolicyConfig struct {
	// Mode is "arbitrage" or "rules".
	Mode string `json:"mode"`
	// Region names a builtin rule table ("nsw", "vic") when Mode is "rules"
	// and no explicit table is given.
	Region string `json:"region"`
	// Table is an inline rule table overriding the builtin presets.
	Table *rules.Table `json:"table,omitempty"`
}

// SetDefaults applies the arbitrage default.
func (c *PolicyConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "arbitrage"
	}
}

// Validate checks the policy selection.
func (c PolicyConfig) Validate() error {
	switch c.Mode {
	case "arbitrage":
		return nil
	case "rules":
		if c.Table != nil {
			return c.Table.Validate()
		}
		if _, ok := rules.Builtin(c.Region); !ok {
			return fmt.Errorf("unknown rules region %q", c.Region)
		}
		return nil
	default:
		return fmt.Errorf("unknown policy mode %q", c.Mode)
	}
}

// ResolveTable returns the effective rule table for Mode "rules".
func (c PolicyConfig) ResolveTable() (rules.Table, error) {
	if c.Table != nil {
		return *c.Table, c.Table.Validate()
	}
	t, ok := rules.Builtin(c.Region)
	if !ok {
		return rules.Table{}, fmt.Errorf("unknown rules region %q", c.Region)
	}
	return t, nil
}

// Load reads the configuration file (YAML or JSON, by extension) and applies
// BATTARB_ environment overrides, "__" separating nesting levels.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BATTARB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "battarb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Strategy.SetDefaults()
	cfg.Policy.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Strategy.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
