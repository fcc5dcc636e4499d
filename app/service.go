package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mpons/battarb/config"
	coremetrics "github.com/mpons/battarb/core/metrics"
	"github.com/mpons/battarb/core/rules"
	"github.com/mpons/battarb/core/strategy"
	"github.com/mpons/battarb/infra/logger"
	"github.com/mpons/battarb/infra/metrics"
	"github.com/mpons/battarb/infra/mqtt"
)

// Service wires the evaluator, the MQTT transport and the metrics sinks.
type Service struct {
	client   *mqtt.PahoClient
	sink     coremetrics.Sink
	log      logger.Logger
	promAddr string
}

// NewEvaluator builds the configured policy: the dynamic arbitrage pipeline
// or a regional rule table.
func NewEvaluator(cfg *config.Config, sink coremetrics.Sink) (strategy.Evaluator, error) {
	switch cfg.Policy.Mode {
	case "rules":
		table, err := cfg.Policy.ResolveTable()
		if err != nil {
			return nil, err
		}
		return rules.New(table, cfg.Strategy, logger.New("rules"), sink), nil
	default:
		return strategy.New(cfg.Strategy, logger.New("strategy"), sink), nil
	}
}

// New creates a Service from the configuration and connects it to the
// broker.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sink, err := metrics.NewSink(cfg.Metrics, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	eval, err := NewEvaluator(cfg, sink)
	if err != nil {
		return nil, err
	}

	handler := mqtt.NewHandler(eval, nil, logger.New("snapshot-handler"))
	client, err := mqtt.NewPahoClient(cfg.MQTT, handler.OnSnapshot)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	handler.SetPublisher(client)

	return &Service{
		client:   client,
		sink:     sink,
		log:      logg,
		promAddr: cfg.Metrics.PromAddr,
	}, nil
}

// Run blocks until the context is cancelled, serving the Prometheus
// endpoint when configured.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("service running")
	<-ctx.Done()
	return nil
}

// Close releases the broker connection and the metrics sinks.
func (s *Service) Close() error {
	s.client.Disconnect()
	return s.sink.Close()
}
