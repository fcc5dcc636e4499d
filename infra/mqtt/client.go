package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mpons/battarb/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string          `json:"broker" koanf:"broker"`
	ClientID   string          `json:"client_id" koanf:"client_id"`
	Username   string          `json:"username" koanf:"username"`
	Password   string          `json:"password" koanf:"password"`
	UseTLS     bool            `json:"use_tls" koanf:"use_tls"`
	ClientCert string          `json:"client_cert" koanf:"client_cert"`
	ClientKey  string          `json:"client_key" koanf:"client_key"`
	CABundle   string          `json:"ca_bundle" koanf:"ca_bundle"`
	AuthMethod string          `json:"auth_method" koanf:"auth_method"`
	QoS        map[string]byte `json:"qos" koanf:"qos"`
	LWTTopic   string          `json:"lwt_topic" koanf:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload" koanf:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos" koanf:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain" koanf:"lwt_retain"`
	MaxRetries int             `json:"max_retries" koanf:"max_retries"`
	BackoffMS  int             `json:"backoff_ms" koanf:"backoff_ms"`

	// SnapshotTopic is the subscription filter for interval snapshots; the
	// site id occupies the wildcard segment.
	SnapshotTopic string `json:"snapshot_topic" koanf:"snapshot_topic"`
	// DecisionTopicPrefix is the topic prefix decisions are published under,
	// completed with "<site>/decision".
	DecisionTopicPrefix string `json:"decision_topic_prefix" koanf:"decision_topic_prefix"`

	TLSConfig *tls.Config `json:"-" koanf:"-"`
}

// SetDefaults fills the topic layout and retry policy.
func (c *Config) SetDefaults() {
	if c.SnapshotTopic == "" {
		c.SnapshotTopic = "battarb/site/+/interval"
	}
	if c.DecisionTopicPrefix == "" {
		c.DecisionTopicPrefix = "battarb/site"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// pahoClient abstracts the Paho client for tests.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient wraps Eclipse Paho with the snapshot/decision topic layout and
// a retrying publisher.
type PahoClient struct {
	cli        pahoClient
	cfg        Config
	log        logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewPahoClient connects to the MQTT broker. The snapshot subscription is
// established on every (re)connect so it survives broker restarts.
func NewPahoClient(cfg Config, onSnapshot paho.MessageHandler) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		cfg:        cfg,
		log:        log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		qos := byte(0)
		if q, ok := cfg.QoS["snapshot"]; ok {
			qos = q
		}
		if token := c.Subscribe(cfg.SnapshotTopic, qos, onSnapshot); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// PublishDecision publishes the payload to the site's decision topic with
// exponential backoff on publish failures.
func (p *PahoClient) PublishDecision(site string, payload []byte) error {
	topic := fmt.Sprintf("%s/%s/decision", p.cfg.DecisionTopicPrefix, site)
	qos := byte(0)
	if q, ok := p.cfg.QoS["decision"]; ok {
		qos = q
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published decision to %s", topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
