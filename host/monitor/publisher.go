package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"laneswitch/core"
	"laneswitch/host/config"
	"laneswitch/host/logger"
)

// quiesce is the number of milliseconds to wait for in-flight work on
// disconnect.
const quiesce = 250

var (
	errConnectTimeout = errors.New("mqtt connect timed out")
	errPublishTimeout = errors.New("mqtt publish timed out")
)

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Connect opens a client connection to cfg.Broker.
func Connect(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	c := mqtt.NewClient(opts)
	t := c.Connect()
	if !t.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("%w: %s", errConnectTimeout, cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return c, nil
}

// Disconnect ends the connection opened by Connect.
func Disconnect(c mqtt.Client) {
	if c != nil {
		c.Disconnect(quiesce)
	}
}

// changeKey is the part of a status whose change triggers a publish.
// Step counters and uptime advance on every line and are left out.
type changeKey struct {
	Active    core.LaneID
	Armed     bool
	NeedFeed  bool
	Cooldown  bool
	Indicator core.Indicator
	Lanes     [2]laneKey
}

type laneKey struct {
	In, Out bool
	Mode    core.Mode
	Rate    uint32
	Fault   bool
}

func keyOf(s *core.Status) changeKey {
	k := changeKey{
		Active:    s.Active,
		Armed:     s.Armed,
		NeedFeed:  s.NeedFeed,
		Cooldown:  s.Cooldown,
		Indicator: s.Indicator,
	}
	for i, l := range s.Lanes {
		k.Lanes[i] = laneKey{In: l.In, Out: l.Out, Mode: l.Mode, Rate: l.Rate, Fault: l.Fault}
	}
	return k
}

// Publisher sends status snapshots as JSON to one topic: on every change
// of the lane state, and otherwise once per interval.
type Publisher struct {
	client Client
	cfg    config.MQTTConfig

	last   changeKey
	lastAt time.Time
	sent   bool
	now    func() time.Time
}

// NewPublisher creates a publisher on client.
func NewPublisher(client Client, cfg config.MQTTConfig) *Publisher {
	return &Publisher{client: client, cfg: cfg, now: time.Now}
}

// Due reports whether s must be published now.
func (p *Publisher) Due(s *core.Status) bool {
	if !p.sent {
		return true
	}
	if keyOf(s) != p.last {
		return true
	}
	return p.now().Sub(p.lastAt) >= p.cfg.Interval
}

// Publish sends s if it is due. It returns whether a message was sent.
func (p *Publisher) Publish(s *core.Status) (bool, error) {
	if !p.Due(s) {
		return false, nil
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("marshal status: %w", err)
	}

	t := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retained, payload)
	if !t.WaitTimeout(p.cfg.Timeout) {
		return false, errPublishTimeout
	}
	if err := t.Error(); err != nil {
		return false, fmt.Errorf("publish %s: %w", p.cfg.Topic, err)
	}

	p.last = keyOf(s)
	p.lastAt = p.now()
	p.sent = true
	return true, nil
}

// Run publishes from store until ctx is done. A failed publish is logged and
// retried with the next status.
func (p *Publisher) Run(ctx context.Context, store *Store) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	ctx = logger.WithName(ctx, "mqtt")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-store.Changed():
		case <-ticker.C:
		}

		s, ok := store.Latest()
		if !ok {
			continue
		}
		sent, err := p.Publish(&s)
		if err != nil {
			logger.ErrorKV(ctx, "publish failed", "topic", p.cfg.Topic, "error", err)
			continue
		}
		if sent {
			logger.DebugKV(ctx, "published", "topic", p.cfg.Topic, "state", s.Indicator.String())
		}
	}
}
