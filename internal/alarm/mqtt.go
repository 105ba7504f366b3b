package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/logging"
)

const (
	mqttQoS             = 1
	mqttDisconnectQuiet = 250 // milliseconds
	mqttClientIDPrefix  = "ecopredict-"
)

// ErrInvalidPayload is returned for usage messages that carry no usable number.
var ErrInvalidPayload = errors.New("invalid usage payload")

// MQTTSource reads usage percentages published by a smart meter or hub.
// Payloads are either a bare number ("72.5") or a JSON object with a
// "usage" or "usage_percent" field.
type MQTTSource struct {
	broker   string
	topic    string
	clientID string

	client mqtt.Client

	mu     sync.Mutex
	latest *float64
	notify chan struct{}
}

// NewMQTTSource returns an unconnected source for the alarm MQTT config.
func NewMQTTSource(cfg config.MQTTConfig) *MQTTSource {
	id := cfg.ClientID
	if id == "" {
		id = mqttClientIDPrefix + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return &MQTTSource{
		broker:   cfg.Broker,
		topic:    cfg.Topic,
		clientID: id,
		notify:   make(chan struct{}, 1),
	}
}

// Connect dials the broker and subscribes to the usage topic. The
// subscription is renewed on every reconnect.
func (s *MQTTSource) Connect(ctx context.Context) error {
	if s.broker == "" {
		return errors.New("mqtt broker is not configured")
	}
	if s.topic == "" {
		return errors.New("mqtt topic is not configured")
	}

	log := logging.FromContext(ctx)
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			tok := c.Subscribe(s.topic, mqttQoS, s.onMessage)
			tok.Wait()
			if err := tok.Error(); err != nil {
				log.Error().Str("component", "alarm").Str("topic", s.topic).Err(err).Msg("mqtt subscribe failed")
				return
			}
			log.Info().Str("component", "alarm").Str("topic", s.topic).Msg("subscribed to usage topic")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Str("component", "alarm").Err(err).Msg("mqtt connection lost")
		})

	s.client = mqtt.NewClient(opts)
	tok := s.client.Connect()
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("connecting to mqtt broker %s: %w", s.broker, err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(mqttDisconnectQuiet)
	}
}

// Next returns the latest reading, waiting for the first one to arrive.
func (s *MQTTSource) Next(ctx context.Context) (float64, error) {
	for {
		s.mu.Lock()
		latest := s.latest
		s.mu.Unlock()
		if latest != nil {
			return *latest, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.notify:
		}
	}
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	_ = s.ingest(msg.Payload())
}

// ingest parses payload and records it as the latest reading.
func (s *MQTTSource) ingest(payload []byte) error {
	v, err := ParseUsagePayload(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.latest = &v
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// ParseUsagePayload extracts a usage percentage from a message body.
func ParseUsagePayload(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return 0, ErrInvalidPayload
	}

	var v float64
	if strings.HasPrefix(text, "{") {
		var body struct {
			Usage        *float64 `json:"usage"`
			UsagePercent *float64 `json:"usage_percent"`
		}
		if err := json.Unmarshal([]byte(text), &body); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		switch {
		case body.Usage != nil:
			v = *body.Usage
		case body.UsagePercent != nil:
			v = *body.UsagePercent
		default:
			return 0, fmt.Errorf("%w: missing usage field", ErrInvalidPayload)
		}
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPayload, text)
		}
		v = f
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, v)
	}
	return v, nil
}
