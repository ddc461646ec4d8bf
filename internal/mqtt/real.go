package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/status"
)

// bufferCap bounds how many messages are held while disconnected.
// Status messages supersede each other anyway; a small window is only
// there to preserve lifecycle events across a broker blip.
const bufferCap = 32

// RealPublisher publishes to an actual MQTT broker. While the broker
// is unreachable, messages are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	log    *zap.Logger

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker address
// (e.g. "tcp://192.168.1.200:1883"). The connection is established in
// the background and retried until Close.
func NewRealPublisher(broker, clientID string, log *zap.Logger) *RealPublisher {
	p := &RealPublisher{
		log: log,
		buf: newRingBuffer(bufferCap),
	}

	if clientID == "" {
		clientID = "plugwatch"
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn("mqtt connection lost", zap.Error(err))
		})

	p.client = paho.NewClient(opts)
	// Fire and forget: the retry loop keeps trying, and publishes
	// buffer until it succeeds.
	p.client.Connect()
	return p
}

// onConnect replays messages buffered while disconnected.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs, dropped := p.buf.drainAll()
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Warn("mqtt buffer overflowed while disconnected", zap.Int("dropped", dropped))
	}
	if len(msgs) == 0 {
		p.log.Info("mqtt connected")
		return
	}
	p.log.Info("mqtt connected, replaying buffered messages", zap.Int("count", len(msgs)))
	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			p.log.Warn("mqtt replay failed", zap.String("topic", m.topic), zap.Error(token.Error()))
		}
	}
}

// PublishStatus sends the latest status, retained, QoS 0. While
// disconnected the newest status is buffered for replay.
func (p *RealPublisher) PublishStatus(st status.Status) error {
	payload, err := FormatStatusPayload(st)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	return p.publish(TopicStatus, 0, true, payload)
}

// PublishSystem sends a lifecycle event, QoS 1 so shutdown events
// survive a flaky link.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buf.len()
		p.mu.Unlock()
		return fmt.Errorf("not connected, buffered (%d pending)", n)
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds to flush in-flight messages
	return nil
}
