package ofdmtransfer

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// eventPublisher announces frame-reception events over MQTT, grounded on
// the teacher's mqtt_publisher.go fire-and-forget publish pattern (one
// shared client, QoS 0, topic per event kind).
type eventPublisher struct {
	client mqtt.Client
	topic  string
}

var globalEvents *eventPublisher

type frameReceivedEvent struct {
	Session   string    `json:"session"`
	Bytes     int       `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// EnableMQTT connects to brokerURL and publishes one JSON event per
// received frame under topic, matching the optional "-Q" CLI flag of
// SPEC_FULL.md.
func EnableMQTT(brokerURL, topic string) error {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL).SetClientID("ofdm-transfer")
	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return wrapResourceError("mqtt connect", tok.Error())
	}
	globalEvents = &eventPublisher{client: client, topic: topic}
	return nil
}

func (p *eventPublisher) publishReceived(session uuid.UUID, bytesLen int) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(frameReceivedEvent{
		Session:   session.String(),
		Bytes:     bytesLen,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}
	p.client.Publish(fmt.Sprintf("%s/received", p.topic), 0, false, payload)
}
