// Package mqttbus publishes simulation snapshots, narration and map camera
// commands to an MQTT broker for the presentation layer.
package mqttbus

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

const (
	DefaultTopicPrefix = "emergency"
	DefaultClientID    = "emergency-priority"

	TopicSnapshot  = "snapshot"
	TopicNarration = "narration"
	TopicViewport  = "viewport"

	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Config holds broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Client is the subset of mqtt.Client the bus publishes through.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Bus implements the simulation Publisher, Narrator and MapViewport
// collaborators on top of MQTT. Publishing never blocks the caller.
type Bus struct {
	client Client
	prefix string
	close  func()
}

// Connect dials the broker.
func Connect(cfg Config) (*Bus, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.WithField("broker", cfg.Broker).Info("Connected to MQTT broker")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	b := New(client, cfg.TopicPrefix)
	b.close = func() { client.Disconnect(250) }
	return b, nil
}

// New wraps an already connected client.
func New(client Client, prefix string) *Bus {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Bus{client: client, prefix: strings.TrimRight(prefix, "/")}
}

// Close disconnects from the broker.
func (b *Bus) Close() {
	if b.close != nil {
		b.close()
	}
}

// Topic returns the full topic name for a suffix.
func (b *Bus) Topic(suffix string) string {
	return b.prefix + "/" + suffix
}

func (b *Bus) send(suffix string, retained bool, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("topic", suffix).Error("Failed to encode MQTT payload")
		return
	}
	topic := b.Topic(suffix)
	token := b.client.Publish(topic, 0, retained, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			log.WithField("topic", topic).Warn("MQTT publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("topic", topic).Warn("MQTT publish failed")
		}
	}()
}

// Publish sends a retained snapshot so late subscribers see the current state.
func (b *Bus) Publish(s models.Snapshot) {
	b.send(TopicSnapshot, true, s)
}

// NarrationMessage is the payload on the narration topic.
type NarrationMessage struct {
	Action string `json:"action"` // speak or cancel
	Text   string `json:"text,omitempty"`
}

func (b *Bus) Speak(text string) {
	b.send(TopicNarration, false, NarrationMessage{Action: "speak", Text: text})
}

func (b *Bus) Cancel() {
	b.send(TopicNarration, false, NarrationMessage{Action: "cancel"})
}

// ViewportMessage is the payload on the viewport topic.
type ViewportMessage struct {
	Action    string     `json:"action"` // fit_bounds, pan_to or set_zoom
	SouthWest *geo.Point `json:"south_west,omitempty"`
	NorthEast *geo.Point `json:"north_east,omitempty"`
	Center    *geo.Point `json:"center,omitempty"`
	Zoom      int        `json:"zoom,omitempty"`
}

func (b *Bus) FitBounds(southWest, northEast geo.Point) {
	b.send(TopicViewport, false, ViewportMessage{Action: "fit_bounds", SouthWest: &southWest, NorthEast: &northEast})
}

func (b *Bus) PanTo(p geo.Point) {
	b.send(TopicViewport, false, ViewportMessage{Action: "pan_to", Center: &p})
}

func (b *Bus) SetZoom(level int) {
	b.send(TopicViewport, false, ViewportMessage{Action: "set_zoom", Zoom: level})
}
