package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emberlink/fourheat-core/internal/infrastructure/mqtt"
	"github.com/emberlink/fourheat-core/internal/poller"
)

// commandTimeout bounds device calls triggered by MQTT messages.
const commandTimeout = 30 * time.Second

// Command payloads accepted on the command topic.
const (
	commandOn      = "on"
	commandOff     = "off"
	commandUnblock = "unblock"
)

// Broker is the subset of the MQTT client the bridge uses.
// Satisfied by *mqtt.Client.
type Broker interface {
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Controller is the subset of the device facade the bridge drives.
// Satisfied by *fourheat.Device.
type Controller interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Unblock(ctx context.Context) error
	Write(ctx context.Context, id string, value int) error
}

// Logger is the subset of logging.Logger the bridge uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// sensorPayload is the JSON published on sensor state topics.
type sensorPayload struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// Bridge republishes device state to MQTT and executes inbound commands.
type Bridge struct {
	device string
	ctrl   Controller
	broker Broker
	logger Logger
	topics mqtt.Topics
	qos    byte
}

// New creates a bridge for the named device.
func New(device string, ctrl Controller, broker Broker, qos byte, logger Logger) *Bridge {
	return &Bridge{
		device: device,
		ctrl:   ctrl,
		broker: broker,
		logger: logger,
		qos:    qos,
	}
}

// Start subscribes to the inbound command and sensor set topics.
func (b *Bridge) Start() error {
	if err := b.broker.Subscribe(b.topics.Command(b.device), b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to command topic: %w", err)
	}
	if err := b.broker.Subscribe(b.topics.AllSensorSets(b.device), b.qos, b.handleSensorSet); err != nil {
		return fmt.Errorf("subscribing to sensor set topics: %w", err)
	}
	b.logger.Info("mqtt bridge started", "device", b.device)
	return nil
}

// HandleUpdate publishes one poller snapshot. Register it as a poller
// listener.
func (b *Bridge) HandleUpdate(u poller.Update) {
	if !u.Available {
		// The availability topic carries the daemon's own liveness via
		// LWT; device unreachability is reported as UNKNOWN status.
		b.publish(b.topics.Status(b.device), []byte("UNKNOWN"))
		return
	}
	if u.Err != nil {
		// Failed cycle within the retry budget: keep the last
		// retained state.
		return
	}

	b.publish(b.topics.Status(b.device), []byte(u.Status))

	for id, sensor := range u.Sensors {
		payload, err := json.Marshal(sensorPayload{Type: sensor.Type, Value: sensor.Value})
		if err != nil {
			b.logger.Error("marshalling sensor payload", "sensor", id, "error", err)
			continue
		}
		b.publish(b.topics.SensorState(b.device, id), payload)
	}
}

func (b *Bridge) publish(topic string, payload []byte) {
	if err := b.broker.PublishRetained(topic, payload); err != nil {
		b.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

// handleCommand executes on/off/unblock messages from the command topic.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := strings.ToLower(strings.TrimSpace(string(payload)))
	b.logger.Info("mqtt command received", "device", b.device, "command", cmd)

	var err error
	switch cmd {
	case commandOn:
		err = b.ctrl.TurnOn(ctx)
	case commandOff:
		err = b.ctrl.TurnOff(ctx)
	case commandUnblock:
		err = b.ctrl.Unblock(ctx)
	default:
		return fmt.Errorf("unknown command %q on %s", cmd, topic)
	}
	if err != nil {
		return fmt.Errorf("executing %q: %w", cmd, err)
	}
	return nil
}

// handleSensorSet writes a sensor value from a set topic message.
// Topic shape: fourheat/{device}/sensor/{id}/set, payload is the value.
func (b *Bridge) handleSensorSet(topic string, payload []byte) error {
	id, ok := sensorIDFromTopic(topic)
	if !ok {
		return fmt.Errorf("malformed sensor set topic %q", topic)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return fmt.Errorf("sensor %s: non-numeric payload %q", id, payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	b.logger.Info("mqtt sensor write received", "device", b.device, "sensor", id, "value", value)

	if err := b.ctrl.Write(ctx, id, value); err != nil {
		return fmt.Errorf("writing sensor %s: %w", id, err)
	}
	return nil
}

// sensorIDFromTopic extracts the sensor id from a set topic.
func sensorIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[2] != "sensor" || parts[4] != "set" || parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
