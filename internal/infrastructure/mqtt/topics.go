package mqtt

import "fmt"

// Topic prefix for all daemon topics.
//
// The topic scheme is fourheat/{device}/{category}[/{detail}].
const (
	// TopicPrefix is the base for all topics published by the daemon.
	TopicPrefix = "fourheat"
)

// Topics provides builders for daemon MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.SensorState("stove", "30001")
//	// Returns: "fourheat/stove/sensor/30001"
type Topics struct{}

// Availability returns the availability topic for a device. The daemon
// publishes "online"/"offline" here, and registers the same topic as its
// MQTT last-will so brokers mark the device offline on unclean disconnect.
//
// Example: fourheat/stove/availability
func (Topics) Availability(device string) string {
	return fmt.Sprintf("%s/%s/availability", TopicPrefix, device)
}

// Status returns the burner status topic for a device.
//
// Example: fourheat/stove/status
func (Topics) Status(device string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, device)
}

// SensorState returns the state topic for one sensor of a device.
//
// Example: fourheat/stove/sensor/30001
func (Topics) SensorState(device, sensorID string) string {
	return fmt.Sprintf("%s/%s/sensor/%s", TopicPrefix, device, sensorID)
}

// Command returns the topic the daemon listens on for control commands
// (on, off, unblock).
//
// Example: fourheat/stove/command
func (Topics) Command(device string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, device)
}

// SensorSet returns the topic the daemon listens on for sensor writes.
//
// Example: fourheat/stove/sensor/00300/set
func (Topics) SensorSet(device, sensorID string) string {
	return fmt.Sprintf("%s/%s/sensor/%s/set", TopicPrefix, device, sensorID)
}

// AllSensorStates returns a pattern matching every sensor state topic of
// a device.
//
// Pattern: fourheat/stove/sensor/+
func (Topics) AllSensorStates(device string) string {
	return fmt.Sprintf("%s/%s/sensor/+", TopicPrefix, device)
}

// AllSensorSets returns a pattern matching every sensor write topic of a
// device.
//
// Pattern: fourheat/stove/sensor/+/set
func (Topics) AllSensorSets(device string) string {
	return fmt.Sprintf("%s/%s/sensor/+/set", TopicPrefix, device)
}

// AllTopics returns a pattern matching all daemon topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: fourheat/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
