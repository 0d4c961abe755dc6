package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading writes a single sensor reading to InfluxDB.
//
// This is the primary method for recording device telemetry data.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - device: Device name (e.g., "stove")
//   - sensorID: Five digit sensor identifier (e.g., "30001")
//   - sensorType: Sensor type marker from the wire protocol (e.g., "I", "J")
//   - value: The raw integer value reported by the module
//
// Example:
//
//	client.WriteSensorReading("stove", "30001", "I", 3)
func (c *Client) WriteSensorReading(device, sensorID, sensorType string, value int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fourheat_sensor",
		map[string]string{
			"device":    device,
			"sensor_id": sensorID,
			"type":      sensorType,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteStatus writes the burner status ("ON"/"OFF") as a point.
//
// Recording status transitions alongside sensor history makes it possible
// to correlate temperature curves with burn cycles.
func (c *Client) WriteStatus(device, status string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fourheat_status",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"status": status,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("daemon_stats",
//	    map[string]string{"host": "fourheatd-01"},
//	    map[string]interface{}{"poll_failures": 2})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
