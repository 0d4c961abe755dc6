// Package influxdb provides InfluxDB connectivity for the 4heat daemon.
//
// It wraps the official influxdb-client-go v2 library with daemon-specific
// patterns for connection management, sensor history writing, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Sensor readings collected by the poller
//   - Burner status transitions
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "home",
//	    Bucket: "fourheat",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Write sensor history
//	client.WriteSensorReading("stove", "30001", "I", 3)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
