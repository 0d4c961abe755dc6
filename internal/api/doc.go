// Package api implements the HTTP REST API and WebSocket server for the
// heater daemon.
//
// This package provides:
//   - REST endpoints for device summary, sensor reads and writes, and
//     power commands
//   - WebSocket hub broadcasting poller updates to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API server sits in front of the heater facade. Reads are served from
// the facade's sensor cache or fetched live from the module; writes and
// commands go straight to the device and return once the module acknowledges
// them. When a poller is running, its refresh cycles are relayed to
// WebSocket clients on the "device.update" channel.
//
// # Graceful Degradation
//
// The server operates before the device has initialised: reads and commands
// return 503 until the first successful refresh, and the health endpoint
// stays up throughout.
package api
