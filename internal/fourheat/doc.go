// Package fourheat implements the protocol driver for 4heat stove and
// boiler controllers.
//
// 4heat modules speak a flat, line-oriented protocol over a raw TCP socket:
// the client sends a bracketed list of double-quoted string tokens, the
// module answers with a single bracketed list whose first element is a
// status character and whose remaining elements are fixed-width sensor
// tokens. Each exchange uses a fresh connection; the module does not
// support connection reuse.
//
// # Architecture
//
// The package is split into four cooperating pieces:
//
//   - CommandTable / query builder: maps logical command names (info, get,
//     set, on, off, unblock) to the base token sequence for the configured
//     firmware mode.
//   - Transport (Exchanger): one request/response round trip per TCP
//     connection, bounded by a deadline.
//   - Response parser: pure translation of the bracketed response text into
//     a typed Response with sensor readings.
//   - Client: serialises concurrent callers so at most one command is in
//     flight, enforces a post-failure cooldown, and validates command
//     acknowledgements.
//
// Device sits on top of Client and owns the sensor map, exposing the
// initialise/refresh/read/write surface consumed by the poller, the MQTT
// bridge and the HTTP API.
//
// # Token Format
//
// Sensor tokens are fixed width: a type character, a 5-character sensor id
// and a 12-digit zero-padded value, e.g. "B12345000000000007" writes 7 to
// sensor 12345. Type I is a read, B a write, A an acknowledgement; J-typed
// sensors are read only.
//
// # Known Firmware Quirks
//
// The module wedges when it receives commands too soon after a failed
// exchange, so the client blocks new commands for a recovery window after
// any communication error. It also rejects single-quoted request tokens
// with an empty answer, which is why request framing always uses double
// quotes.
//
// # Thread Safety
//
// Client and Device are safe for concurrent use from multiple goroutines.
// The parser and query builder are pure and stateless.
package fourheat
