// Package bridge connects a 4heat device to MQTT.
//
// Outbound, it republishes poller snapshots: burner status on the status
// topic and each sensor reading on its own retained state topic, plus
// availability transitions when the retry budget is exhausted.
//
// Inbound, it subscribes to the command topic ("on", "off", "unblock")
// and per-sensor set topics, translating messages into device calls.
package bridge
