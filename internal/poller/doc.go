// Package poller drives periodic refreshes of a 4heat device.
//
// The poller owns the refresh cadence: it refreshes the device snapshot
// on a fixed interval, tolerates a configurable number of consecutive
// failures before declaring the device unavailable, and fans out each
// snapshot to registered listeners (MQTT bridge, InfluxDB history,
// WebSocket hub).
//
// A refresh cycle never overlaps with the previous one. If a cycle runs
// long, the next tick is simply skipped.
//
// # Usage
//
//	p := poller.New(device, cfg.Poller, logger)
//	p.OnUpdate(func(u poller.Update) {
//	    // publish u.Sensors somewhere
//	})
//	go p.Run(ctx)
package poller
