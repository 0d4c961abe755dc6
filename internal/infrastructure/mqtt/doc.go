// Package mqtt provides MQTT client connectivity for the 4heat daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for availability reporting
//   - Connection health monitoring
//
// # Architecture
//
// The daemon publishes device state to MQTT so home automation systems
// can consume it without speaking the 4heat wire protocol, and accepts
// control commands on a command topic.
//
//	fourheatd ↔ MQTT Broker ↔ Home automation / dashboards
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.Name)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to control commands
//	err = client.Subscribe(mqtt.Topics{}.Command("stove"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a sensor reading
//	topic := mqtt.Topics{}.SensorState("stove", "30001")
//	client.Publish(topic, []byte(`{"value":1}`), 1, true)
package mqtt
