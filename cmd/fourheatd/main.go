// fourheatd is a daemon for 4heat-based pellet stoves and boilers.
//
// It speaks the module's TCP protocol directly and exposes the heater
// through a REST/WebSocket API, an MQTT bridge, and optional InfluxDB
// telemetry. A background poller keeps the sensor table fresh.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberlink/fourheat-core/internal/api"
	"github.com/emberlink/fourheat-core/internal/bridge"
	"github.com/emberlink/fourheat-core/internal/fourheat"
	"github.com/emberlink/fourheat-core/internal/infrastructure/config"
	"github.com/emberlink/fourheat-core/internal/infrastructure/influxdb"
	"github.com/emberlink/fourheat-core/internal/infrastructure/logging"
	"github.com/emberlink/fourheat-core/internal/infrastructure/mqtt"
	"github.com/emberlink/fourheat-core/internal/poller"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting fourheatd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Create the device facade. No connection is held open; the client
	// dials the module once per exchange.
	dev, err := fourheat.NewDevice(ctx, cfg.Device.Name, fourheat.ConnectionOptions{
		Host:   cfg.Device.Host,
		Port:   cfg.Device.Port,
		Legacy: cfg.Device.Legacy,
	})
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	dev.SetLogger(log)
	log.Info("device configured",
		"name", cfg.Device.Name,
		"address", fmt.Sprintf("%s:%d", cfg.Device.Host, cfg.Device.Port),
		"legacy", cfg.Device.Legacy,
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Device.Name)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Poller keeps the sensor table fresh and feeds the MQTT bridge,
	// telemetry, and WebSocket broadcasts.
	var devicePoller *poller.Poller
	if cfg.Poller.Enabled {
		devicePoller = poller.New(dev, cfg.Poller, log)
	} else {
		log.Info("poller disabled")
		// Without a poller nothing else drives initialisation; take one
		// best-effort attempt so the API can serve a warm cache. The
		// device may simply be powered off, so failure is not fatal.
		if err := dev.Initialize(ctx); err != nil {
			log.Warn("initial device contact failed", "error", err)
		}
	}

	// MQTT bridge publishes poller updates and accepts inbound commands.
	if mqttClient != nil {
		br := bridge.New(cfg.Device.Name, dev, mqttClient, byte(cfg.MQTT.QoS), log)
		if err := br.Start(); err != nil {
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
		log.Info("MQTT bridge started", "device", cfg.Device.Name)

		if devicePoller != nil {
			devicePoller.OnUpdate(br.HandleUpdate)
		}
	}

	// Telemetry: write successful refresh cycles to InfluxDB.
	if influxClient != nil && devicePoller != nil {
		devicePoller.OnUpdate(func(u poller.Update) {
			if u.Err != nil || !u.Available {
				return
			}
			influxClient.WriteStatus(cfg.Device.Name, u.Status)
			for id, sensor := range u.Sensors {
				influxClient.WriteSensorReading(cfg.Device.Name, id, sensor.Type, sensor.Value)
			}
		})
	}

	// Start API server
	apiDeps := api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Device:  dev,
		Version: version,
	}
	if devicePoller != nil {
		apiDeps.Availability = devicePoller
	}
	apiServer, err := api.New(apiDeps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Relay poller updates to WebSocket clients, then start polling.
	if devicePoller != nil {
		devicePoller.OnUpdate(func(u poller.Update) {
			payload := map[string]any{
				"available": u.Available,
				"status":    u.Status,
				"sensors":   u.Sensors,
				"time":      u.Time,
			}
			if u.Err != nil {
				payload["error"] = u.Err.Error()
			}
			apiServer.Broadcast(api.ChannelDeviceUpdate, payload)
		})
		go devicePoller.Run(ctx)
		log.Info("poller started",
			"interval_seconds", cfg.Poller.Interval,
			"retry_budget", cfg.Poller.RetryBudget,
		)
	}

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, apiServer, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)

	log.Info("fourheatd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FOURHEAT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FOURHEAT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
// MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, apiServer *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
