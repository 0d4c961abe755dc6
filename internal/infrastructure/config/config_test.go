package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
device:
  name: "stove"
  host: "192.168.1.50"
  port: 80
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Host != "192.168.1.50" {
		t.Errorf("Device.Host = %q, want %q", cfg.Device.Host, "192.168.1.50")
	}

	if cfg.Device.Name != "stove" {
		t.Errorf("Device.Name = %q, want %q", cfg.Device.Name, "stove")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
device:
  host: ""
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty device.host, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	validDevice := DeviceConfig{Name: "stove", Host: "192.168.1.50", Port: 80}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 30, RetryBudget: 3},
				MQTT:   MQTTConfig{QoS: 1},
				API:    APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "missing device host",
			config: &Config{
				Device: DeviceConfig{Name: "stove", Port: 80},
				Poller: PollerConfig{Interval: 30},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing device name",
			config: &Config{
				Device: DeviceConfig{Host: "192.168.1.50", Port: 80},
				Poller: PollerConfig{Interval: 30},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid device port",
			config: &Config{
				Device: DeviceConfig{Name: "stove", Host: "192.168.1.50", Port: 0},
				Poller: PollerConfig{Interval: 30},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "zero poll interval",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 0},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "negative retry budget",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 30, RetryBudget: -1},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 30},
				MQTT:   MQTTConfig{QoS: 3},
				API:    APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid API port low",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 30},
				MQTT:   MQTTConfig{QoS: 1},
				API:    APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid API port high",
			config: &Config{
				Device: validDevice,
				Poller: PollerConfig{Interval: 30},
				MQTT:   MQTTConfig{QoS: 1},
				API:    APIConfig{Port: 70000},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("FOURHEAT_DEVICE_HOST", "192.168.1.99")
	t.Setenv("FOURHEAT_DEVICE_PORT", "8000")
	t.Setenv("FOURHEAT_MQTT_HOST", "mqtt.example.com")
	t.Setenv("FOURHEAT_MQTT_USERNAME", "testuser")
	t.Setenv("FOURHEAT_MQTT_PASSWORD", "testpass")
	t.Setenv("FOURHEAT_API_HOST", "192.168.1.1")
	t.Setenv("FOURHEAT_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Device.Host != "192.168.1.99" {
		t.Errorf("Device.Host = %q, want %q", cfg.Device.Host, "192.168.1.99")
	}

	if cfg.Device.Port != 8000 {
		t.Errorf("Device.Port = %d, want 8000", cfg.Device.Port)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Device.Port != 80 {
		t.Errorf("defaultConfig Device.Port = %d, want 80", cfg.Device.Port)
	}

	if cfg.Poller.RetryBudget != 3 {
		t.Errorf("defaultConfig Poller.RetryBudget = %d, want 3", cfg.Poller.RetryBudget)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
