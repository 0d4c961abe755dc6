package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emberlink/fourheat-core/internal/fourheat"
	"github.com/emberlink/fourheat-core/internal/infrastructure/config"
	"github.com/emberlink/fourheat-core/internal/infrastructure/logging"
)

// stubDevice implements Device with scriptable results.
type stubDevice struct {
	initialized bool
	status      string
	sensors     map[string]fourheat.Sensor
	lastErr     error

	readErr    error
	writeErr   error
	commandErr error

	writes   map[string]int
	commands []string
}

func (d *stubDevice) Initialized() bool    { return d.initialized }
func (d *stubDevice) Status() string       { return d.status }
func (d *stubDevice) Model() string        { return "TestStove" }
func (d *stubDevice) Serial() string       { return "AB123" }
func (d *stubDevice) Manufacturer() string { return "4heat" }
func (d *stubDevice) LastError() error     { return d.lastErr }

func (d *stubDevice) Sensors() map[string]fourheat.Sensor {
	out := make(map[string]fourheat.Sensor, len(d.sensors))
	for k, v := range d.sensors {
		out[k] = v
	}
	return out
}

func (d *stubDevice) Read(_ context.Context, ids ...string) (map[string]fourheat.Sensor, error) {
	if d.readErr != nil {
		return nil, d.readErr
	}
	out := make(map[string]fourheat.Sensor)
	for _, id := range ids {
		s, ok := d.sensors[id]
		if !ok {
			return nil, fourheat.ErrUnknownSensor
		}
		out[id] = s
	}
	return out, nil
}

func (d *stubDevice) Write(_ context.Context, id string, value int) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	if d.writes == nil {
		d.writes = make(map[string]int)
	}
	d.writes[id] = value
	return nil
}

func (d *stubDevice) TurnOn(_ context.Context) error  { return d.command("on") }
func (d *stubDevice) TurnOff(_ context.Context) error { return d.command("off") }
func (d *stubDevice) Unblock(_ context.Context) error { return d.command("unblock") }

func (d *stubDevice) command(name string) error {
	if d.commandErr != nil {
		return d.commandErr
	}
	d.commands = append(d.commands, name)
	return nil
}

func newTestServer(t *testing.T, dev *stubDevice) (*Server, http.Handler) {
	t.Helper()
	srv, err := New(Deps{
		Logger:  logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test"),
		Device:  dev,
		Version: "0.0.0-test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, srv.buildRouter()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestHandleHealth(t *testing.T) {
	_, h := newTestServer(t, &stubDevice{})

	rec := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "0.0.0-test" {
		t.Errorf("version = %v", body["version"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestHandleGetDevice(t *testing.T) {
	dev := &stubDevice{
		initialized: true,
		status:      fourheat.StatusOn,
		sensors: map[string]fourheat.Sensor{
			"00300": {Type: "B", Value: 50},
		},
	}
	_, h := newTestServer(t, dev)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/device", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["manufacturer"] != "4heat" {
		t.Errorf("manufacturer = %v", body["manufacturer"])
	}
	if body["available"] != true {
		t.Errorf("available = %v, want true", body["available"])
	}
	if body["sensor_count"] != float64(1) {
		t.Errorf("sensor_count = %v, want 1", body["sensor_count"])
	}
	if _, ok := body["last_error"]; ok {
		t.Error("last_error should be omitted when nil")
	}
}

func TestHandleGetDeviceReportsLastError(t *testing.T) {
	dev := &stubDevice{lastErr: fourheat.ErrConnection}
	_, h := newTestServer(t, dev)

	body := decodeBody(t, doRequest(t, h, http.MethodGet, "/api/v1/device", ""))
	if body["available"] != false {
		t.Errorf("available = %v, want false", body["available"])
	}
	if body["last_error"] == nil {
		t.Error("expected last_error field")
	}
}

func TestHandleListSensors(t *testing.T) {
	dev := &stubDevice{
		sensors: map[string]fourheat.Sensor{
			"00300": {Type: "B", Value: 50},
			"00500": {Type: "J", Value: 123},
		},
	}
	_, h := newTestServer(t, dev)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/device/sensors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestHandleGetSensorLive(t *testing.T) {
	dev := &stubDevice{
		sensors: map[string]fourheat.Sensor{"00500": {Type: "J", Value: 123}},
	}
	_, h := newTestServer(t, dev)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/device/sensors/00500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	sensor, ok := body["sensor"].(map[string]any)
	if !ok {
		t.Fatalf("sensor field missing: %v", body)
	}
	if sensor["value"] != float64(123) {
		t.Errorf("value = %v, want 123", sensor["value"])
	}
}

func TestHandleGetSensorCached(t *testing.T) {
	dev := &stubDevice{
		sensors: map[string]fourheat.Sensor{"00500": {Type: "J", Value: 123}},
		readErr: fourheat.ErrConnection,
	}
	_, h := newTestServer(t, dev)

	// Live read would fail; cached must not touch the device.
	rec := doRequest(t, h, http.MethodGet, "/api/v1/device/sensors/00500?cached=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/device/sensors/99999?cached=true", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleGetSensorErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"unknown sensor", fourheat.ErrUnknownSensor, http.StatusNotFound, ErrCodeNotFound},
		{"connection", fourheat.ErrConnection, http.StatusServiceUnavailable, ErrCodeUnavailable},
		{"malformed answer", fourheat.ErrInvalidMessage, http.StatusBadGateway, ErrCodeUpstream},
		{"not initialised", fourheat.ErrNotInitialized, http.StatusServiceUnavailable, ErrCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &stubDevice{readErr: tt.err}
			_, h := newTestServer(t, dev)

			rec := doRequest(t, h, http.MethodGet, "/api/v1/device/sensors/00300", "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			body := decodeBody(t, rec)
			if body["code"] != tt.code {
				t.Errorf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}
}

func TestHandleSetSensor(t *testing.T) {
	dev := &stubDevice{}
	_, h := newTestServer(t, dev)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/device/sensors/00300", `{"value": 42}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if dev.writes["00300"] != 42 {
		t.Errorf("write = %v, want 00300=42", dev.writes)
	}
}

func TestHandleSetSensorRejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"invalid body", nil, `{"value": `, http.StatusBadRequest},
		{"read only", fourheat.ErrReadOnlySensor, `{"value": 1}`, http.StatusBadRequest},
		{"unknown sensor", fourheat.ErrUnknownSensor, `{"value": 1}`, http.StatusNotFound},
		{"rejected ack", fourheat.ErrInvalidMessage, `{"value": 1}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &stubDevice{writeErr: tt.err}
			_, h := newTestServer(t, dev)

			rec := doRequest(t, h, http.MethodPut, "/api/v1/device/sensors/00300", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if len(dev.writes) != 0 && tt.err != nil {
				t.Errorf("unexpected writes: %v", dev.writes)
			}
		})
	}
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{`{"command": "on"}`, "on"},
		{`{"command": "OFF"}`, "off"},
		{`{"command": " unblock "}`, "unblock"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dev := &stubDevice{status: fourheat.StatusOn}
			_, h := newTestServer(t, dev)

			rec := doRequest(t, h, http.MethodPost, "/api/v1/device/commands", tt.payload)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if len(dev.commands) != 1 || dev.commands[0] != tt.want {
				t.Errorf("commands = %v, want [%s]", dev.commands, tt.want)
			}
			body := decodeBody(t, rec)
			if body["command"] != tt.want {
				t.Errorf("command field = %v, want %s", body["command"], tt.want)
			}
		})
	}
}

func TestHandleCommandRejections(t *testing.T) {
	dev := &stubDevice{}
	_, h := newTestServer(t, dev)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/device/commands", `{"command": "explode"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown command status = %d, want 400", rec.Code)
	}
	if len(dev.commands) != 0 {
		t.Errorf("unexpected commands: %v", dev.commands)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/device/commands", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", rec.Code)
	}

	dev.commandErr = fourheat.ErrConnection
	rec = doRequest(t, h, http.MethodPost, "/api/v1/device/commands", `{"command": "on"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("connection failure status = %d, want 503", rec.Code)
	}
}

func TestAvailabilityPrefersPoller(t *testing.T) {
	dev := &stubDevice{initialized: true}
	srv, err := New(Deps{
		Logger:       logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test"),
		Device:       dev,
		Availability: staticAvailability(false),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.available() {
		t.Error("available() should follow the poller, not Initialized()")
	}
}

type staticAvailability bool

func (a staticAvailability) Available() bool { return bool(a) }

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Device: &stubDevice{}}); err == nil {
		t.Error("expected error when logger is missing")
	}
	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test")
	if _, err := New(Deps{Logger: logger}); err == nil {
		t.Error("expected error when device is missing")
	}
}
