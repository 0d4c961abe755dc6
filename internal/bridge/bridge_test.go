package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emberlink/fourheat-core/internal/fourheat"
	"github.com/emberlink/fourheat-core/internal/infrastructure/mqtt"
	"github.com/emberlink/fourheat-core/internal/poller"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeBroker records publishes and subscriptions.
type fakeBroker struct {
	mu        sync.Mutex
	published map[string][]byte
	handlers  map[string]mqtt.MessageHandler
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		published: make(map[string][]byte),
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (f *fakeBroker) PublishRetained(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = payload
	return nil
}

func (f *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeBroker) payload(topic string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.published[topic]
	return p, ok
}

// fakeController records device calls.
type fakeController struct {
	mu       sync.Mutex
	calls    []string
	writes   map[string]int
	writeErr error
}

func newFakeController() *fakeController {
	return &fakeController{writes: make(map[string]int)}
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeController) TurnOn(context.Context) error  { f.record("on"); return nil }
func (f *fakeController) TurnOff(context.Context) error { f.record("off"); return nil }
func (f *fakeController) Unblock(context.Context) error { f.record("unblock"); return nil }

func (f *fakeController) Write(_ context.Context, id string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes[id] = value
	return nil
}

func newTestBridge(t *testing.T) (*Bridge, *fakeBroker, *fakeController) {
	t.Helper()
	broker := newFakeBroker()
	ctrl := newFakeController()
	b := New("stove", ctrl, broker, 1, nopLogger{})
	if err := b.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	return b, broker, ctrl
}

func TestStartSubscribes(t *testing.T) {
	_, broker, _ := newTestBridge(t)

	for _, topic := range []string{"fourheat/stove/command", "fourheat/stove/sensor/+/set"} {
		if _, ok := broker.handlers[topic]; !ok {
			t.Errorf("no subscription for %s", topic)
		}
	}
}

func TestHandleUpdatePublishesSnapshot(t *testing.T) {
	b, broker, _ := newTestBridge(t)

	b.HandleUpdate(poller.Update{
		Available: true,
		Status:    fourheat.StatusOn,
		Sensors: map[string]fourheat.Sensor{
			"30001": {Type: "I", Value: 3},
			"00500": {Type: "J", Value: 123},
		},
		Time: time.Now(),
	})

	if got, _ := broker.payload("fourheat/stove/status"); string(got) != fourheat.StatusOn {
		t.Errorf("status payload = %q, want %q", got, fourheat.StatusOn)
	}

	raw, ok := broker.payload("fourheat/stove/sensor/00500")
	if !ok {
		t.Fatal("sensor 00500 not published")
	}
	var payload sensorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("sensor payload not valid JSON: %v", err)
	}
	if payload.Type != "J" || payload.Value != 123 {
		t.Errorf("sensor payload = %+v, want {J 123}", payload)
	}
}

func TestHandleUpdateUnavailable(t *testing.T) {
	b, broker, _ := newTestBridge(t)

	b.HandleUpdate(poller.Update{Available: false, Err: errors.New("timeout")})

	if got, _ := broker.payload("fourheat/stove/status"); string(got) != "UNKNOWN" {
		t.Errorf("status payload = %q, want UNKNOWN", got)
	}
}

func TestHandleUpdateFailedCycleKeepsState(t *testing.T) {
	b, broker, _ := newTestBridge(t)

	b.HandleUpdate(poller.Update{
		Available: true,
		Status:    fourheat.StatusOn,
		Sensors:   map[string]fourheat.Sensor{"30001": {Type: "I", Value: 3}},
	})
	b.HandleUpdate(poller.Update{Available: true, Err: errors.New("one bad cycle")})

	if got, _ := broker.payload("fourheat/stove/status"); string(got) != fourheat.StatusOn {
		t.Errorf("status payload = %q, want retained %q", got, fourheat.StatusOn)
	}
}

func TestCommandDispatch(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{"on", "on"},
		{"OFF", "off"},
		{"  unblock\n", "unblock"},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			_, broker, ctrl := newTestBridge(t)

			handler := broker.handlers["fourheat/stove/command"]
			if err := handler("fourheat/stove/command", []byte(tt.payload)); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			ctrl.mu.Lock()
			defer ctrl.mu.Unlock()
			if len(ctrl.calls) != 1 || ctrl.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", ctrl.calls, tt.want)
			}
		})
	}
}

func TestCommandUnknown(t *testing.T) {
	_, broker, ctrl := newTestBridge(t)

	handler := broker.handlers["fourheat/stove/command"]
	if err := handler("fourheat/stove/command", []byte("reboot")); err == nil {
		t.Fatal("expected error for unknown command")
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.calls) != 0 {
		t.Errorf("unexpected device calls: %v", ctrl.calls)
	}
}

func TestSensorSet(t *testing.T) {
	_, broker, ctrl := newTestBridge(t)

	handler := broker.handlers["fourheat/stove/sensor/+/set"]
	if err := handler("fourheat/stove/sensor/00300/set", []byte("42")); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.writes["00300"] != 42 {
		t.Errorf("writes = %v, want 00300=42", ctrl.writes)
	}
}

func TestSensorSetBadPayload(t *testing.T) {
	_, broker, ctrl := newTestBridge(t)

	handler := broker.handlers["fourheat/stove/sensor/+/set"]
	if err := handler("fourheat/stove/sensor/00300/set", []byte("warm")); err == nil {
		t.Fatal("expected error for non-numeric payload")
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.writes) != 0 {
		t.Errorf("unexpected writes: %v", ctrl.writes)
	}
}

func TestSensorSetWriteError(t *testing.T) {
	_, broker, ctrl := newTestBridge(t)
	ctrl.writeErr = fourheat.ErrReadOnlySensor

	handler := broker.handlers["fourheat/stove/sensor/+/set"]
	err := handler("fourheat/stove/sensor/00500/set", []byte("7"))
	if !errors.Is(err, fourheat.ErrReadOnlySensor) {
		t.Errorf("handler error = %v, want ErrReadOnlySensor", err)
	}
}

func TestSensorIDFromTopic(t *testing.T) {
	tests := []struct {
		topic  string
		wantID string
		wantOK bool
	}{
		{"fourheat/stove/sensor/00300/set", "00300", true},
		{"fourheat/stove/sensor//set", "", false},
		{"fourheat/stove/command", "", false},
		{"fourheat/stove/sensor/00300", "", false},
	}

	for _, tt := range tests {
		id, ok := sensorIDFromTopic(tt.topic)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("sensorIDFromTopic(%q) = %q, %v; want %q, %v", tt.topic, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
