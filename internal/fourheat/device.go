package fourheat

import (
	"context"
	"fmt"
	"sync"
)

// Device status strings exposed to collaborators.
const (
	StatusOn  = "on"
	StatusOff = "off"
)

// stateSensorID is the sensor that carries the burner state machine.
var stateSensorID = "30001"

// statesOff are state-machine values that mean the burner is off.
var statesOff = map[int]bool{0: true}

// Sensor is the cached state of one device attribute.
type Sensor struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// Device is the orchestration facade over the protocol client. It owns the
// sensor map (the source of truth for known attributes) and static device
// metadata, and exposes the initialise/refresh/read/write surface the
// poller, MQTT bridge and HTTP API are built on.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Command serialisation is
//     handled by the underlying Client's gate.
type Device struct {
	Name string

	client *Client

	mu           sync.RWMutex
	initialized  bool
	initializing bool
	sensors      map[string]Sensor
	model        string
	serial       string
	manufacturer string
}

// NewDevice creates the facade and its protocol client, resolving the
// module address once. The device is not initialised until Initialize is
// called.
func NewDevice(ctx context.Context, name string, opts ConnectionOptions) (*Device, error) {
	client, err := NewClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Device{
		Name:    name,
		client:  client,
		sensors: make(map[string]Sensor),
	}, nil
}

// SetLogger sets the logger for the underlying protocol client.
func (d *Device) SetLogger(logger Logger) {
	d.client.SetLogger(logger)
}

// Client returns the underlying protocol client.
func (d *Device) Client() *Client {
	return d.client
}

// Initialize performs the one-time bootstrap: populate static metadata,
// issue an info command, and build the sensor map from the answer.
//
// It is guarded against concurrent invocation (ErrAlreadyInitializing) and
// the guard is always cleared on exit. Failures wrap ErrDevice.
func (d *Device) Initialize(ctx context.Context) error {
	d.mu.Lock()
	if d.initializing {
		d.mu.Unlock()
		return ErrAlreadyInitializing
	}
	d.initializing = true
	d.initialized = false

	// The module exposes no discovery surface for serial numbers; static
	// metadata is all there is.
	d.model = "4heat device"
	d.serial = ""
	d.manufacturer = "4heat"
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.initializing = false
		d.mu.Unlock()
	}()

	resp, err := d.client.Dispatch(ctx, CmdInfo)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	if resp.Class() == StatusError {
		return fmt.Errorf("%w: module reported error status during bootstrap", ErrDevice)
	}

	sensors := make(map[string]Sensor, len(resp.Sensors))
	for _, reading := range resp.Sensors {
		sensors[reading.ID] = Sensor{Type: reading.Type, Value: reading.Value}
	}

	d.mu.Lock()
	d.sensors = sensors
	d.initialized = true
	d.mu.Unlock()

	return nil
}

// Refresh fetches the current status dump and merges it into the sensor
// map, updating known ids and inserting unseen ones. When the module
// answers the info query with an error status, it falls back to an
// explicit get over all currently known sensor ids.
func (d *Device) Refresh(ctx context.Context) error {
	if !d.Initialized() {
		return ErrNotInitialized
	}

	resp, err := d.client.Dispatch(ctx, CmdInfo)
	if err != nil {
		return err
	}

	if resp.Class() == StatusError {
		ids := d.sensorIDs()
		tokens := make([]string, 0, len(ids))
		for _, id := range ids {
			tokens = append(tokens, ReadToken(id))
		}
		resp, err = d.client.Dispatch(ctx, CmdGet, tokens...)
		if err != nil {
			return err
		}
	}

	d.mu.Lock()
	for _, reading := range resp.Sensors {
		d.sensors[reading.ID] = Sensor{Type: reading.Type, Value: reading.Value}
	}
	d.mu.Unlock()

	return nil
}

// Read fetches fresh values for the given sensor ids and merges them into
// the sensor map. Every requested id must already be known; an explicit
// read never grows the map.
func (d *Device) Read(ctx context.Context, ids ...string) (map[string]Sensor, error) {
	if !d.Initialized() {
		return nil, ErrNotInitialized
	}

	tokens := make([]string, 0, len(ids))
	d.mu.RLock()
	for _, id := range ids {
		if _, ok := d.sensors[id]; !ok {
			d.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrUnknownSensor, id)
		}
		tokens = append(tokens, ReadToken(id))
	}
	d.mu.RUnlock()

	resp, err := d.client.Dispatch(ctx, CmdGet, tokens...)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Sensor, len(resp.Sensors))
	d.mu.Lock()
	for _, reading := range resp.Sensors {
		if _, ok := d.sensors[reading.ID]; !ok {
			d.mu.Unlock()
			return nil, fmt.Errorf("%w: module answered for unrequested sensor %s",
				ErrUnknownSensor, reading.ID)
		}
		sensor := Sensor{Type: reading.Type, Value: reading.Value}
		d.sensors[reading.ID] = sensor
		result[reading.ID] = sensor
	}
	d.mu.Unlock()

	return result, nil
}

// Write sets one sensor to the given value. The id must be known and not
// read only. On acknowledgement the cached value is updated optimistically
// to the written value; the echo is only used for acknowledgement
// matching.
func (d *Device) Write(ctx context.Context, id string, value int) error {
	if !d.Initialized() {
		return ErrNotInitialized
	}

	d.mu.RLock()
	sensor, ok := d.sensors[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSensor, id)
	}
	if sensor.Type == sensorTypeReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlySensor, id)
	}

	if _, err := d.client.Dispatch(ctx, CmdSet, WriteToken(id, value)); err != nil {
		return err
	}

	d.mu.Lock()
	sensor.Value = value
	d.sensors[id] = sensor
	d.mu.Unlock()

	return nil
}

// TurnOn powers the burner on.
func (d *Device) TurnOn(ctx context.Context) error {
	_, err := d.client.Dispatch(ctx, CmdOn)
	return err
}

// TurnOff powers the burner off.
func (d *Device) TurnOff(ctx context.Context) error {
	_, err := d.client.Dispatch(ctx, CmdOff)
	return err
}

// Unblock clears a blocked/error state on the module.
func (d *Device) Unblock(ctx context.Context) error {
	_, err := d.client.Dispatch(ctx, CmdUnblock)
	return err
}

// Initialized reports whether the bootstrap sequence has completed.
func (d *Device) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Sensors returns a copy of the sensor map.
func (d *Device) Sensors() map[string]Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sensors := make(map[string]Sensor, len(d.sensors))
	for id, sensor := range d.sensors {
		sensors[id] = sensor
	}
	return sensors
}

// SensorValue returns the cached value of one sensor. The second return
// is false when the device is not initialised or the id is unknown.
func (d *Device) SensorValue(id string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return 0, false
	}
	sensor, ok := d.sensors[id]
	if !ok {
		return 0, false
	}
	return sensor.Value, true
}

// Status derives the on/off state from the burner state sensor. It returns
// an empty string until the device is initialised.
func (d *Device) Status() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return ""
	}
	state, ok := d.sensors[stateSensorID]
	if !ok || statesOff[state.Value] {
		return StatusOff
	}
	return StatusOn
}

// LastError returns the last command error recorded by the client.
func (d *Device) LastError() error {
	return d.client.LastError()
}

// Model returns the device model, empty until initialised.
func (d *Device) Model() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		return ""
	}
	return d.model
}

// Serial returns the device serial number, empty when unknown.
func (d *Device) Serial() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		return ""
	}
	return d.serial
}

// Manufacturer returns the device manufacturer, empty until initialised.
func (d *Device) Manufacturer() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		return ""
	}
	return d.manufacturer
}

// sensorIDs returns the known sensor ids.
func (d *Device) sensorIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.sensors))
	for id := range d.sensors {
		ids = append(ids, id)
	}
	return ids
}
