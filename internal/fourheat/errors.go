package fourheat

import "errors"

// Domain errors for the 4heat driver.
var (
	// ErrConnection is returned when the TCP exchange with the module
	// fails: resolution, connect, timeout, reset, or an empty answer.
	ErrConnection = errors.New("fourheat: device communication failed")

	// ErrInvalidMessage is returned when a response was received but
	// violates the protocol: malformed list literal, unknown status, a
	// sensor token whose value does not parse, or an acknowledgement that
	// does not match the command sent.
	ErrInvalidMessage = errors.New("fourheat: invalid device message")

	// ErrInvalidCommand is returned when a logical command name is not
	// present in the command table.
	ErrInvalidCommand = errors.New("fourheat: command not implemented")

	// ErrCommand wraps ErrConnection or ErrInvalidMessage raised while
	// executing a specific named command; the command name is carried in
	// the error text.
	ErrCommand = errors.New("fourheat: command execution failed")

	// ErrDevice is returned by Device.Initialize when the one-time
	// bootstrap sequence fails, wrapping the underlying cause.
	ErrDevice = errors.New("fourheat: device initialisation failed")

	// ErrAlreadyInitializing is returned when Initialize is called while a
	// previous initialisation is still in progress.
	ErrAlreadyInitializing = errors.New("fourheat: initialisation already in progress")

	// ErrNotInitialized is returned when an operation requires the sensor
	// map but Initialize has not completed successfully.
	ErrNotInitialized = errors.New("fourheat: device not initialised")

	// ErrUnknownSensor is returned when a read or write names a sensor id
	// that is not present in the device's sensor map.
	ErrUnknownSensor = errors.New("fourheat: unknown sensor")

	// ErrReadOnlySensor is returned when a write targets a J-typed sensor.
	ErrReadOnlySensor = errors.New("fourheat: sensor is read only")
)
