package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emberlink/fourheat-core/internal/fourheat"
	"github.com/emberlink/fourheat-core/internal/infrastructure/config"
	"github.com/emberlink/fourheat-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Device is the surface of the heater facade the API serves. It is satisfied
// by *fourheat.Device and stubbed in handler tests.
type Device interface {
	Initialized() bool
	Status() string
	Model() string
	Serial() string
	Manufacturer() string
	LastError() error
	Sensors() map[string]fourheat.Sensor
	Read(ctx context.Context, ids ...string) (map[string]fourheat.Sensor, error)
	Write(ctx context.Context, id string, value int) error
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Unblock(ctx context.Context) error
}

// Availability reports whether the device is currently considered reachable.
// Satisfied by *poller.Poller; nil means no poller is running and availability
// falls back to the initialisation state.
type Availability interface {
	Available() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Logger       *logging.Logger
	Device       Device
	Availability Availability
	Version      string
}

// Server is the HTTP API server for the heater daemon.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	logger       *logging.Logger
	device       Device
	availability Availability
	version      string
	server       *http.Server
	hub          *Hub
	cancel       context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Device == nil {
		return nil, fmt.Errorf("device is required")
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		logger:       deps.Logger,
		device:       deps.Device,
		availability: deps.Availability,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop the hub independently of the
	// parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Broadcast relays an event to all WebSocket clients subscribed to the
// channel. It is a no-op before Start().
func (s *Server) Broadcast(channel string, payload any) {
	if s.hub != nil {
		s.hub.Broadcast(channel, payload)
	}
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// available reports device availability, preferring the poller's view when
// one is wired in.
func (s *Server) available() bool {
	if s.availability != nil {
		return s.availability.Available()
	}
	return s.device.Initialized()
}
