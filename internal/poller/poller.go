package poller

import (
	"context"
	"sync"
	"time"

	"github.com/emberlink/fourheat-core/internal/fourheat"
	"github.com/emberlink/fourheat-core/internal/infrastructure/config"
)

// Device is the subset of the device facade the poller needs.
// Satisfied by *fourheat.Device.
type Device interface {
	Initialized() bool
	Initialize(ctx context.Context) error
	Refresh(ctx context.Context) error
	Sensors() map[string]fourheat.Sensor
	Status() string
}

// Update is one snapshot handed to listeners after a refresh cycle.
type Update struct {
	// Available is false once the retry budget is exhausted.
	Available bool

	// Status is the burner status ("on"/"off") at snapshot time.
	Status string

	// Sensors is the device snapshot. Nil when Available is false.
	Sensors map[string]fourheat.Sensor

	// Err is the refresh error for failed cycles, nil otherwise.
	Err error

	// Time is when the cycle finished.
	Time time.Time
}

// Listener receives device snapshots. Listeners run on the poller
// goroutine and must not block.
type Listener func(Update)

// Logger is the subset of logging.Logger the poller uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Poller refreshes a device on a fixed interval and fans snapshots out
// to listeners.
type Poller struct {
	device   Device
	interval time.Duration
	budget   int
	logger   Logger

	mu        sync.Mutex
	listeners []Listener
	failures  int
	available bool
	polling   bool
}

// New creates a poller for the given device.
func New(device Device, cfg config.PollerConfig, logger Logger) *Poller {
	return &Poller{
		device:   device,
		interval: time.Duration(cfg.Interval) * time.Second,
		budget:   cfg.RetryBudget,
		logger:   logger,
	}
}

// OnUpdate registers a listener for refresh snapshots.
// Must be called before Run.
func (p *Poller) OnUpdate(fn Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Available reports whether the device was reachable within the retry
// budget as of the last cycle.
func (p *Poller) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Run polls until the context is cancelled. It performs one immediate
// cycle on entry so listeners see a snapshot without waiting a full
// interval.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval, "retry_budget", p.budget)

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle performs one refresh and notifies listeners. Overlapping cycles
// are skipped rather than queued.
func (p *Poller) cycle(ctx context.Context) {
	p.mu.Lock()
	if p.polling {
		p.mu.Unlock()
		p.logger.Warn("previous poll cycle still running, skipping tick")
		return
	}
	p.polling = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.polling = false
		p.mu.Unlock()
	}()

	err := p.refresh(ctx)

	p.mu.Lock()
	if err != nil {
		p.failures++
		p.available = p.failures <= p.budget
	} else {
		p.failures = 0
		p.available = true
	}
	available := p.available
	failures := p.failures
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	update := Update{
		Available: available,
		Err:       err,
		Time:      time.Now(),
	}
	if err == nil {
		update.Status = p.device.Status()
		update.Sensors = p.device.Sensors()
		p.logger.Debug("poll cycle complete", "sensors", len(update.Sensors), "status", update.Status)
	} else if available {
		p.logger.Warn("poll cycle failed, within retry budget",
			"error", err, "failures", failures, "budget", p.budget)
	} else {
		p.logger.Error("device unavailable, retry budget exhausted",
			"error", err, "failures", failures)
	}

	for _, fn := range listeners {
		fn(update)
	}
}

// refresh initializes the device on first contact, then refreshes.
// Re-initialization is retried each cycle until it succeeds.
func (p *Poller) refresh(ctx context.Context) error {
	if !p.device.Initialized() {
		if err := p.device.Initialize(ctx); err != nil {
			return err
		}
		p.logger.Info("device initialized", "sensors", len(p.device.Sensors()))
		return nil
	}
	return p.device.Refresh(ctx)
}
