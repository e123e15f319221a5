// FilePath: internal/realtime/monitor.go

// Package realtime implements the short-poll "latest measurement" path as
// a cancellable periodic task with an explicit start/stop lifecycle.
package realtime

import (
	"context"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/errors"
	"github.com/plantsense/sprout/internal/models"
)

// Status classifies the age of the newest measurement.
type Status string

const (
	StatusOnline  Status = "online"
	StatusDelayed Status = "delayed"
	StatusUnknown Status = "unknown"
)

const (
	DefaultInterval     = 3 * time.Second
	DefaultOnlineWindow = 5 * time.Minute
)

// LatestFetcher is the analytics slice the monitor polls. Satisfied by
// service.AnalyticsService.
type LatestFetcher interface {
	Latest(ctx context.Context, controllerID string) (*models.LatestMeasurement, error)
}

// Update is delivered to the handler on every poll tick.
type Update struct {
	Measurement *models.LatestMeasurement
	Status      Status
	Age         time.Duration
	Err         error
	At          time.Time
}

// Options tune the monitor; zero values fall back to the defaults above.
type Options struct {
	Interval     time.Duration
	OnlineWindow time.Duration
}

// Monitor polls the latest measurement of one controller on a fixed
// interval, with no backoff and no jitter, for as long as it is started.
// Stopping suppresses further ticks; an in-flight request completes and
// its result is discarded.
type Monitor struct {
	fetcher      LatestFetcher
	controllerID string
	interval     time.Duration
	onlineWindow time.Duration
	handler      func(Update)
	now          func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor delivering updates to handler.
func NewMonitor(fetcher LatestFetcher, controllerID string, handler func(Update), opts Options) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	window := opts.OnlineWindow
	if window <= 0 {
		window = DefaultOnlineWindow
	}
	return &Monitor{
		fetcher:      fetcher,
		controllerID: controllerID,
		interval:     interval,
		onlineWindow: window,
		handler:      handler,
		now:          time.Now,
	}
}

// Start begins polling. An empty controller identifier is rejected
// instead of issuing doomed requests. Starting a running monitor is a
// no-op.
func (m *Monitor) Start(ctx context.Context) error {
	if m.controllerID == "" {
		return errors.NewValidationError("controller id is required for monitoring", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	nuts.L.Infof("[Realtime] Monitoring %s every %s", m.controllerID, m.interval)
	go m.run(runCtx, m.done)
	return nil
}

// Stop cancels polling and waits for the poll loop to exit. Safe to call
// on a stopped monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	nuts.L.Infof("[Realtime] Stopped monitoring %s", m.controllerID)
}

// IsRunning reports whether the poll loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// First poll fires immediately, then on the fixed interval
	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	latest, err := m.fetcher.Latest(ctx, m.controllerID)

	// A completed request after cancellation is discarded
	select {
	case <-ctx.Done():
		return
	default:
	}

	update := Update{At: m.now(), Err: err, Status: StatusUnknown}
	if err == nil && latest != nil {
		update.Measurement = latest
		update.Age, update.Status = m.classify(latest)
	}
	if err != nil {
		nuts.L.Warnf("[Realtime] Poll for %s failed: %v", m.controllerID, err)
	}

	if m.handler != nil {
		m.handler(update)
	}
}

// classify computes the measurement age and maps it to online/delayed.
func (m *Monitor) classify(latest *models.LatestMeasurement) (time.Duration, Status) {
	ts, err := time.Parse(time.RFC3339, latest.Measurement.CalculatedAt)
	if err != nil {
		return 0, StatusUnknown
	}
	age := m.now().Sub(ts)
	if age < m.onlineWindow {
		return age, StatusOnline
	}
	return age, StatusDelayed
}
