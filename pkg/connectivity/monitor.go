// Package connectivity tracks whether the device can reach the network.
//
// The monitor combines two signals: a periodic HTTP probe against a
// lightweight endpoint, and explicit pushes from the host for platforms
// that surface system-level connectivity notifications. Either path
// feeds the same state; subscribers hear about transitions on a channel.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pagekeep/pagekeep/internal/logger"
)

const (
	// defaultProbeURL answers HEAD requests with an empty 204 and is
	// built for exactly this purpose.
	defaultProbeURL = "https://connectivitycheck.gstatic.com/generate_204"

	defaultInterval     = 30 * time.Second
	defaultProbeTimeout = 5 * time.Second
)

// Config tunes the monitor.
type Config struct {
	// ProbeURL is the endpoint probed with HEAD requests.
	ProbeURL string

	// Interval is how often the probe loop runs.
	Interval time.Duration

	// ProbeTimeout bounds a single probe request.
	ProbeTimeout time.Duration
}

// Monitor holds the current connectivity state.
//
// Before Start (or the first SetOnline) the state is optimistically
// online, so hosts that never start the probe loop still get working
// saves and rely on fetch failures instead.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client

	online atomic.Bool

	mu        sync.Mutex
	started   bool
	subs      map[chan bool]struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a monitor with the given configuration. Zero values fall
// back to defaults.
func New(cfg Config) *Monitor {
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = defaultProbeURL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}

	m := &Monitor{
		probeURL:  cfg.ProbeURL,
		interval:  cfg.Interval,
		client:    &http.Client{Timeout: cfg.ProbeTimeout},
		subs:      make(map[chan bool]struct{}),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	m.online.Store(true)
	return m
}

// IsOnline returns the current connectivity state.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// SetOnline pushes a connectivity state from the host. Platforms with
// system notifications call this instead of (or in addition to) the
// probe loop.
func (m *Monitor) SetOnline(online bool) {
	m.setState(online)
}

// Start runs a synchronous initial probe and then launches the probe
// loop. Calling Start twice is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.setState(m.probe(ctx))

	logger.Info("starting connectivity monitor",
		logger.KeyProbeURL, m.probeURL,
		logger.KeyOnline, m.IsOnline())

	go m.loop(ctx)
}

// Stop shuts the probe loop down, waiting up to timeout for it to exit.
// Stopping a monitor that was never started is a no-op.
func (m *Monitor) Stop(timeout time.Duration) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	close(m.stopCh)

	select {
	case <-m.stoppedCh:
		logger.Debug("connectivity monitor stopped")
	case <-time.After(timeout):
		logger.Warn("connectivity monitor stop timed out")
	}
}

// Subscribe returns a channel that receives the new state on every
// transition. The channel has a buffer of one; transitions that happen
// while the buffer is full are dropped, never blocked on.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (m *Monitor) Unsubscribe(ch <-chan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs {
		if sub == ch {
			delete(m.subs, sub)
			close(sub)
			return
		}
	}
}

// loop probes on a ticker until stopped.
func (m *Monitor) loop(ctx context.Context) {
	defer close(m.stoppedCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.setState(m.probe(ctx))
		}
	}
}

// probe reports whether the endpoint answered at all. Any completed
// HTTP exchange counts as online, including error statuses; only
// transport failures count as offline.
func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// setState records a state and notifies subscribers on transitions.
func (m *Monitor) setState(online bool) {
	if m.online.Swap(online) == online {
		return
	}

	logger.Info("connectivity changed", logger.KeyOnline, online)

	m.mu.Lock()
	for ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
	m.mu.Unlock()
}
