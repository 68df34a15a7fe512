// Package netmon tracks network reachability for the sync and insight
// layers.
//
// The monitor probes on a fixed interval and caches the last result, so
// Online() is always a cheap in-memory read on the mutation path. State
// transitions are logged and fanned out to subscribers; the watch daemon
// uses that to react to reconnects.
package netmon

import (
	"context"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Probe reports whether the network is reachable right now.
type Probe func(ctx context.Context) bool

// Static is a fixed connectivity signal. Used in tests and for forcing
// offline mode from the CLI.
type Static bool

// Online implements the connectivity interfaces.
func (s Static) Online() bool { return bool(s) }

// Config configures New.
type Config struct {
	// Probe overrides the default TCP reachability check.
	Probe Probe

	// ProbeAddr is the host:port dialed by the default probe.
	// Defaults to "1.1.1.1:443".
	ProbeAddr string

	// Interval between probes. Defaults to 30s.
	Interval time.Duration

	// Timeout bounds a single probe. Defaults to 3s.
	Timeout time.Duration

	// Logger receives state transitions. Defaults to stderr.
	Logger *log.Logger
}

// Monitor caches the latest reachability result. Safe for concurrent use.
type Monitor struct {
	probe    Probe
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	online bool
	subs   []func(online bool)

	stop chan struct{}
	done chan struct{}
}

// New starts a monitor. The first probe runs synchronously so Online() is
// meaningful immediately. Call Close to stop the background loop.
func New(cfg Config) *Monitor {
	if cfg.ProbeAddr == "" {
		cfg.ProbeAddr = "1.1.1.1:443"
	}
	if cfg.Probe == nil {
		cfg.Probe = dialProbe(cfg.ProbeAddr)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[netmon] ", log.LstdFlags)
	}

	m := &Monitor{
		probe:    cfg.Probe,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.online = m.runProbe()
	go m.loop()
	return m
}

// Online returns the cached reachability state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange registers fn to run on every state transition. Callbacks run on
// the monitor goroutine and should return quickly.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// Close stops the probe loop.
func (m *Monitor) Close() {
	close(m.stop)
	<-m.done
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.update(m.runProbe())
		}
	}
}

func (m *Monitor) runProbe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.probe(ctx)
}

func (m *Monitor) update(online bool) {
	m.mu.Lock()
	if online == m.online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if online {
		m.logger.Printf("network is back online")
	} else {
		m.logger.Printf("network is offline")
	}
	for _, fn := range subs {
		fn(online)
	}
}

// dialProbe returns a probe that treats a successful TCP dial as online.
func dialProbe(addr string) Probe {
	return func(ctx context.Context) bool {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}
