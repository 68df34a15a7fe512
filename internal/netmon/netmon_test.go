package netmon

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatic(t *testing.T) {
	if !Static(true).Online() {
		t.Error("Static(true).Online() = false")
	}
	if Static(false).Online() {
		t.Error("Static(false).Online() = true")
	}
}

func TestMonitorInitialProbe(t *testing.T) {
	var calls atomic.Int32
	m := New(Config{
		Probe: func(ctx context.Context) bool {
			calls.Add(1)
			return true
		},
		Interval: time.Hour, // no ticks during the test
		Logger:   log.New(io.Discard, "", 0),
	})
	defer m.Close()

	if !m.Online() {
		t.Fatal("Online() = false right after a successful probe")
	}
	if calls.Load() != 1 {
		t.Fatalf("probe ran %d times, want 1 synchronous run", calls.Load())
	}
}

func TestMonitorTransitions(t *testing.T) {
	var state atomic.Bool
	state.Store(true)

	m := New(Config{
		Probe:    func(ctx context.Context) bool { return state.Load() },
		Interval: 5 * time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})
	defer m.Close()

	changes := make(chan bool, 16)
	m.OnChange(func(online bool) { changes <- online })

	state.Store(false)
	select {
	case online := <-changes:
		if online {
			t.Fatal("first transition reported online, want offline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transition after the probe started failing")
	}
	if m.Online() {
		t.Fatal("Online() still true after offline transition")
	}

	state.Store(true)
	select {
	case online := <-changes:
		if !online {
			t.Fatal("second transition reported offline, want online")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transition after the probe recovered")
	}
}

func TestMonitorNoCallbackWithoutChange(t *testing.T) {
	m := New(Config{
		Probe:    func(ctx context.Context) bool { return true },
		Interval: time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})
	defer m.Close()

	changes := make(chan bool, 16)
	m.OnChange(func(online bool) { changes <- online })

	select {
	case <-changes:
		t.Fatal("callback fired although the state never changed")
	case <-time.After(50 * time.Millisecond):
	}
}
