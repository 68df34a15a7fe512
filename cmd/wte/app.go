package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/config"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/genai"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/localstore"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/logging"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/netmon"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/remote"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

// app bundles the components behind every command: config, loggers, the
// local and remote stores, the connectivity signal, the itinerary store,
// and the insight resolver.
type app struct {
	Config   config.Config
	Sink     *logging.Sink
	Local    *localstore.Store
	Store    *itinerary.Store
	Resolver *insight.Resolver

	// Monitor is nil when probing is disabled (forced offline or nothing
	// remote to reach).
	Monitor *netmon.Monitor
	Net     itinerary.ConnectivitySignal

	remoteCloser io.Closer
}

// appOptions tweaks the bootstrap per command.
type appOptions struct {
	// Quiet drops stderr logging (full-screen or streaming modes).
	Quiet bool
}

// openApp wires the application together from configuration. Remote
// failures degrade to local-only operation instead of failing the
// command.
func openApp(opts appOptions) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	sink := logging.NewSink(logging.Options{
		FilePath:   cfg.LogPath(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Quiet:      opts.Quiet,
	})

	local, err := localstore.Open(cfg.LocalDBPath())
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	a := &app{Config: cfg, Sink: sink, Local: local}

	// Probing is pointless when nothing can be reached, and forbidden when
	// the user forced offline mode.
	offline := forceOffline || cfg.Net.ForceOffline
	needNet := cfg.Remote.Driver != "" || cfg.AI.APIKey != ""
	switch {
	case offline:
		a.Net = netmon.Static(false)
	case !needNet:
		a.Net = netmon.Static(false)
	default:
		a.Monitor = netmon.New(netmon.Config{
			ProbeAddr: cfg.Net.ProbeAddr,
			Interval:  cfg.Net.Interval,
			Timeout:   cfg.Net.Timeout,
			Logger:    sink.Logger("netmon"),
		})
		a.Net = a.Monitor
	}

	remote := a.openRemote(offline)

	store, err := itinerary.New(itinerary.Options{
		Local:         local,
		Remote:        remote,
		Net:           a.Net,
		Logger:        sink.Logger("itinerary"),
		RemoteTimeout: cfg.Sync.PushTimeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	var gen insight.Generator
	if cfg.AI.APIKey != "" {
		client, err := genai.New(genai.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			MaxTokens:   cfg.AI.MaxTokens,
			WebSearch:   cfg.AI.WebSearch,
			MaxSearches: cfg.AI.MaxSearches,
			Logger:      sink.Logger("genai"),
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		gen = client
	}

	resolver, err := insight.NewResolver(insight.Options{
		Cache:     local,
		Generator: gen,
		Net:       a.Net,
		Logger:    sink.Logger("insight"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Resolver = resolver

	return a, nil
}

// openRemote opens the configured remote store, or returns nil when none
// is configured or it cannot be reached. A broken remote never blocks
// local operation.
func (a *app) openRemote(offline bool) itinerary.RemoteStore {
	cfg := a.Config
	if cfg.Remote.Driver == "" {
		return nil
	}

	switch cfg.Remote.Driver {
	case "libsql":
		conn, err := remote.OpenLibSQL(cfg.Remote.URL, cfg.Remote.AuthToken)
		if err != nil {
			ui.Warning("remote unavailable, continuing local-only: %v", err)
			return nil
		}
		a.remoteCloser = conn
		return conn

	case "postgres":
		if offline {
			// pgxpool pings on open; don't try while forced offline.
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pool, err := remote.OpenPostgres(ctx, cfg.Remote.URL)
		if err != nil {
			ui.Warning("remote unavailable, continuing local-only: %v", err)
			return nil
		}
		a.remoteCloser = pool
		return pool
	}
	return nil
}

// Close tears the app down in dependency order: drain pending remote
// pushes first, then release connections.
func (a *app) Close() {
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.closeTimeout())
		if err := a.Store.Close(ctx); err != nil {
			a.Sink.Logger("itinerary").Printf("WARNING: pending remote push abandoned: %v", err)
		}
		cancel()
	}
	if a.Monitor != nil {
		a.Monitor.Close()
	}
	if a.remoteCloser != nil {
		_ = a.remoteCloser.Close()
	}
	if a.Local != nil {
		_ = a.Local.Close()
	}
	_ = a.Sink.Close()
}

func (a *app) closeTimeout() time.Duration {
	if t := a.Config.Sync.PushTimeout; t > 0 {
		return t + 2*time.Second
	}
	return 12 * time.Second
}
