package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/daemon"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/dashboard"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "system",
	Short:   "Serve a real-time WebSocket dashboard",
	Long: `Serve a WebSocket dashboard that broadcasts itinerary state in real time.

Connected clients receive:
- itinerary: the full stop collection after every change
- stats: totals by status, total cost, and the upcoming stop
- connectivity: network online/offline transitions
- insight: prefetched insights for the upcoming stop

The command runs the watch daemon alongside the server, so edits made by
other wte processes and remote pulls show up without a restart.

Example usage:
  wte dashboard              # port from config (default 8787)
  wte dashboard --port 9000

Connect with a WebSocket client:
  ws://localhost:8787/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())

		port := dashboardPort
		if port == 0 {
			port = a.Config.Dashboard.Port
		}

		server := dashboard.NewServer(&dashboard.Config{
			Port:   port,
			Logger: a.Sink.Logger("dashboard"),
		})
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}

		handler := dashboard.NewHandler(server, a.Sink.Logger("dashboard"))
		a.Store.Subscribe(handler.OnSnapshot)
		handler.OnSnapshot(snap)
		if a.Monitor != nil {
			a.Monitor.OnChange(handler.OnConnectivity)
		}

		dcfg := daemon.DefaultConfig()
		dcfg.FlushOnReconnect = a.Config.Sync.FlushOnReconnect
		dcfg.Logger = a.Sink.Logger("daemon")
		dcfg.OnInsight = handler.OnInsight

		var connectivity daemon.Connectivity
		if a.Monitor != nil {
			connectivity = a.Monitor
		}

		d, err := daemon.New(a.Store, a.Resolver, connectivity, a.Local.Path(), dcfg)
		if err != nil {
			_ = server.Stop()
			return err
		}

		fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		runErr := d.Start(ctx)

		fmt.Println("\nShutting down dashboard server...")
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
		fmt.Println("Dashboard server stopped")
		return runErr
	},
}

func init() {
	dashboardCmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}
