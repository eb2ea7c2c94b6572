// Package main implements the entry point of the sosd service runtime: it
// loads the settings, builds the codec registry and the reconciliation
// engine, and serves the metrics endpoint until shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geomatico/52n-sos-4.0-sub001/codecregistry"
	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/config"
	"github.com/geomatico/52n-sos-4.0-sub001/logging"
	"github.com/geomatico/52n-sos-4.0-sub001/metric"
	"github.com/geomatico/52n-sos-4.0-sub001/reconcile"
)

const (
	// Version is the build version of the service.
	Version = "0.1.0"
	appName = "sosd"
)

type cliConfig struct {
	configPath  string
	metricsAddr string
	natsURL     string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cli := parseFlags()
	if cli.showVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cli.logLevel, cli.logFormat)
	slog.SetDefault(logger)
	slog.Info("Starting sosd", "version", Version, "config_path", cli.configPath)

	settings, err := loadSettings(cli.configPath)
	if err != nil {
		return err
	}
	safeSettings := config.NewSafeSettings(settings)

	var nc *nats.Conn
	if cli.natsURL != "" {
		nc, err = nats.Connect(cli.natsURL,
			nats.Name(appName),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
	}

	metrics := metric.New()
	promRegistry := prometheus.NewRegistry()
	if err := metrics.Register(promRegistry); err != nil {
		return fmt.Errorf("metrics registration: %w", err)
	}

	registry := coding.NewRegistry()
	registry.SetInstrumentation(metrics)
	if err := codecregistry.Register(registry, settings.ResponseTimeFormat); err != nil {
		return fmt.Errorf("codec registration: %w", err)
	}
	slog.Info("Codec registry ready",
		"decoders", registry.DecoderCount(), "encoders", registry.EncoderCount())

	engine := reconcile.NewEngine(safeSettings.Get(), metrics, nil, nil,
		logging.NewLogger("reconcile", nc, logger))
	slog.Info("Reconciliation engine ready",
		"supports_quality", engine.Settings.SupportsQuality,
		"min_free_heap_bytes", engine.Settings.MinFreeHeapBytes)

	return serveMetrics(cli.metricsAddr, promRegistry)
}

func parseFlags() *cliConfig {
	cli := &cliConfig{}
	flag.StringVar(&cli.configPath, "config", "", "path to the settings JSON file (defaults apply when empty)")
	flag.StringVar(&cli.metricsAddr, "metrics-addr", ":9090", "listen address of the metrics endpoint")
	flag.StringVar(&cli.natsURL, "nats-url", "", "NATS server URL for log publishing (disabled when empty)")
	flag.StringVar(&cli.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&cli.logFormat, "log-format", "text", "log format (text, json)")
	flag.BoolVar(&cli.showVersion, "version", false, "print the version and exit")
	flag.Parse()
	return cli
}

func setupLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func loadSettings(path string) (config.Settings, error) {
	if path == "" {
		return config.Default(), nil
	}
	settings, err := config.Load(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("settings load: %w", err)
	}
	return settings, nil
}

func serveMetrics(addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
