package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/latticehq/lattice/pkg/api"
	"github.com/latticehq/lattice/pkg/config"
	"github.com/latticehq/lattice/pkg/observability"
	"github.com/latticehq/lattice/pkg/store"
)

// lattice-sim runs the simulated control plane as a line-oriented JSON
// loop: one request object per stdin line, one response object per stdout
// line. Logs go to stderr so the response stream stays clean.
func main() {
	seedPath := flag.String("seed", "", "YAML seed fixture applied at startup (overrides config)")
	flag.Parse()

	startupLog := logrus.New()
	startupLog.SetOutput(os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		startupLog.WithError(err).Fatal("failed to load configuration")
	}
	if *seedPath != "" {
		cfg.Seed.Path = *seedPath
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.Observability.LogLevel), os.Stderr)
	var registry *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(registry)

	srv := api.NewServer(api.Options{
		Logger:    logger,
		Metrics:   metrics,
		CacheSize: cfg.Dashboard.CacheSize,
		CacheTTL:  cfg.Dashboard.CacheTTL,
	})

	if cfg.Seed.Path != "" {
		seed, err := store.LoadSeed(cfg.Seed.Path)
		if err != nil {
			startupLog.WithError(err).Fatal("failed to load seed fixture")
		}
		if err := seed.Apply(srv.Store()); err != nil {
			startupLog.WithError(err).Fatal("failed to apply seed fixture")
		}
		startupLog.WithField("path", cfg.Seed.Path).Info("seed fixture applied")
	}

	if cfg.Janitor.Enabled {
		janitor, err := api.NewJanitor(srv, cfg.Janitor.Schedule, logger)
		if err != nil {
			startupLog.WithError(err).Fatal("failed to configure janitor")
		}
		janitor.Start()
		defer janitor.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if path := os.Getenv("LATTICE_CONFIG_FILE"); path != "" {
		go func() {
			_ = config.Watch(ctx, path, logger, func(updated *config.Config) {
				logger.WithField("log_level", updated.Observability.LogLevel).Info("configuration reloaded")
			})
		}()
	}

	startupLog.Info("lattice-sim ready, reading requests from stdin")
	runLoop(ctx, srv, os.Stdin, os.Stdout, startupLog)
}

// envelope is the wire form of one response line
type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Meta  *api.Meta   `json:"meta,omitempty"`
	Error *api.Error  `json:"error,omitempty"`
}

func runLoop(ctx context.Context, srv *api.Server, in *os.File, out *os.File, log *logrus.Logger) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case line, open := <-lines:
			if !open {
				return
			}
			var req api.Request
			var env envelope
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				env.Error = api.ErrValidation("malformed request line: " + err.Error())
			} else {
				resp, apiErr := srv.Dispatch(req)
				if apiErr != nil {
					env.Error = apiErr
				} else {
					env.Data = resp.Data
					env.Meta = resp.Meta
				}
			}
			if err := encoder.Encode(env); err != nil {
				log.WithError(err).Error("failed to write response")
				return
			}
			if err := writer.Flush(); err != nil {
				log.WithError(err).Error("failed to flush response")
				return
			}
		}
	}
}
