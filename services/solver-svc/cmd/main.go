// Package main is the entry point for the preflow solver.
//
// The solver reads a flow network in the lab text format, computes the maximum
// flow from the source to the sink with a parallel preflow-push engine and
// prints "f = <value>" to standard output.
//
// # Usage
//
//	preflow [flags] [input]
//
// When input is omitted or "-", the network is read from standard input.
//
//	-workers N       size of the worker pool (solver.workers)
//	-config PATH     YAML configuration file
//	-report FORMAT   none, json, csv, markdown, excel, pdf, dot (report.format)
//	-report-out PATH report destination, "-" for stdout (report.output)
//	-verify          check invariants at every barrier (solver.verify_invariants)
//	-max-rounds N    abort after N rounds, 0 means unlimited (solver.max_rounds)
//	-log-level LVL   debug, info, warn, error (log.level)
//
// # Input Format
//
// The first line holds "n m" or "n m C P"; C and P are accepted and ignored.
// It is followed by m triples "u v c" describing undirected edges between
// nodes u and v with capacity c. Nodes are numbered from 0. Node 0 and node
// n-1 are the terminals; the one with the larger incident capacity becomes
// the source.
//
//	4 5
//	0 1 10
//	0 2 10
//	1 2 1
//	1 3 10
//	2 3 10
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command line flags
//  2. Environment variables (prefix: PREFLOW_)
//  3. Config file (PREFLOW_CONFIG_PATH, -config, config.yaml, config/config.yaml,
//     /etc/preflow/config.yaml)
//  4. Default values
//
// Key configuration options (environment variable format):
//
//	PREFLOW_SOLVER_WORKERS           - Worker pool size (default: 2)
//	PREFLOW_SOLVER_VERIFY_INVARIANTS - Full invariant suite per round (default: false)
//	PREFLOW_SOLVER_MAX_ROUNDS        - Round limit, 0 = unlimited (default: 0)
//	PREFLOW_LOG_LEVEL                - debug, info, warn, error (default: info)
//	PREFLOW_LOG_OUTPUT               - stdout, stderr, file (default: stderr)
//	PREFLOW_METRICS_ENABLED          - Enable Prometheus metrics (default: false)
//	PREFLOW_METRICS_TEXTFILE         - node_exporter textfile written on exit
//	PREFLOW_METRICS_PORT             - Serve /metrics while solving, 0 = off
//	PREFLOW_TRACING_ENABLED          - Export spans over OTLP gRPC (default: false)
//	PREFLOW_REPORT_FORMAT            - Result report format (default: none)
//
// # Exit Status
//
//	0 - success
//	1 - report or other runtime failure
//	2 - invalid input (parse errors, dangling edges, negative capacities)
//	3 - invalid configuration
//	4 - solver invariant violated, stalled or round limit reached
//	5 - interrupted
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"preflow/pkg/apperror"
	"preflow/pkg/config"
	"preflow/pkg/logger"
	"preflow/pkg/metrics"
	"preflow/pkg/telemetry"
	"preflow/services/solver-svc/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// =========================================================================
	// Flags
	// =========================================================================
	fs := flag.NewFlagSet("preflow", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: preflow [flags] [input]")
		fs.PrintDefaults()
	}

	workers := fs.Int("workers", 0, "size of the worker pool")
	configPath := fs.String("config", "", "path to a YAML config file")
	reportFormat := fs.String("report", "", "report format: none, json, csv, markdown, excel, pdf, dot")
	reportOut := fs.String("report-out", "", `report destination, "-" for stdout`)
	verify := fs.Bool("verify", false, "check invariants at every barrier")
	maxRounds := fs.Int("max-rounds", 0, "abort after this many rounds, 0 means unlimited")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apperror.ExitOK
		}
		return apperror.ExitInput
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return apperror.ExitInput
	}

	// Переопределяем только явно заданные флаги
	overrides := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			overrides["solver.workers"] = *workers
		case "report":
			overrides["report.format"] = *reportFormat
		case "report-out":
			overrides["report.output"] = *reportOut
		case "verify":
			overrides["solver.verify_invariants"] = *verify
		case "max-rounds":
			overrides["solver.max_rounds"] = *maxRounds
		case "log-level":
			overrides["log.level"] = *logLevel
		}
	})

	// =========================================================================
	// Configuration Loading
	// =========================================================================
	loaderOpts := []config.LoaderOption{config.WithOverrides(overrides)}
	if *configPath != "" {
		if _, err := os.Stat(*configPath); err != nil {
			logger.Error("Config file not found", "path", *configPath, "error", err)
			return apperror.ExitConfig
		}
		loaderOpts = append(loaderOpts, config.WithConfigPaths(*configPath))
	}

	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		err = apperror.Wrap(err, apperror.CodeInvalidConfig, "failed to load config")
		logger.Error("Configuration error", "error", err)
		return apperror.ExitCode(err)
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// Spans are exported over OTLP gRPC. Shutdown flushes pending spans
	// before the process exits.
	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Warn("Failed to init telemetry", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown telemetry", "error", err)
			}
		}()
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// Metrics are either scraped from the HTTP endpoint while the solver runs
	// or written once to a node_exporter textfile on exit.
	var opts []service.Option
	if cfg.Metrics.Enabled {
		m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
		opts = append(opts, service.WithMetrics(m))

		if cfg.Metrics.Port > 0 {
			srv := m.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Warn("Metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			logger.Info("Metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		}
	}

	// =========================================================================
	// Solve
	// =========================================================================
	svc := service.NewSolver(cfg, opts...)
	defer func() {
		if err := svc.FlushMetrics(); err != nil {
			logger.Warn("Failed to write metrics textfile", "error", err)
		}
	}()

	input := fs.Arg(0)
	out, err := svc.SolveFile(ctx, input)
	if err != nil {
		logger.Error("Solve failed", "input", input, "code", apperror.Code(err), "error", err)
		return apperror.ExitCode(err)
	}

	fmt.Printf("f = %d\n", out.Result.MaxFlow)

	if err := svc.Report(ctx, out); err != nil {
		logger.Error("Report failed", "error", err)
		return apperror.ExitCode(err)
	}

	return apperror.ExitOK
}
