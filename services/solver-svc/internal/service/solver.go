package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"preflow/pkg/apperror"
	"preflow/pkg/config"
	"preflow/pkg/logger"
	"preflow/pkg/metrics"
	"preflow/pkg/telemetry"
	"preflow/services/solver-svc/internal/algorithms"
	"preflow/services/solver-svc/internal/converter"
	"preflow/services/solver-svc/internal/generator"
	"preflow/services/solver-svc/internal/graph"
)

// Solver связывает разбор входа, решатель, метрики, трассировку и отчёты
type Solver struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	stdout  io.Writer
}

// Option настраивает Solver
type Option func(*Solver)

// WithMetrics задаёт метрики. nil отключает запись метрик
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Solver) {
		s.metrics = m
	}
}

// WithStdout перенаправляет отчёты, адресованные в "-"
func WithStdout(w io.Writer) Option {
	return func(s *Solver) {
		s.stdout = w
	}
}

// NewSolver создаёт сервис решателя
func NewSolver(cfg *config.Config, opts ...Option) *Solver {
	s := &Solver{
		cfg:    cfg,
		stdout: os.Stdout,
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.Get()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome результат одного запуска
type Outcome struct {
	RunID  string
	Input  *converter.Input
	Graph  *graph.Graph
	Result *algorithms.Result
	Flows  []converter.FlowEdge
}

// SolveFile читает сеть из файла ("-" или "" - stdin) и решает её
func (s *Solver) SolveFile(ctx context.Context, path string) (*Outcome, error) {
	in, err := converter.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, in)
}

// SolveReader читает сеть из r и решает её
func (s *Solver) SolveReader(ctx context.Context, r io.Reader) (*Outcome, error) {
	in, err := converter.Parse(r)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, in)
}

// Solve строит граф и запускает параллельный preflow-push
func (s *Solver) Solve(ctx context.Context, in *converter.Input) (*Outcome, error) {
	runID := uuid.NewString()
	log := logger.WithRunID(runID).With("component", "solver")

	ctx, span := telemetry.StartSpan(ctx, "preflow.solve",
		telemetry.WithAttributes(attribute.String(telemetry.AttrRunID, runID)),
	)
	defer span.End()

	var timer *metrics.Timer
	if s.metrics != nil {
		timer = s.metrics.SolveTimer()
	}

	g, err := in.ToGraph(s.cfg.Solver.Workers, graph.WithTerminals(s.cfg.Solver.Source, s.cfg.Solver.Sink))
	if err != nil {
		s.fail(ctx, log, err, timer)
		return nil, err
	}

	span.SetAttributes(telemetry.GraphAttributes(g.NodeCount(), g.EdgeCount(), g.Source.Index, g.Sink.Index)...)
	span.SetAttributes(attribute.Int(telemetry.AttrWorkers, g.Workers))
	if s.metrics != nil {
		s.metrics.RecordGraphSize(g.NodeCount(), g.EdgeCount(), g.Workers)
	}

	log.Info("Solving max flow",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"source", g.Source.Index,
		"sink", g.Sink.Index,
		"workers", g.Workers,
	)

	opts := algorithms.DefaultOptions().
		WithMaxRounds(s.cfg.Solver.MaxRounds).
		WithVerifyInvariants(s.cfg.Solver.VerifyInvariants).
		WithHistory(s.cfg.ReportEnabled()).
		WithObserver(s.observer(ctx, log))

	res, err := algorithms.Run(ctx, g, opts)
	if err != nil {
		s.fail(ctx, log, err, timer)
		return nil, err
	}

	span.SetAttributes(telemetry.SolverAttributes(res.Workers, res.Rounds, res.Pushes, res.Relabels, res.MaxFlow)...)
	if s.metrics != nil {
		timer.ObserveDuration()
		s.metrics.RecordSolve(true, res.MaxFlow)
	}

	log.Info("Max flow computed",
		"max_flow", res.MaxFlow,
		"rounds", res.Rounds,
		"pushes", res.Pushes,
		"relabels", res.Relabels,
		"max_height", res.MaxHeight,
		"duration", res.Duration,
	)

	return &Outcome{
		RunID:  runID,
		Input:  in,
		Graph:  g,
		Result: res,
		Flows:  converter.ToFlowEdges(g),
	}, nil
}

// observer переносит статистику раунда в метрики, события span и отладочный лог.
// Вызывается на барьере, поэтому записи не конкурируют.
func (s *Solver) observer(ctx context.Context, log *slog.Logger) algorithms.Observer {
	return func(v algorithms.RoundView) {
		st := v.Stats
		if s.metrics != nil {
			s.metrics.RecordRound(st.Active, st.Pushes, st.Relabels, st.Duration)
		}
		telemetry.AddEvent(ctx, "round", telemetry.RoundAttributes(st.Round, st.Active, st.Pushes, st.Relabels)...)
		log.Debug("Round completed",
			"round", st.Round,
			"active", st.Active,
			"pushes", st.Pushes,
			"relabels", st.Relabels,
			"admitted", st.Admitted,
			"done", v.Done,
		)
	}
}

func (s *Solver) fail(ctx context.Context, log *slog.Logger, err error, timer *metrics.Timer) {
	telemetry.SetError(ctx, err)

	code := apperror.Code(err)
	if s.metrics != nil {
		timer.ObserveDuration()
		s.metrics.RecordSolve(false, 0)
		if apperror.IsCritical(err) || code == apperror.CodeWorkerFailure {
			s.metrics.RecordViolation(string(code))
		}
	}

	if apperror.IsCritical(err) {
		log.Error("Solver invariant violated", "code", code, "error", err)
		return
	}
	log.Warn("Solve failed", "code", code, "error", err)
}

// ReportData собирает данные отчёта для результата
func (s *Solver) ReportData(out *Outcome) *generator.ReportData {
	data := generator.NewReportData(out.RunID, out.Input, out.Result, out.Flows, out.Graph.Source.Index, out.Graph.Sink.Index)
	data.Title = s.cfg.Report.Title
	data.MaxEdgesInTable = s.cfg.Report.MaxEdgesInTable
	return data
}

// WriteReport пишет отчёт в настроенном формате в w
func (s *Solver) WriteReport(ctx context.Context, out *Outcome, w io.Writer) error {
	gen, err := generator.New(s.cfg.Report.Format)
	if err != nil {
		return err
	}

	_, span := telemetry.StartSpan(ctx, "preflow.report",
		telemetry.WithAttributes(
			attribute.String(telemetry.AttrRunID, out.RunID),
			attribute.String("report.format", string(gen.Format())),
		),
	)
	defer span.End()

	body, err := gen.Generate(ctx, s.ReportData(out))
	if err != nil {
		return apperror.Wrap(err, apperror.CodeReport, "failed to generate report")
	}
	if _, err := w.Write(body); err != nil {
		return apperror.Wrap(err, apperror.CodeReport, "failed to write report")
	}
	return nil
}

// Report пишет отчёт в report.output, если отчёт включён
func (s *Solver) Report(ctx context.Context, out *Outcome) error {
	if !s.cfg.ReportEnabled() {
		return nil
	}

	target := s.cfg.Report.Output
	if target == "" || target == "-" {
		return s.WriteReport(ctx, out, s.stdout)
	}

	f, err := os.Create(target)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeReport, "failed to create report file").WithField(target)
	}
	if err := s.WriteReport(ctx, out, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperror.Wrap(err, apperror.CodeReport, "failed to close report file").WithField(target)
	}

	logger.WithRunID(out.RunID).Info("Report written", "format", s.cfg.Report.Format, "path", target)
	return nil
}

// FlushMetrics пишет метрики в textfile, если он настроен
func (s *Solver) FlushMetrics() error {
	if s.metrics == nil || s.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", s.cfg.Metrics.Textfile, err)
	}
	return nil
}
