package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	provider, err := Init(context.Background(), Config{Enabled: false, ServiceName: "test"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if provider.Tracer() == nil {
		t.Error("tracer should not be nil even when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() of noop provider error = %v", err)
	}
}

func TestGet_Uninitialized(t *testing.T) {
	globalProvider = nil

	provider := Get()
	if provider == nil || provider.tracer == nil {
		t.Fatal("Get() should return a usable provider when uninitialized")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestInit_WithExporter(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := Init(context.Background(), Config{
		Enabled:     true,
		ServiceName: "preflow-test",
		Version:     "1.0.0",
		Environment: "test",
		SampleRate:  1,
		Exporter:    exporter,
	})
	require.NoError(t, err)
	t.Cleanup(func() { globalProvider = nil })

	ctx, span := StartSpan(context.Background(), "preflow.solve",
		WithAttributes(GraphAttributes(6, 8, 0, 5)...))
	AddEvent(ctx, "round", RoundAttributes(1, 2, 3, 1)...)
	SetAttributes(ctx, SolverAttributes(2, 4, 10, 3, 23)...)
	SetError(ctx, errors.New("stalled"))
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, "preflow.solve", got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	require.Len(t, got.Events, 2) // round + exception
	assert.Equal(t, "round", got.Events[0].Name)
	assert.Contains(t, got.Attributes, attribute.Int64(AttrMaxFlow, 23))
	assert.Contains(t, got.Attributes, attribute.Int(AttrGraphNodes, 6))
}

func TestAttributes(t *testing.T) {
	graph := GraphAttributes(10, 20, 0, 9)
	assert.Len(t, graph, 4)
	assert.Equal(t, attribute.Key(AttrGraphSink), graph[3].Key)

	solver := SolverAttributes(4, 12, 100, 30, 55)
	assert.Len(t, solver, 5)
	assert.Equal(t, int64(55), solver[4].Value.AsInt64())

	round := RoundAttributes(3, 7, 5, 2)
	assert.Equal(t, int64(3), round[0].Value.AsInt64())
}

var _ sdktrace.SpanExporter = (*tracetest.InMemoryExporter)(nil)
