package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	AttrRunID = "preflow.run_id"

	// Граф
	AttrGraphNodes  = "graph.nodes"
	AttrGraphEdges  = "graph.edges"
	AttrGraphSource = "graph.source"
	AttrGraphSink   = "graph.sink"

	// Решатель
	AttrWorkers  = "solver.workers"
	AttrRounds   = "solver.rounds"
	AttrPushes   = "solver.pushes"
	AttrRelabels = "solver.relabels"
	AttrMaxFlow  = "solver.max_flow"

	// Раунд
	AttrRound       = "round.number"
	AttrRoundActive = "round.active_nodes"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(nodes, edges, source, sink int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int(AttrGraphSource, source),
		attribute.Int(AttrGraphSink, sink),
	}
}

// SolverAttributes возвращает итоговые атрибуты решения
func SolverAttributes(workers, rounds int, pushes, relabels, maxFlow int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrWorkers, workers),
		attribute.Int(AttrRounds, rounds),
		attribute.Int64(AttrPushes, pushes),
		attribute.Int64(AttrRelabels, relabels),
		attribute.Int64(AttrMaxFlow, maxFlow),
	}
}

// RoundAttributes возвращает атрибуты события раунда
func RoundAttributes(round, active, pushes, relabels int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRound, round),
		attribute.Int(AttrRoundActive, active),
		attribute.Int(AttrPushes, pushes),
		attribute.Int(AttrRelabels, relabels),
	}
}
