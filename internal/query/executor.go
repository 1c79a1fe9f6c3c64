package query

import (
	"context"
	"fmt"
	"log"
)

// Fixed user-visible strings. Every failure class inside the pipeline maps
// to one of these; nothing propagates as an error past the orchestrator.
const (
	// MsgRefusal is returned for questions outside the service's scope.
	MsgRefusal = "Sorry, I can only answer music-related questions."
	// MsgNothingFound is returned when the knowledge graph has no rows for
	// a well-formed query.
	MsgNothingFound = "I could not find any relevant information in the knowledge graph."
	// MsgExecutionError is returned for malformed queries, backend faults
	// and timeouts.
	MsgExecutionError = "There was an error processing your request with the knowledge graph."
)

// Executor runs synthesized queries against the graph store.
type Executor struct {
	graph GraphStore
}

// NewExecutor creates a new query executor
func NewExecutor(graph GraphStore) *Executor {
	return &Executor{graph: graph}
}

// Execute runs a Cypher query. The three outcomes are distinguished for
// the caller: rows, no rows (nil, nil), or an execution error.
func (e *Executor) Execute(ctx context.Context, cypher string) ([]map[string]any, error) {
	log.Printf("Executing Cypher query: %s", cypher)

	rows, err := e.graph.Query(ctx, cypher)
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return rows, nil
}
