package query

import (
	"context"

	"github.com/prompt-general/melodex/pkg/models"
)

// LanguageModel is the synchronous completion backend used by the
// classifier, synthesizer and renderer.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder produces the same fixed-dimension embedding used at ingestion
// time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GraphStore executes synthesized Cypher and exposes the schema
// description fed verbatim to the synthesis prompts.
type GraphStore interface {
	Query(ctx context.Context, cypher string) ([]map[string]any, error)
	Schema() string
}

// VectorIndex performs nearest-neighbor retrieval over embedded chunks.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float32, topK int) ([]models.VectorMatch, error)
}

// SessionStore holds per-session bounded conversation history.
type SessionStore interface {
	GetOrCreate(id string) (string, bool)
	Append(token, question, answer string)
	HistoryText(token string) string
}
