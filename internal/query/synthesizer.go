package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Variant selects which synthesis prompt is used.
type Variant int

const (
	// VariantGeneral is tuned for entity and topic phrasing.
	VariantGeneral Variant = iota
	// VariantDate is tuned for date and aggregation phrasing.
	VariantDate
)

// Synthesizer turns a natural-language question into a Cypher query
// against the news schema.
type Synthesizer struct {
	llm LanguageModel
}

// NewSynthesizer creates a new query synthesizer
func NewSynthesizer(llm LanguageModel) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize generates a Cypher query for the question. The generated text
// is stripped of any fenced code wrapper and checked against the schema
// contract before being handed to the executor.
func (s *Synthesizer) Synthesize(ctx context.Context, variant Variant, question, schemaDescription string) (string, error) {
	template := generalCypherPrompt
	if variant == VariantDate {
		template = dateCypherPrompt
	}

	// Cypher generation is always isolated from conversation context so a
	// previous query cannot bleed into a fresh one.
	prompt := fmt.Sprintf(template, schemaDescription,
		"No prior conversation influencing query. Current query only.", question)

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("query synthesis failed: %w", err)
	}

	cypher := StripCodeFence(raw)
	if cypher == "" {
		return "", fmt.Errorf("query synthesis returned empty query")
	}

	if err := ValidateQuery(cypher); err != nil {
		return "", fmt.Errorf("synthesized query violates schema contract: %w", err)
	}

	return cypher, nil
}

// StripCodeFence removes a markdown fenced-code wrapper from a generated
// query, if present. The language annotation after the opening fence is
// dropped with it.
func StripCodeFence(raw string) string {
	q := strings.TrimSpace(raw)
	if !strings.HasPrefix(q, "```") {
		return q
	}

	q = strings.TrimPrefix(q, "```")
	if idx := strings.IndexByte(q, '\n'); idx >= 0 {
		// Drop the annotation line ("cypher", "sql", ...).
		first := strings.TrimSpace(q[:idx])
		if first == "" || !strings.ContainsAny(first, " \t") {
			q = q[idx+1:]
		}
	}
	q = strings.TrimSuffix(strings.TrimSpace(q), "```")
	return strings.TrimSpace(q)
}

var reversedTraversal = regexp.MustCompile(`(?i)\[:HAS_URL\]->\s*\([^)]*\)\s*<-\s*\[:WROTE\]`)

// ValidateQuery deterministically checks a generated query against the
// documented schema contract instead of relying solely on the model's
// compliance. It catches the violations the execution engine would reject
// or silently mis-traverse.
func ValidateQuery(cypher string) error {
	upper := strings.ToUpper(cypher)

	if strings.Contains(upper, "HAS_PUBLICATION_DATE") {
		return fmt.Errorf("publication_date is a property on Article, not a relationship")
	}
	if strings.Contains(upper, "PARTITION BY") || regexp.MustCompile(`(?i)\bOVER\s*\(`).MatchString(cypher) {
		return fmt.Errorf("window functions are not supported")
	}
	if regexp.MustCompile(`(?i)^\s*SHOW\b|\bSHOW\s+ALL\b|\bSHOW\s+PROPERTIES\b`).MatchString(cypher) {
		return fmt.Errorf("schema introspection commands are not allowed")
	}
	if reversedTraversal.MatchString(cypher) {
		return fmt.Errorf("traversal direction must be Author->Article->URL")
	}

	return nil
}
