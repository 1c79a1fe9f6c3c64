package query

import (
	"context"
	"fmt"
	"log"
)

// Renderer turns raw query results into a user-facing answer with a single
// LLM round trip under the fixed formatting contract.
type Renderer struct {
	llm LanguageModel
}

// NewRenderer creates a new answer renderer
func NewRenderer(llm LanguageModel) *Renderer {
	return &Renderer{llm: llm}
}

// Render formats a result payload for the user. sourceTag names where the
// payload came from ("neo4j" or "pgvector"). Rendering failure never
// surfaces to the caller: it degrades to an apology plus the raw payload.
func (r *Renderer) Render(ctx context.Context, question, historyText, payload, sourceTag string) string {
	prompt := fmt.Sprintf(answerPrompt, historyContext(historyText), question, sourceTag, payload)

	answer, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Answer rendering failed, returning raw payload: %v", err)
		return fmt.Sprintf("Apologies, I could not format the result. Raw result:\n%s", payload)
	}

	return answer
}
