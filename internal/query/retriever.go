package query

import (
	"context"
	"fmt"
	"strings"
)

// Retriever performs embedding-based nearest-neighbor search over the
// vector index. It is the fallback when the graph path yields nothing
// usable, deliberately narrow: topK defaults to 1.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
}

// NewRetriever creates a new fallback retriever
func NewRetriever(embedder Embedder, index VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// SemanticSearch embeds the question with the ingestion-time embedding
// model and returns the matches rendered as metadata headers plus the
// stored chunk text, in the index's native similarity order.
func (r *Retriever) SemanticSearch(ctx context.Context, question string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 1
	}

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := r.index.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	snippets := make([]string, 0, len(matches))
	for _, m := range matches {
		title := m.Title
		if title == "" {
			title = "Untitled"
		}
		author := m.Author
		if author == "" {
			author = "Unknown"
		}
		date := m.PublicationDate
		if date == "" {
			date = "Unknown"
		}
		url := m.URL
		if url == "" {
			url = "N/A"
		}
		snippets = append(snippets,
			fmt.Sprintf("**%s** by %s on %s\nURL: %s\n\n%s", title, author, date, url, m.Text))
	}

	return snippets, nil
}

// joinSnippets renders retrieved snippets as one payload for the renderer.
func joinSnippets(snippets []string) string {
	return strings.Join(snippets, "\n\n")
}
