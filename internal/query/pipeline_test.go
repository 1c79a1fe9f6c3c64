package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prompt-general/melodex/internal/session"
	"github.com/prompt-general/melodex/pkg/models"
)

// fakeLLM routes each prompt through a scripted function and records every
// prompt it sees.
type fakeLLM struct {
	complete func(prompt string) (string, error)
	calls    []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	return f.complete(prompt)
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// promptKind identifies which round trip a prompt belongs to, keyed on
// fixed phrases in the instruction templates.
func promptKind(prompt string) string {
	switch {
	case contains(prompt, "classification assistant"):
		return "classify"
	case contains(prompt, "Cypher query:"):
		return "synthesize"
	case contains(prompt, "AI-powered news assistant"):
		return "render"
	case contains(prompt, "Greeting:"):
		return "greet"
	default:
		return "unknown"
	}
}

type fakeGraph struct {
	rows     []map[string]any
	err      error
	received []string
}

func (f *fakeGraph) Query(_ context.Context, cypher string) ([]map[string]any, error) {
	f.received = append(f.received, cypher)
	return f.rows, f.err
}

func (f *fakeGraph) Schema() string { return "Article/Author/URL test schema" }

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	matches []models.VectorMatch
	err     error
	queries int
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int) ([]models.VectorMatch, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

// scriptedLLM answers classification with the given label, synthesis with
// the given cypher, and rendering by echoing the whole prompt so tests can
// assert on payload contents.
func scriptedLLM(label, cypher string) *fakeLLM {
	f := &fakeLLM{}
	f.complete = func(prompt string) (string, error) {
		switch promptKind(prompt) {
		case "classify":
			return label, nil
		case "synthesize":
			return cypher, nil
		case "render":
			return "rendered: " + prompt, nil
		case "greet":
			return "Hey there! What music news can I dig up for you?", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}
	return f
}

func newTestPipeline(llm *fakeLLM, graph *fakeGraph, index *fakeIndex) (*Pipeline, *session.Store) {
	sessions := session.NewStore(session.DefaultWindow)
	p := NewPipeline(sessions, llm, graph, &fakeEmbedder{}, index, PipelineOptions{})
	return p, sessions
}

func countKind(llm *fakeLLM, kind string) int {
	n := 0
	for _, prompt := range llm.calls {
		if promptKind(prompt) == kind {
			n++
		}
	}
	return n
}

func TestGreetingNeverQueriesGraph(t *testing.T) {
	llm := scriptedLLM("GREETING", "")
	graph := &fakeGraph{}
	p, _ := newTestPipeline(llm, graph, &fakeIndex{})

	answer, sessionID := p.Run(context.Background(), "hello there", "")
	if sessionID == "" {
		t.Fatal("no session token returned")
	}
	if answer == "" || contains(answer, "knowledge graph") {
		t.Fatalf("unexpected greeting answer %q", answer)
	}
	if len(graph.received) != 0 {
		t.Fatalf("greeting triggered %d graph queries", len(graph.received))
	}
	if countKind(llm, "synthesize") != 0 {
		t.Fatal("greeting triggered query synthesis")
	}
}

func TestRejectionReturnsFixedStringAndPersists(t *testing.T) {
	llm := scriptedLLM("SOMETHING_ELSE", "")
	p, sessions := newTestPipeline(llm, &fakeGraph{}, &fakeIndex{})

	answer, sessionID := p.Run(context.Background(), "what is the capital of France?", "")
	if answer != MsgRefusal {
		t.Fatalf("answer = %q, want exact refusal string", answer)
	}

	history := sessions.HistoryText(sessionID)
	if !contains(history, "capital of France") || !contains(history, MsgRefusal) {
		t.Fatalf("rejected exchange not recorded, history = %q", history)
	}
}

func TestEmptyGraphResultSkipsRendering(t *testing.T) {
	llm := scriptedLLM("DATE_RELATED", "MATCH (a:Article) RETURN a.title")
	graph := &fakeGraph{rows: nil}
	p, _ := newTestPipeline(llm, graph, &fakeIndex{})

	answer, _ := p.Run(context.Background(), "latest news", "")
	if answer != MsgNothingFound {
		t.Fatalf("answer = %q, want nothing-found message", answer)
	}
	if countKind(llm, "render") != 0 {
		t.Fatal("empty result still produced a rendering call")
	}
}

func TestDateIntentHasNoVectorFallback(t *testing.T) {
	llm := scriptedLLM("DATE_RELATED", "MATCH (a:Article) RETURN a.title")
	index := &fakeIndex{matches: []models.VectorMatch{{Title: "hit"}}}
	p, _ := newTestPipeline(llm, &fakeGraph{}, index)

	answer, _ := p.Run(context.Background(), "latest news", "")
	if answer != MsgNothingFound {
		t.Fatalf("answer = %q, want nothing-found message", answer)
	}
	if index.queries != 0 {
		t.Fatalf("date intent ran %d vector queries, want 0", index.queries)
	}
}

func TestMusicIntentFallsBackToVector(t *testing.T) {
	llm := scriptedLLM("MUSIC_RELATED", "MATCH (a:Article) RETURN a.title")
	index := &fakeIndex{matches: []models.VectorMatch{{
		Title:           "Kendrick Drops Surprise Album",
		Author:          "London Jennn",
		PublicationDate: "2025-07-16",
		URL:             "https://example.com/kendrick",
		Text:            "Full chunk text here.",
	}}}
	p, _ := newTestPipeline(llm, &fakeGraph{}, index)

	answer, _ := p.Run(context.Background(), "tell me about kendrick", "")
	if index.queries != 1 {
		t.Fatalf("vector fallback ran %d times, want 1", index.queries)
	}
	if !contains(answer, "https://example.com/kendrick") {
		t.Fatalf("fallback answer missing snippet URL: %q", answer)
	}
	if !contains(answer, "pgvector") {
		t.Fatalf("fallback answer not rendered from vector source: %q", answer)
	}
}

func TestMusicIntentEmptyEverywhere(t *testing.T) {
	llm := scriptedLLM("MUSIC_RELATED", "MATCH (a:Article) RETURN a.title")
	p, _ := newTestPipeline(llm, &fakeGraph{}, &fakeIndex{})

	answer, _ := p.Run(context.Background(), "tell me about kendrick", "")
	if answer != MsgNothingFound {
		t.Fatalf("answer = %q, want nothing-found message", answer)
	}
	if answer == "" {
		t.Fatal("empty answer returned")
	}
}

func TestExecutionErrorReturnsFixedMessage(t *testing.T) {
	llm := scriptedLLM("MUSIC_RELATED", "MATCH (a:Article) RETURN a.title")
	graph := &fakeGraph{err: errors.New("syntax error near MATCH")}
	index := &fakeIndex{matches: []models.VectorMatch{{Title: "hit"}}}
	p, _ := newTestPipeline(llm, graph, index)

	answer, _ := p.Run(context.Background(), "tell me about drake", "")
	if answer != MsgExecutionError {
		t.Fatalf("answer = %q, want execution-error message", answer)
	}
	if index.queries != 0 {
		t.Fatal("execution error incorrectly triggered vector fallback")
	}
}

func TestFencedQueryExecutedStripped(t *testing.T) {
	llm := scriptedLLM("MUSIC_RELATED",
		"```cypher\nMATCH (a:Article)-[:HAS_URL]->(u:URL) RETURN a.title, u.url AS source_url\n```")
	graph := &fakeGraph{rows: []map[string]any{{"title": "x", "source_url": "https://example.com/x"}}}
	p, _ := newTestPipeline(llm, graph, &fakeIndex{})

	p.Run(context.Background(), "articles about x", "")
	if len(graph.received) != 1 {
		t.Fatalf("graph received %d queries, want 1", len(graph.received))
	}
	if contains(graph.received[0], "```") {
		t.Fatalf("fenced wrapper reached the graph store: %q", graph.received[0])
	}
}

func TestRenderedAnswerContainsAllSourceURLs(t *testing.T) {
	llm := scriptedLLM("DATE_RELATED",
		"MATCH (a:Article)-[:HAS_URL]->(u:URL) RETURN a.title, u.url AS source_url ORDER BY a.publication_date DESC LIMIT 5")
	graph := &fakeGraph{rows: []map[string]any{
		{"title": "one", "source_url": "https://example.com/one"},
		{"title": "two", "source_url": "https://example.com/two"},
		{"title": "three", "source_url": "https://example.com/three"},
	}}
	p, _ := newTestPipeline(llm, graph, &fakeIndex{})

	answer, _ := p.Run(context.Background(), "latest articles", "")
	for _, url := range []string{"https://example.com/one", "https://example.com/two", "https://example.com/three"} {
		if !contains(answer, url) {
			t.Fatalf("rendered answer missing source URL %s: %q", url, answer)
		}
	}
}

func TestFollowUpUsesHistoryAwareClassification(t *testing.T) {
	const articleURL = "https://example.com/article-x"

	llm := &fakeLLM{}
	llm.complete = func(prompt string) (string, error) {
		switch promptKind(prompt) {
		case "classify":
			// A bare "source url?" is only DATE_RELATED because the
			// conversation history mentions the article.
			if contains(prompt, "source url?") && contains(prompt, "Article X") {
				return "DATE_RELATED", nil
			}
			return "MUSIC_RELATED", nil
		case "synthesize":
			return "MATCH (a:Article {title: 'Article X'})-[:HAS_URL]->(u:URL) RETURN u.url AS source_url", nil
		case "render":
			return "rendered: " + prompt, nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}

	graph := &fakeGraph{rows: []map[string]any{
		{"title": "Article X", "author": "London Jennn", "source_url": articleURL},
	}}
	p, _ := newTestPipeline(llm, graph, &fakeIndex{})

	_, sessionID := p.Run(context.Background(), "who is the author of Article X?", "")

	answer, _ := p.Run(context.Background(), "source url?", sessionID)
	if !contains(answer, articleURL) {
		t.Fatalf("follow-up answer missing URL from history-aware lookup: %q", answer)
	}
}

func TestEverySessionBranchPersists(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{name: "greeting", label: "GREETING"},
		{name: "date", label: "DATE_RELATED"},
		{name: "music", label: "MUSIC_RELATED"},
		{name: "reject", label: "NONSENSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := scriptedLLM(tt.label, "MATCH (a:Article) RETURN a.title")
			graph := &fakeGraph{rows: []map[string]any{{"title": "x"}}}
			p, sessions := newTestPipeline(llm, graph, &fakeIndex{})

			_, sessionID := p.Run(context.Background(), "the question", "")
			if history := sessions.HistoryText(sessionID); !contains(history, "the question") {
				t.Fatalf("branch %s left the session unmutated", tt.name)
			}
		})
	}
}
