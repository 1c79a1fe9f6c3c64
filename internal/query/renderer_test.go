package query

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRenderDegradesToRawPayload(t *testing.T) {
	llm := &fakeLLM{
		complete: func(prompt string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}

	r := NewRenderer(llm)
	payload := "[{title: x, source_url: https://example.com/x}]"
	got := r.Render(context.Background(), "latest news", "", payload, "neo4j")

	if !strings.Contains(got, payload) {
		t.Fatalf("degraded answer missing raw payload: %q", got)
	}
	if !strings.Contains(got, "Apologies") {
		t.Fatalf("degraded answer missing apology: %q", got)
	}
}

func TestRenderPassesPayloadAndSource(t *testing.T) {
	var seen string
	llm := &fakeLLM{
		complete: func(prompt string) (string, error) {
			seen = prompt
			return "formatted answer", nil
		},
	}

	r := NewRenderer(llm)
	got := r.Render(context.Background(), "latest news", "Human: hi\nAssistant: hello", "payload-rows", "neo4j")

	if got != "formatted answer" {
		t.Fatalf("Render = %q", got)
	}
	for _, want := range []string{"payload-rows", "Source: neo4j", "latest news", "Human: hi"} {
		if !strings.Contains(seen, want) {
			t.Fatalf("render prompt missing %q", want)
		}
	}
}
