package query

import (
	"context"
	"errors"
	"testing"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		label string
		want  Intent
	}{
		{"GREETING", IntentGreeting},
		{"DATE_RELATED", IntentDateRelated},
		{"MUSIC_RELATED", IntentMusicRelated},
		{"  music_related \n", IntentMusicRelated},
		{"OTHER", IntentOther},
		{"I think this is about music", IntentOther},
		{"", IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := parseIntent(tt.label); got != tt.want {
				t.Fatalf("parseIntent(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorDegradesToOther(t *testing.T) {
	llm := &fakeLLM{
		complete: func(prompt string) (string, error) {
			return "", errors.New("backend unavailable")
		},
	}

	c := NewClassifier(llm)
	if got := c.Classify(context.Background(), "latest news", ""); got != IntentOther {
		t.Fatalf("Classify on LLM error = %v, want IntentOther", got)
	}
}

func TestClassifyIncludesHistory(t *testing.T) {
	var seen string
	llm := &fakeLLM{
		complete: func(prompt string) (string, error) {
			seen = prompt
			return "DATE_RELATED", nil
		},
	}

	c := NewClassifier(llm)
	c.Classify(context.Background(), "source url?", "Human: who wrote Article X?\nAssistant: London Jennn")
	if !contains(seen, "who wrote Article X?") {
		t.Fatal("history not included in classification prompt")
	}

	c.Classify(context.Background(), "hello", "")
	if !contains(seen, "No previous conversation history.") {
		t.Fatal("empty history marker not included in classification prompt")
	}
}
