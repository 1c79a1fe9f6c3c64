package config

import (
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("graph:\n  uri: bolt://localhost:7687\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Pipeline.SessionWindow != 7 {
		t.Errorf("SessionWindow = %d, want 7", cfg.Pipeline.SessionWindow)
	}
	if cfg.Pipeline.FallbackTopK != 1 {
		t.Errorf("FallbackTopK = %d, want 1", cfg.Pipeline.FallbackTopK)
	}
	if cfg.Vector.Dimensions != 768 {
		t.Errorf("Vector.Dimensions = %d, want 768", cfg.Vector.Dimensions)
	}
	if cfg.LLM.Dimensions != cfg.Vector.Dimensions {
		t.Errorf("LLM.Dimensions = %d, want %d", cfg.LLM.Dimensions, cfg.Vector.Dimensions)
	}
	if cfg.Vector.Table != "article_chunks" {
		t.Errorf("Vector.Table = %q", cfg.Vector.Table)
	}
	if cfg.Kafka.Topic != "articles.ingested" {
		t.Errorf("Kafka.Topic = %q", cfg.Kafka.Topic)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
}

func TestParseKeepsExplicitValues(t *testing.T) {
	data := []byte(`
vector:
  dimensions: 1536
pipeline:
  session_window: 3
  call_timeout: 10s
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Vector.Dimensions != 1536 {
		t.Errorf("Vector.Dimensions = %d, want 1536", cfg.Vector.Dimensions)
	}
	if cfg.LLM.Dimensions != 1536 {
		t.Errorf("LLM.Dimensions = %d, want 1536", cfg.LLM.Dimensions)
	}
	if cfg.Pipeline.SessionWindow != 3 {
		t.Errorf("SessionWindow = %d, want 3", cfg.Pipeline.SessionWindow)
	}
	if cfg.Pipeline.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v, want 10s", cfg.Pipeline.CallTimeout)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEO4J_URI", "bolt://db:7687")
	t.Setenv("VECTOR_DSN", "postgres://host/db")

	cfg, err := Parse([]byte("llm:\n  api_key: from-file\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want env value", cfg.LLM.APIKey)
	}
	if cfg.Graph.URI != "bolt://db:7687" {
		t.Errorf("Graph.URI = %q, want env value", cfg.Graph.URI)
	}
	if cfg.Vector.DSN != "postgres://host/db" {
		t.Errorf("Vector.DSN = %q, want env value", cfg.Vector.DSN)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("graph: [not a mapping")); err == nil {
		t.Fatal("expected parse error")
	}
}
