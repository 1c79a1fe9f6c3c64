package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration
type Config struct {
	Graph    GraphConfig    `yaml:"graph"`
	Vector   VectorConfig   `yaml:"vector"`
	LLM      LLMConfig      `yaml:"llm"`
	API      APIConfig      `yaml:"api"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// GraphConfig represents Neo4j database configuration
type GraphConfig struct {
	URI         string        `yaml:"uri"`
	Database    string        `yaml:"database"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
}

// VectorConfig represents the pgvector index configuration
type VectorConfig struct {
	DSN        string `yaml:"dsn"`
	Table      string `yaml:"table"`
	Dimensions int    `yaml:"dimensions"`
}

// LLMConfig represents the language model backend configuration
type LLMConfig struct {
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Dimensions     int     `yaml:"dimensions"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
}

// APIConfig represents HTTP API configuration
type APIConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// PipelineConfig represents question-pipeline and ingestion configuration
type PipelineConfig struct {
	SessionWindow int           `yaml:"session_window"`
	FallbackTopK  int           `yaml:"fallback_top_k"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
	ArticlesFile  string        `yaml:"articles_file"`
	ChunkSize     int           `yaml:"chunk_size"`
	ChunkOverlap  int           `yaml:"chunk_overlap"`
}

// KafkaConfig represents Kafka producer configuration
type KafkaConfig struct {
	Brokers []string      `yaml:"brokers"`
	Topic   string        `yaml:"topic"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load loads configuration from file
func Load() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		log.Fatalf("Failed to parse config file: %v", err)
	}

	return cfg
}

// Parse decodes configuration bytes, applies defaults and environment
// overrides.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Graph.MaxPoolSize == 0 {
		c.Graph.MaxPoolSize = 50
	}
	if c.Graph.ConnTimeout == 0 {
		c.Graph.ConnTimeout = 30 * time.Second
	}
	if c.Vector.Table == "" {
		c.Vector.Table = "article_chunks"
	}
	if c.Vector.Dimensions == 0 {
		c.Vector.Dimensions = 768
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.LLM.Dimensions == 0 {
		c.LLM.Dimensions = c.Vector.Dimensions
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1500
	}
	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.ReadTimeout == 0 {
		c.API.ReadTimeout = 30 * time.Second
	}
	if c.API.WriteTimeout == 0 {
		c.API.WriteTimeout = 120 * time.Second
	}
	if c.API.IdleTimeout == 0 {
		c.API.IdleTimeout = 120 * time.Second
	}
	if c.API.RequestTimeout == 0 {
		c.API.RequestTimeout = 120 * time.Second
	}
	if c.Pipeline.SessionWindow == 0 {
		c.Pipeline.SessionWindow = 7
	}
	if c.Pipeline.FallbackTopK == 0 {
		c.Pipeline.FallbackTopK = 1
	}
	if c.Pipeline.CallTimeout == 0 {
		c.Pipeline.CallTimeout = 60 * time.Second
	}
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 1000
	}
	if c.Pipeline.ChunkOverlap == 0 {
		c.Pipeline.ChunkOverlap = 100
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "articles.ingested"
	}
	if c.Kafka.Timeout == 0 {
		c.Kafka.Timeout = 10 * time.Second
	}
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Graph.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("VECTOR_DSN"); v != "" {
		c.Vector.DSN = v
	}
}
