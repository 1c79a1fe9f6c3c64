package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prompt-general/melodex/internal/config"
	"github.com/prompt-general/melodex/pkg/models"
)

// ArticleGraph is the graph-store surface the uploader writes to.
type ArticleGraph interface {
	UpsertArticle(ctx context.Context, article models.Article) error
}

// ChunkIndex is the vector-index surface the uploader writes to.
type ChunkIndex interface {
	Upsert(ctx context.Context, chunks []models.Chunk) error
}

// Embedder computes chunk embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result summarizes one pipeline run.
type Result struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Failed   int    `json:"failed,omitempty"`
	Message  string `json:"message,omitempty"`
	RunAtUTC string `json:"run_at_utc"`
}

// Uploader runs the ingestion batch job.
type Uploader struct {
	graph    ArticleGraph
	index    ChunkIndex
	embedder Embedder
	producer Producer
	config   config.PipelineConfig
}

// NewUploader creates a new ingestion uploader. producer may be nil when no
// event bus is configured.
func NewUploader(graph ArticleGraph, index ChunkIndex, embedder Embedder, producer Producer, cfg config.PipelineConfig) *Uploader {
	return &Uploader{
		graph:    graph,
		index:    index,
		embedder: embedder,
		producer: producer,
		config:   cfg,
	}
}

// Run executes the daily pipeline: load the scraped articles file, keep
// today's articles, upsert each into the graph and the vector index. A
// single failing article is logged and skipped, never fatal for the run.
func (u *Uploader) Run(ctx context.Context) Result {
	runAt := time.Now().UTC()

	articles, err := LoadArticles(u.config.ArticlesFile)
	if err != nil {
		log.Printf("Pipeline failed to load articles: %v", err)
		return Result{Status: "error", Message: err.Error(), RunAtUTC: runAt.Format(time.RFC3339)}
	}
	log.Printf("Loaded %d articles from %s", len(articles), u.config.ArticlesFile)

	todays := FilterByDate(articles, runAt)
	if len(todays) == 0 {
		log.Printf("No articles found for today's date")
		return Result{Status: "no articles", RunAtUTC: runAt.Format(time.RFC3339)}
	}

	ingested, failed := 0, 0
	for _, article := range todays {
		if err := u.ingestOne(ctx, article); err != nil {
			log.Printf("Failed to ingest article %q: %v", article.Title, err)
			failed++
			continue
		}
		ingested++
	}

	if u.producer != nil && ingested > 0 {
		if err := u.publishRun(ctx, ingested, runAt); err != nil {
			log.Printf("Failed to publish ingestion event: %v", err)
		}
	}

	status := "success"
	if ingested == 0 {
		status = "error"
	}
	return Result{Status: status, Count: ingested, Failed: failed, RunAtUTC: runAt.Format(time.RFC3339)}
}

func (u *Uploader) ingestOne(ctx context.Context, article models.Article) error {
	if err := u.graph.UpsertArticle(ctx, article); err != nil {
		return fmt.Errorf("graph upsert: %w", err)
	}

	chunks := ChunkArticle(article, u.config.ChunkSize, u.config.ChunkOverlap)
	for i := range chunks {
		vec, err := u.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
		}
		chunks[i].Embedding = vec
	}

	if err := u.index.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}

	return nil
}

// ChunkArticle splits an article's full text into overlapping chunks
// carrying the article metadata. Articles shorter than one chunk produce a
// single chunk; an empty full text falls back to the description.
func ChunkArticle(article models.Article, size, overlap int) []models.Chunk {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text := article.FullText
	if text == "" {
		text = article.Description
	}

	var chunks []models.Chunk
	runes := []rune(text)
	step := size - overlap
	for start, n := 0, 0; start < len(runes) || n == 0; start, n = start+step, n+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			ID:              fmt.Sprintf("%s#%d", article.Title, n),
			Title:           article.Title,
			Author:          article.Author,
			PublicationDate: article.PublicationDate,
			URL:             article.URL,
			Text:            string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}
