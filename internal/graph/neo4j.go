// Package graph implements the news knowledge graph on Neo4j. Articles,
// authors and source URLs are nodes; (Author)-[:WROTE]->(Article) and
// (Article)-[:HAS_URL]->(URL) are the only relationship types.
package graph

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/prompt-general/melodex/internal/config"
	"github.com/prompt-general/melodex/pkg/models"
)

// Neo4jStore implements graph storage and querying using Neo4j
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	config config.GraphConfig
}

// NewNeo4jStore creates a new Neo4j graph store
func NewNeo4jStore(cfg config.GraphConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
			c.MaxConnectionLifetime = time.Hour
			c.ConnectionAcquisitionTimeout = cfg.ConnTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	store := &Neo4jStore{
		driver: driver,
		config: cfg,
	}

	if err := store.initializeSchema(ctx); err != nil {
		log.Printf("Warning: failed to initialize schema: %v", err)
	}

	return store, nil
}

// initializeSchema creates the graph constraints and indexes
func (s *Neo4jStore) initializeSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.config.Database})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT article_title_unique IF NOT EXISTS FOR (a:Article) REQUIRE a.title IS UNIQUE",
		"CREATE CONSTRAINT author_name_unique IF NOT EXISTS FOR (au:Author) REQUIRE au.name IS UNIQUE",
		"CREATE CONSTRAINT url_unique IF NOT EXISTS FOR (u:URL) REQUIRE u.url IS UNIQUE",
		"CREATE INDEX article_date_idx IF NOT EXISTS FOR (a:Article) ON (a.publication_date)",
	}

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to run schema statement: %w", err)
		}
	}

	return nil
}

// Schema returns the fixed schema description consumed verbatim by the
// query-synthesis prompts.
func (s *Neo4jStore) Schema() string {
	return `Node properties:
Article {title: STRING, description: STRING, full_text: STRING, publication_date: DATE}
Author {name: STRING}
URL {url: STRING}
Relationships:
(:Author)-[:WROTE]->(:Article)
(:Article)-[:HAS_URL]->(:URL)`
}

// Query runs a read Cypher statement and returns the result rows as ordered
// field-name-to-value maps.
func (s *Neo4jStore) Query(ctx context.Context, cypher string) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: s.config.Database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return rows, nil
}

// UpsertArticle merges an article into the graph keyed by title, together
// with its author and source URL relationships. Re-ingesting a known title
// updates the existing node instead of duplicating it.
func (s *Neo4jStore) UpsertArticle(ctx context.Context, article models.Article) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.config.Database})
	defer session.Close(ctx)

	pubDate, err := parsePublicationDate(article.PublicationDate)
	if err != nil {
		return fmt.Errorf("invalid publication date %q: %w", article.PublicationDate, err)
	}

	query := `
		MERGE (a:Article {title: $title})
		SET a.description = $description,
		    a.full_text = $fullText,
		    a.publication_date = date($pubDate),
		    a.updated_at = datetime()
		MERGE (u:URL {url: $url})
		MERGE (a)-[:HAS_URL]->(u)
	`
	params := map[string]any{
		"title":       article.Title,
		"description": article.Description,
		"fullText":    article.FullText,
		"pubDate":     pubDate,
		"url":         article.URL,
	}

	if article.Author != "" {
		query += `
		MERGE (au:Author {name: $author})
		MERGE (au)-[:WROTE]->(a)
		`
		params["author"] = article.Author
	}

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("failed to upsert article %q: %w", article.Title, err)
	}

	return nil
}

// LatestArticles returns the most recent articles with their source URLs
// and authors.
func (s *Neo4jStore) LatestArticles(ctx context.Context, limit int) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: s.config.Database})
	defer session.Close(ctx)

	query := `
		MATCH (a:Article)-[:HAS_URL]->(u:URL)
		OPTIONAL MATCH (au:Author)-[:WROTE]->(a)
		RETURN a.title AS title, a.description AS description, au.name AS author,
		       toString(a.publication_date) AS publication_date, u.url AS source_url
		ORDER BY a.publication_date DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest articles: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch latest articles: %w", err)
	}

	return rows, nil
}

// Ping checks database connectivity
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close closes the database connection
func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

// parsePublicationDate converts the scraped DD-MM-YYYY form into the
// ISO-8601 form Neo4j's date() expects.
func parsePublicationDate(raw string) (string, error) {
	t, err := time.Parse("02-01-2006", raw)
	if err != nil {
		// Some feeds already emit ISO dates.
		if t2, err2 := time.Parse("2006-01-02", raw); err2 == nil {
			return t2.Format("2006-01-02"), nil
		}
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
