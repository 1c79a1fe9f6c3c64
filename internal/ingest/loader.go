// Package ingest implements the daily article batch job: load scraped
// article JSON, upsert the knowledge graph, embed and upsert the vector
// index, and announce the run on the event bus. The site-specific scrapers
// themselves are external; this package consumes their output file.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prompt-general/melodex/pkg/models"
)

// scrapedDateLayout is the publication date form the scrapers emit.
const scrapedDateLayout = "02-01-2006"

// LoadArticles reads the scraped-article JSON file.
func LoadArticles(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles file: %w", err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles file: %w", err)
	}

	return articles, nil
}

// FilterByDate keeps articles whose publication date matches the given
// day. The daily pipeline passes time.Now().
func FilterByDate(articles []models.Article, day time.Time) []models.Article {
	want := day.Format(scrapedDateLayout)

	var filtered []models.Article
	for _, a := range articles {
		if strings.TrimSpace(a.PublicationDate) == want {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
