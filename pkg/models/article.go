package models

// Article represents a scraped news article. Title is the natural key:
// re-ingesting an article with a known title merges into the existing node
// rather than creating a duplicate.
type Article struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	FullText        string `json:"full_text"`
	Author          string `json:"author,omitempty"`
	PublicationDate string `json:"publication_date"` // DD-MM-YYYY as scraped
	URL             string `json:"url"`
}

// Chunk is one embeddable slice of an article's full text together with the
// metadata stored alongside its vector.
type Chunk struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublicationDate string    `json:"publication_date"`
	URL             string    `json:"url"`
	Text            string    `json:"text"`
	Embedding       []float32 `json:"-"`
}

// VectorMatch is a nearest-neighbor hit returned by the vector index.
type VectorMatch struct {
	Score           float64 `json:"score"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	PublicationDate string  `json:"publication_date"`
	URL             string  `json:"url"`
	Text            string  `json:"text"`
}
