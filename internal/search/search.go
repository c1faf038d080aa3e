package search

import (
	"context"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
)

// MaxHits caps how many ids a text search returns. Sorting and paging of the
// matched ids happen in the product store.
const MaxHits = 1000

// Document is the indexed view of a product.
type Document struct {
	ID          string    `json:"id"`
	TitleRU     string    `json:"title_ru,omitempty"`
	TitleEN     string    `json:"title_en,omitempty"`
	TitleKG     string    `json:"title_kg,omitempty"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	CategoryID  string    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDocument flattens p for indexing.
func NewDocument(p *domain.Product) Document {
	doc := Document{
		ID:          p.ID,
		TitleRU:     p.Title[domain.LangRU],
		TitleEN:     p.Title[domain.LangEN],
		TitleKG:     p.Title[domain.LangKG],
		Description: p.Description.In(domain.LangRU),
		Slug:        p.Slug,
		CreatedAt:   p.CreatedAt,
	}
	if p.CategoryID != nil {
		doc.CategoryID = *p.CategoryID
	}
	return doc
}

// Query is a text search, optionally restricted to one category.
type Query struct {
	Text       string
	CategoryID string
	Limit      int
}

// Engine indexes products and resolves text queries to product ids ordered
// by relevance.
type Engine interface {
	Index(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]string, error)
	Ping(ctx context.Context) error
}
