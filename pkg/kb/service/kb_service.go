package service

import (
	"context"

	"mkulima/entities"
)

// Hit is one ranked chunk with its document metadata.
type Hit struct {
	ChunkID   uint    `json:"chunk_id"`
	DocID     uint    `json:"doc_id"`
	Ord       int     `json:"ord"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	DocTitle  string  `json:"doc_title,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

type KBService interface {
	Ingest(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error)
	// IngestURL fetches an allow-listed page and ingests its main text.
	IngestURL(ctx context.Context, rawURL, title, tags string) (*entities.KBDocument, int, error)
	// Search ranks chunks by embedding similarity when available, otherwise
	// by keyword overlap. Only hits with a positive score are returned.
	Search(ctx context.Context, query string, k int) ([]Hit, error)
	Docs(ctx context.Context) ([]entities.KBDocument, error)
}
