package repository

import (
	"context"

	"mkulima/entities"
)

type KBRepository interface {
	// Ingest stores a document and its chunks atomically; chunk DocIDs are set.
	Ingest(ctx context.Context, d *entities.KBDocument, chunks []entities.KBChunk) error
	ListDocs(ctx context.Context) ([]entities.KBDocument, error)
	AllChunks(ctx context.Context) ([]entities.KBChunk, error)
	DocsByIDs(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error)
}
