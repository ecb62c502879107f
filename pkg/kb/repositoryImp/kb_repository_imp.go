package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/kb/repository"
)

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.KBRepository { return &repo{db} }

func (r *repo) Ingest(ctx context.Context, d *entities.KBDocument, chunks []entities.KBChunk) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		for i := range chunks {
			chunks[i].DocID = d.DocID
		}
		return tx.Create(&chunks).Error
	})
	return apperr.Persist("ingest kb document", err)
}

func (r *repo) ListDocs(ctx context.Context) ([]entities.KBDocument, error) {
	var ds []entities.KBDocument
	return ds, apperr.Persist("list kb documents", r.db.WithContext(ctx).Order("doc_id DESC").Find(&ds).Error)
}

func (r *repo) AllChunks(ctx context.Context) ([]entities.KBChunk, error) {
	var cs []entities.KBChunk
	return cs, apperr.Persist("list kb chunks", r.db.WithContext(ctx).Order("doc_id, ord").Find(&cs).Error)
}

func (r *repo) DocsByIDs(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error) {
	if len(ids) == 0 {
		return map[uint]entities.KBDocument{}, nil
	}
	var ds []entities.KBDocument
	if err := r.db.WithContext(ctx).Where("doc_id IN ?", ids).Find(&ds).Error; err != nil {
		return nil, apperr.Persist("find kb documents", err)
	}
	m := make(map[uint]entities.KBDocument, len(ds))
	for i := range ds {
		m[ds[i].DocID] = ds[i]
	}
	return m, nil
}
