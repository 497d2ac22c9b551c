package repository

import (
	"context"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db}
}

// ReplaceReferenceChunks swaps the reference corpus of every type in types
// for chunks in one transaction, so a failed seed leaves the old corpus intact.
func (r *ChunkRepository) ReplaceReferenceChunks(ctx context.Context, types []model.DocumentType, chunks []model.DocumentChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(types) > 0 {
			err := tx.Where("document_id = '' AND document_type IN ?", types).
				Delete(&model.DocumentChunk{}).Error
			if err != nil {
				return err
			}
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.CreateInBatches(chunks, 100).Error
	})
}

// Search returns the topK chunks closest to embedding by cosine distance.
// An empty documentID searches the reference corpus.
func (r *ChunkRepository) Search(ctx context.Context, embedding pgvector.Vector, documentID string, docType model.DocumentType, topK int) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk

	err := r.db.WithContext(ctx).Raw(`
        SELECT id, document_id, document_type, position, content, created_at
        FROM document_chunks
        WHERE document_id = ? AND document_type = ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `, documentID, docType, embedding, topK).Scan(&chunks).Error

	return chunks, err
}
