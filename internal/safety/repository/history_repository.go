package repository

import (
	"context"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"gorm.io/gorm"
)

// DocumentHistoryRepository append-only audit log store
type DocumentHistoryRepository struct {
	db *gorm.DB
}

// NewDocumentHistoryRepository creates the history repository
func NewDocumentHistoryRepository(db *gorm.DB) *DocumentHistoryRepository {
	return &DocumentHistoryRepository{db: db}
}

// Create appends a history entry
func (r *DocumentHistoryRepository) Create(ctx context.Context, h *entity.DocumentHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// ListByDocument returns the audit trail for a document, newest first
func (r *DocumentHistoryRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.DocumentHistory, error) {
	var entries []entity.DocumentHistory
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
