package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"gorm.io/gorm"
)

// DocumentFilter list query parameters. Zero values mean "not filtered".
type DocumentFilter struct {
	Query         string
	Types         []string
	Statuses      []string
	Departments   []string
	Author        string
	Category      string
	Tags          []string
	IsAiGenerated *bool
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
}

// sortColumns maps API sort keys onto row columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
}

// DocumentRepository document row store
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates the document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID finds a document by id
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	var doc entity.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Create inserts a document row
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// UpdateContent replaces the content bag (and the denormalized title/status
// columns) with a compare-and-swap on content.metadata.version. Returns
// ErrVersionConflict when a concurrent writer already bumped the version.
func (r *DocumentRepository) UpdateContent(ctx context.Context, id string, expectedVersion int, title, status string, content entity.JSONB) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Document{}).
		Where("id = ? AND COALESCE((content->'metadata'->>'version')::int, 1) = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"title":      title,
			"status":     status,
			"content":    content,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// List runs a filtered, sorted, paginated query and returns rows plus total
func (r *DocumentRepository) List(ctx context.Context, f DocumentFilter) ([]entity.Document, int64, error) {
	var docs []entity.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Document{})

	if len(f.Types) > 0 {
		query = query.Where("content->>'type' IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if len(f.Departments) > 0 {
		query = query.Where("content->>'department' IN ?", f.Departments)
	}
	if f.Author != "" {
		query = query.Where("content->>'author' = ?", f.Author)
	}
	if f.Category != "" {
		query = query.Where("content->'metadata'->>'category' = ?", f.Category)
	}
	if len(f.Tags) > 0 {
		// subset match: every requested tag must be present
		tagsJSON, err := json.Marshal(f.Tags)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("content->'metadata'->'tags' @> ?::jsonb", string(tagsJSON))
	}
	if f.IsAiGenerated != nil {
		query = query.Where("COALESCE((content->'metadata'->>'isAiGenerated')::boolean, false) = ?", *f.IsAiGenerated)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("title ILIKE ? OR content->>'description' ILIKE ?", like, like)
	}
	if f.StartDate != nil {
		query = query.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("created_at <= ?", *f.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	err := query.
		Order(column + " " + order).
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// LatestByTypeWithStatus returns the most recently updated non-archived
// document of the given type whose status is in the set, or nil.
func (r *DocumentRepository) LatestByTypeWithStatus(ctx context.Context, docType string, statuses []string) (*entity.Document, error) {
	var doc entity.Document
	query := r.db.WithContext(ctx).
		Where("content->>'type' = ?", docType).
		Where("status <> ?", entity.DocumentStatusArchived)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Order("updated_at DESC").First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}
