package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/redis/go-redis/v9"
)

// DocumentService orchestrates document CRUD over the row store, the
// normalizer and the audit log.
type DocumentService struct {
	docRepo     *repository.DocumentRepository
	historyRepo *repository.DocumentHistoryRepository
	userRepo    *repository.UserRepository
	rdb         *redis.Client
}

// NewDocumentService creates the document service
func NewDocumentService(
	docRepo *repository.DocumentRepository,
	historyRepo *repository.DocumentHistoryRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
) *DocumentService {
	return &DocumentService{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		rdb:         rdb,
	}
}

// CreateDocumentRequest create payload
type CreateDocumentRequest struct {
	Type          string                 `json:"type" binding:"required"`
	Title         string                 `json:"title" binding:"required"`
	Department    string                 `json:"department" binding:"required"`
	DepartmentID  string                 `json:"department_id"`
	Description   string                 `json:"description"`
	IsDraft       bool                   `json:"is_draft"`
	IsAiGenerated bool                   `json:"is_ai_generated"`
	TemplateID    string                 `json:"template_id"`
	Tags          []string               `json:"tags"`
	Period        string                 `json:"period"`
	Data          map[string]interface{} `json:"data"`
}

// DocumentUpdates partial update sections. Data merges into the content bag;
// the named sections replace (metadata merges key-wise).
type DocumentUpdates struct {
	Data        map[string]interface{} `json:"data"`
	Title       *string                `json:"title"`
	Status      *string                `json:"status"`
	Department  *string                `json:"department"`
	Metadata    map[string]interface{} `json:"metadata"`
	Review      map[string]interface{} `json:"review"`
	Approval    map[string]interface{} `json:"approval"`
	Attachments []interface{}          `json:"attachments"`
	Permissions map[string]interface{} `json:"permissions"`
	Signature   *string                `json:"signature"`
}

// IsEmpty reports whether the update carries no changes at all
func (u *DocumentUpdates) IsEmpty() bool {
	return len(u.Data) == 0 &&
		u.Title == nil &&
		u.Status == nil &&
		u.Department == nil &&
		u.Metadata == nil &&
		u.Review == nil &&
		u.Approval == nil &&
		u.Attachments == nil &&
		u.Permissions == nil &&
		u.Signature == nil
}

// UpdateDocumentRequest update payload. ExpectedVersion is the last version
// the caller saw; the update is rejected with a conflict when it no longer
// matches the stored row.
type UpdateDocumentRequest struct {
	Updates         DocumentUpdates `json:"updates"`
	Reason          string          `json:"reason"`
	ExpectedVersion int             `json:"expected_version"`
}

// DocumentListResult paginated normalized documents
type DocumentListResult struct {
	Documents   []entity.BaseDocument `json:"documents"`
	TotalCount  int64                 `json:"total_count"`
	TotalPages  int                   `json:"total_pages"`
	CurrentPage int                   `json:"current_page"`
	Limit       int                   `json:"limit"`
}

// Create validates and persists a new document, returning the normalized view
func (s *DocumentService) Create(ctx context.Context, userID string, req *CreateDocumentRequest) (*entity.BaseDocument, error) {
	var verr ValidationError
	if req.Type == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "type", Message: "type is required"})
	} else if !entity.IsValidDocumentType(req.Type) {
		verr.Fields = append(verr.Fields, FieldError{Field: "type", Message: "unknown document type", Value: req.Type})
	}
	if req.Title == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "title", Message: "title is required"})
	}
	if req.Department == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "department", Message: "department is required"})
	}
	if len(verr.Fields) > 0 {
		return nil, &verr
	}

	author := DefaultAuthor
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		author = user.Name
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	meta := map[string]interface{}{
		"version":       1,
		"isAiGenerated": req.IsAiGenerated,
		"templateId":    req.TemplateID,
		"tags":          tags,
		"category":      entity.CategoryOf(req.Type),
	}
	if req.Period != "" {
		meta["period"] = req.Period
	}
	content := entity.JSONB{
		"type":         req.Type,
		"author":       author,
		"authorId":     userID,
		"department":   req.Department,
		"departmentId": req.DepartmentID,
		"metadata":     meta,
	}
	if req.Description != "" {
		content["description"] = req.Description
	}
	for k, v := range req.Data {
		content[k] = v
	}

	status := entity.DocumentStatusPending
	if req.IsDraft {
		status = entity.DocumentStatusDraft
	}

	now := time.Now()
	doc := &entity.Document{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Status:     status,
		UserID:     userID,
		TemplateID: req.TemplateID,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.invalidateComplianceCache(ctx)

	return Normalize(doc), nil
}

// Get returns a single normalized document
func (s *DocumentService) Get(ctx context.Context, id string) (*entity.BaseDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "document", ID: id}
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return Normalize(doc), nil
}

// List runs a filtered query and normalizes the page
func (s *DocumentService) List(ctx context.Context, filter repository.DocumentFilter) (*DocumentListResult, error) {
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	docs, total, err := s.docRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		totalPages++
	}

	return &DocumentListResult{
		Documents:   NormalizeAll(docs),
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
		Limit:       filter.Limit,
	}, nil
}

// Update merges a partial update into the content bag, bumps the version when
// metadata changed, and appends a history entry when a reason was given. The
// write is a compare-and-swap on the stored version.
func (s *DocumentService) Update(ctx context.Context, userID, id string, req *UpdateDocumentRequest) (*entity.BaseDocument, error) {
	if req.Updates.IsEmpty() {
		return nil, NewValidationError("updates", "updates must not be empty")
	}

	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "document", ID: id}
		}
		return nil, fmt.Errorf("find document: %w", err)
	}

	currentVersion := ContentVersion(doc.Content)
	if req.ExpectedVersion != 0 && req.ExpectedVersion != currentVersion {
		return nil, &ConflictError{DocumentID: id, Expected: req.ExpectedVersion, Actual: currentVersion}
	}

	patch := map[string]interface{}{}
	for k, v := range req.Updates.Data {
		patch[k] = v
	}
	if req.Updates.Department != nil {
		patch["department"] = *req.Updates.Department
	}
	if req.Updates.Metadata != nil {
		patch["metadata"] = req.Updates.Metadata
	}
	if req.Updates.Review != nil {
		patch["review"] = req.Updates.Review
	}
	if req.Updates.Approval != nil {
		patch["approval"] = req.Updates.Approval
	}
	if req.Updates.Attachments != nil {
		patch["attachments"] = req.Updates.Attachments
	}
	if req.Updates.Permissions != nil {
		patch["permissions"] = req.Updates.Permissions
	}
	if req.Updates.Signature != nil {
		patch["signature"] = *req.Updates.Signature
		patch["signedAt"] = time.Now().Format(time.RFC3339)
	}

	newContent := MergeContent(doc.Content, patch)

	newVersion := currentVersion
	if req.Updates.Metadata != nil {
		newVersion = currentVersion + 1
	}
	SetContentVersion(newContent, newVersion)

	title := doc.Title
	if req.Updates.Title != nil {
		title = *req.Updates.Title
	}
	status := doc.Status
	if req.Updates.Status != nil {
		status = *req.Updates.Status
	}

	err = s.docRepo.UpdateContent(ctx, id, currentVersion, title, status, newContent)
	if err != nil {
		if err == repository.ErrVersionConflict {
			// report the version the winning writer left behind
			actual := currentVersion
			if fresh, ferr := s.docRepo.FindByID(ctx, id); ferr == nil {
				actual = ContentVersion(fresh.Content)
			}
			return nil, &ConflictError{DocumentID: id, Expected: currentVersion, Actual: actual}
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	if req.Reason != "" {
		history := &entity.DocumentHistory{
			ID:         uuid.New().String(),
			DocumentID: id,
			Version:    newVersion,
			Changes:    entity.JSONB(patch),
			Reason:     req.Reason,
			ChangedBy:  userID,
			ChangedAt:  time.Now(),
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			return nil, fmt.Errorf("write history: %w", err)
		}
	}

	s.invalidateComplianceCache(ctx)

	updated, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload document: %w", err)
	}
	return Normalize(updated), nil
}

// Delete soft-deletes: flips status to archived and stamps archivedAt/By in
// the content bag. Archiving an archived document is a validation error.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return &ResourceError{Resource: "document", ID: id}
		}
		return fmt.Errorf("find document: %w", err)
	}

	if doc.Status == entity.DocumentStatusArchived {
		return NewValidationError("status", "document is already archived")
	}

	content := MergeContent(doc.Content, map[string]interface{}{
		"archivedAt": time.Now().Format(time.RFC3339),
		"archivedBy": userID,
	})

	err = s.docRepo.UpdateContent(ctx, id, ContentVersion(doc.Content), doc.Title, entity.DocumentStatusArchived, content)
	if err != nil {
		if err == repository.ErrVersionConflict {
			return &ConflictError{DocumentID: id, Expected: ContentVersion(doc.Content), Actual: 0}
		}
		return fmt.Errorf("archive document: %w", err)
	}

	s.invalidateComplianceCache(ctx)
	return nil
}

// History returns the audit trail for a document
func (s *DocumentService) History(ctx context.Context, id string) ([]entity.DocumentHistory, error) {
	if _, err := s.docRepo.FindByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "document", ID: id}
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return s.historyRepo.ListByDocument(ctx, id)
}

func (s *DocumentService) invalidateComplianceCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, complianceCacheKey)
}
