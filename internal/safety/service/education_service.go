package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EducationService education categories, target rules, requirements,
// records and daily logs.
type EducationService struct {
	categoryRepo    *repository.EducationCategoryRepository
	ruleRepo        *repository.TargetRuleRepository
	requirementRepo *repository.RequirementRepository
	recordRepo      *repository.EducationRecordRepository
	dailyLogRepo    *repository.DailyLogRepository
	userRepo        *repository.UserRepository
	minioClient     *minio.Client
	bucketName      string
	logger          *zap.Logger
}

// NewEducationService creates the education service
func NewEducationService(
	categoryRepo *repository.EducationCategoryRepository,
	ruleRepo *repository.TargetRuleRepository,
	requirementRepo *repository.RequirementRepository,
	recordRepo *repository.EducationRecordRepository,
	dailyLogRepo *repository.DailyLogRepository,
	userRepo *repository.UserRepository,
	minioClient *minio.Client,
	bucketName string,
	logger *zap.Logger,
) *EducationService {
	return &EducationService{
		categoryRepo:    categoryRepo,
		ruleRepo:        ruleRepo,
		requirementRepo: requirementRepo,
		recordRepo:      recordRepo,
		dailyLogRepo:    dailyLogRepo,
		userRepo:        userRepo,
		minioClient:     minioClient,
		bucketName:      bucketName,
		logger:          logger,
	}
}

// ============================================================
// Categories
// ============================================================

// CreateCategoryRequest create category payload
type CreateCategoryRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	RequiredHours float64 `json:"required_hours"`
	IsRequired    *bool   `json:"is_required"`
}

// CreateCategory creates an education category
func (s *EducationService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*entity.EducationCategory, error) {
	if req.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	cat := &entity.EducationCategory{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		RequiredHours: req.RequiredHours,
		IsRequired:    true,
	}
	if req.IsRequired != nil {
		cat.IsRequired = *req.IsRequired
	}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create education category: %w", err)
	}
	return cat, nil
}

// GetCategory fetches one category
func (s *EducationService) GetCategory(ctx context.Context, id string) (*entity.EducationCategory, error) {
	cat, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education category", ID: id}
		}
		return nil, err
	}
	return cat, nil
}

// ListCategories returns all categories
func (s *EducationService) ListCategories(ctx context.Context) ([]entity.EducationCategory, error) {
	return s.categoryRepo.List(ctx)
}

// ============================================================
// Target rules
// ============================================================

// CreateTargetRuleRequest create target rule payload
type CreateTargetRuleRequest struct {
	CategoryID string        `json:"category_id" binding:"required"`
	RuleType   string        `json:"rule_type" binding:"required"`
	RuleValue  []interface{} `json:"rule_value"`
	Priority   int           `json:"priority"`
	IsActive   *bool         `json:"is_active"`
}

// UpdateTargetRuleRequest update target rule payload
type UpdateTargetRuleRequest struct {
	RuleType  *string       `json:"rule_type"`
	RuleValue []interface{} `json:"rule_value"`
	Priority  *int          `json:"priority"`
	IsActive  *bool         `json:"is_active"`
}

func validRuleType(t string) bool {
	switch t {
	case entity.RuleTypeDepartment, entity.RuleTypePosition, entity.RuleTypeRole, entity.RuleTypeCustom:
		return true
	}
	return false
}

// CreateTargetRule attaches a rule to a category
func (s *EducationService) CreateTargetRule(ctx context.Context, req *CreateTargetRuleRequest) (*entity.TargetRule, error) {
	var fields []FieldError
	if req.CategoryID == "" {
		fields = append(fields, FieldError{Field: "category_id", Message: "category_id is required"})
	}
	if !validRuleType(req.RuleType) {
		fields = append(fields, FieldError{Field: "rule_type", Message: fmt.Sprintf("unknown rule type: %s", req.RuleType)})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education category", ID: req.CategoryID}
		}
		return nil, err
	}

	rule := &entity.TargetRule{
		ID:         uuid.New().String(),
		CategoryID: req.CategoryID,
		RuleType:   req.RuleType,
		RuleValue:  entity.JSONBArray(req.RuleValue),
		Priority:   req.Priority,
		IsActive:   true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if rule.RuleValue == nil {
		rule.RuleValue = entity.JSONBArray{}
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create target rule: %w", err)
	}
	return rule, nil
}

// UpdateTargetRule patches a rule
func (s *EducationService) UpdateTargetRule(ctx context.Context, id string, req *UpdateTargetRuleRequest) (*entity.TargetRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "target rule", ID: id}
		}
		return nil, err
	}
	if req.RuleType != nil {
		if !validRuleType(*req.RuleType) {
			return nil, NewValidationError("rule_type", fmt.Sprintf("unknown rule type: %s", *req.RuleType))
		}
		rule.RuleType = *req.RuleType
	}
	if req.RuleValue != nil {
		rule.RuleValue = entity.JSONBArray(req.RuleValue)
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("update target rule: %w", err)
	}
	return rule, nil
}

// DeleteTargetRule removes a rule
func (s *EducationService) DeleteTargetRule(ctx context.Context, id string) error {
	if _, err := s.ruleRepo.FindByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return &ResourceError{Resource: "target rule", ID: id}
		}
		return err
	}
	return s.ruleRepo.Delete(ctx, id)
}

// ListTargetRules returns a category's rules
func (s *EducationService) ListTargetRules(ctx context.Context, categoryID string) ([]entity.TargetRule, error) {
	return s.ruleRepo.ListByCategory(ctx, categoryID)
}

// ============================================================
// Requirements
// ============================================================

// CreateRequirementItem one requirement in a bulk create call
type CreateRequirementItem struct {
	UserID       string `json:"user_id" binding:"required"`
	CategoryID   string `json:"category_id" binding:"required"`
	RequiredDate string `json:"required_date"`
	DueDate      string `json:"due_date"`
}

// BulkCreateResult outcome of a bulk requirement create
type BulkCreateResult struct {
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors,omitempty"`
}

// CreateRequirements creates requirements in bulk. Duplicates on the
// (user, category, required date) triple are skipped; per-item failures
// are collected and the call fails only when nothing succeeded.
func (s *EducationService) CreateRequirements(ctx context.Context, items []CreateRequirementItem) (*BulkCreateResult, error) {
	if len(items) == 0 {
		return nil, NewValidationError("requirements", "at least one requirement is required")
	}

	today := truncateToDate(time.Now())
	result := &BulkCreateResult{}

	for i, item := range items {
		if item.UserID == "" || item.CategoryID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: user_id and category_id are required", i))
			continue
		}

		requiredDate := today
		if item.RequiredDate != "" {
			parsed, err := time.Parse("2006-01-02", item.RequiredDate)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: invalid required_date: %v", i, err))
				continue
			}
			requiredDate = parsed
		}
		dueDate := requiredDate.AddDate(0, dueOffsetMonths, 0)
		if item.DueDate != "" {
			parsed, err := time.Parse("2006-01-02", item.DueDate)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: invalid due_date: %v", i, err))
				continue
			}
			dueDate = parsed
		}

		exists, err := s.requirementRepo.ExistsFor(ctx, item.UserID, item.CategoryID, requiredDate)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if exists {
			result.SkippedCount++
			continue
		}

		req := &entity.UserEducationRequirement{
			ID:           uuid.New().String(),
			UserID:       item.UserID,
			CategoryID:   item.CategoryID,
			Status:       entity.RequirementStatusPending,
			RequiredDate: requiredDate,
			DueDate:      dueDate,
		}
		if err := s.requirementRepo.Create(ctx, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.CreatedCount++
	}

	if result.CreatedCount == 0 && result.SkippedCount == 0 {
		return result, fmt.Errorf("create requirements: all %d items failed", len(result.Errors))
	}
	return result, nil
}

// ListRequirements returns requirements filtered by user/category/status
func (s *EducationService) ListRequirements(ctx context.Context, userID, categoryID, status string) ([]entity.UserEducationRequirement, error) {
	return s.requirementRepo.List(ctx, userID, categoryID, status)
}

// requirementTransitions the allowed forward moves; completed is terminal.
var requirementTransitions = map[string][]string{
	entity.RequirementStatusPending:    {entity.RequirementStatusInProgress, entity.RequirementStatusCompleted},
	entity.RequirementStatusInProgress: {entity.RequirementStatusCompleted},
	entity.RequirementStatusOverdue:    {entity.RequirementStatusInProgress, entity.RequirementStatusCompleted},
}

// UpdateRequirementStatus moves a requirement along its lifecycle.
// Completing stamps completed_at.
func (s *EducationService) UpdateRequirementStatus(ctx context.Context, id, status string) (*entity.UserEducationRequirement, error) {
	req, err := s.requirementRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education requirement", ID: id}
		}
		return nil, err
	}

	allowed := false
	for _, next := range requirementTransitions[req.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, NewValidationError("status", fmt.Sprintf("cannot move requirement from %s to %s", req.Status, status))
	}

	req.Status = status
	if status == entity.RequirementStatusCompleted {
		now := time.Now()
		req.CompletedAt = &now
	}
	if err := s.requirementRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update requirement status: %w", err)
	}
	return req, nil
}

// ============================================================
// Records
// ============================================================

// CreateRecordRequest create record payload
type CreateRecordRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	CategoryID    string  `json:"category_id"`
	RequirementID string  `json:"requirement_id"`
	Title         string  `json:"title" binding:"required"`
	Hours         float64 `json:"hours"`
	EducationDate string  `json:"education_date"`
}

// CreateRecord files evidence of attended education
func (s *EducationService) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*entity.EducationRecord, error) {
	var fields []FieldError
	if req.UserID == "" {
		fields = append(fields, FieldError{Field: "user_id", Message: "user_id is required"})
	}
	if req.Title == "" {
		fields = append(fields, FieldError{Field: "title", Message: "title is required"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	educationDate := truncateToDate(time.Now())
	if req.EducationDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EducationDate)
		if err != nil {
			return nil, NewValidationError("education_date", "expected YYYY-MM-DD")
		}
		educationDate = parsed
	}

	rec := &entity.EducationRecord{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		CategoryID:    req.CategoryID,
		RequirementID: req.RequirementID,
		Title:         req.Title,
		Hours:         req.Hours,
		EducationDate: educationDate,
		Status:        entity.RecordStatusPending,
	}
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create education record: %w", err)
	}
	return rec, nil
}

// VerifyRecord marks a record verified or rejected. Verifying a record that
// is linked to a requirement completes the requirement.
func (s *EducationService) VerifyRecord(ctx context.Context, id, verifierID string, approve bool) (*entity.EducationRecord, error) {
	rec, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education record", ID: id}
		}
		return nil, err
	}
	if rec.Status != entity.RecordStatusPending {
		return nil, NewValidationError("status", fmt.Sprintf("record already %s", rec.Status))
	}

	now := time.Now()
	rec.VerifiedBy = verifierID
	rec.VerifiedAt = &now
	if approve {
		rec.Status = entity.RecordStatusVerified
	} else {
		rec.Status = entity.RecordStatusRejected
	}
	if err := s.recordRepo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("verify education record: %w", err)
	}

	if approve && rec.RequirementID != "" {
		if _, err := s.UpdateRequirementStatus(ctx, rec.RequirementID, entity.RequirementStatusCompleted); err != nil {
			// The record is verified either way; a stale requirement link
			// should not fail the verification.
			s.logger.Warn("verified record but requirement update failed",
				zap.String("record_id", rec.ID),
				zap.String("requirement_id", rec.RequirementID),
				zap.Error(err))
		}
	}
	return rec, nil
}

// ListRecords returns records filtered by user/requirement/status
func (s *EducationService) ListRecords(ctx context.Context, userID, requirementID, status string) ([]entity.EducationRecord, error) {
	return s.recordRepo.List(ctx, userID, requirementID, status)
}

// UploadProof stores a proof file for a record in object storage and saves
// the object path on the record.
func (s *EducationService) UploadProof(ctx context.Context, recordID, fileName, contentType string, reader io.Reader, fileSize int64) (*entity.EducationRecord, error) {
	rec, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education record", ID: recordID}
		}
		return nil, err
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	objectName := fmt.Sprintf("education-proofs/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))
	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload proof file: %w", err)
	}

	rec.ProofFilePath = objectName
	if err := s.recordRepo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("save proof path: %w", err)
	}
	return rec, nil
}

// ============================================================
// Daily logs
// ============================================================

// CreateDailyLogItem one entry in a bulk daily log create
type CreateDailyLogItem struct {
	UserID          string `json:"user_id" binding:"required"`
	LogDate         string `json:"log_date"`
	Topic           string `json:"topic" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

// CreateDailyLogs inserts daily log entries in bulk. A (user, date, topic)
// duplicate is skipped, per-item failures are collected, and the call fails
// only when nothing succeeded.
func (s *EducationService) CreateDailyLogs(ctx context.Context, items []CreateDailyLogItem) (*BulkCreateResult, error) {
	if len(items) == 0 {
		return nil, NewValidationError("logs", "at least one log entry is required")
	}

	result := &BulkCreateResult{}
	for i, item := range items {
		if item.UserID == "" || item.Topic == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: user_id and topic are required", i))
			continue
		}
		logDate := truncateToDate(time.Now())
		if item.LogDate != "" {
			parsed, err := time.Parse("2006-01-02", item.LogDate)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: invalid log_date: %v", i, err))
				continue
			}
			logDate = parsed
		}

		exists, err := s.dailyLogRepo.ExistsFor(ctx, item.UserID, logDate, item.Topic)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if exists {
			result.SkippedCount++
			continue
		}

		log := &entity.EducationDailyLog{
			ID:              uuid.New().String(),
			UserID:          item.UserID,
			LogDate:         logDate,
			Topic:           item.Topic,
			DurationMinutes: item.DurationMinutes,
			Notes:           item.Notes,
		}
		if err := s.dailyLogRepo.Create(ctx, log); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.CreatedCount++
	}

	if result.CreatedCount == 0 && result.SkippedCount == 0 {
		return result, fmt.Errorf("create daily logs: all %d items failed", len(result.Errors))
	}
	return result, nil
}

// ListDailyLogs returns log entries filtered by user and date range
func (s *EducationService) ListDailyLogs(ctx context.Context, userID string, from, to *time.Time) ([]entity.EducationDailyLog, error) {
	return s.dailyLogRepo.List(ctx, userID, from, to)
}

// DeleteDailyLog removes one log entry
func (s *EducationService) DeleteDailyLog(ctx context.Context, id string) error {
	return s.dailyLogRepo.Delete(ctx, id)
}

// EducationStatistics aggregate education figures. UpcomingDue lists the
// open requirements due inside the deadline window, soonest first.
type EducationStatistics struct {
	RequirementCounts map[string]int64                  `json:"requirement_counts"`
	UpcomingDue       []entity.UserEducationRequirement `json:"upcoming_due"`
	DailyLogs         *repository.DailyLogStats         `json:"daily_logs"`
	GeneratedAt       time.Time                         `json:"generated_at"`
}

// Statistics aggregates requirement counts by status plus daily log totals
func (s *EducationService) Statistics(ctx context.Context, from, to *time.Time) (*EducationStatistics, error) {
	counts, err := s.requirementRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count requirements: %w", err)
	}
	upcoming, err := s.requirementRepo.DueWithin(ctx, truncateToDate(time.Now()), deadlineWindowDays)
	if err != nil {
		return nil, fmt.Errorf("upcoming requirements: %w", err)
	}
	logStats, err := s.dailyLogRepo.Statistics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily log statistics: %w", err)
	}
	return &EducationStatistics{
		RequirementCounts: counts,
		UpcomingDue:       upcoming,
		DailyLogs:         logStats,
		GeneratedAt:       time.Now(),
	}, nil
}

var statisticsExportHeaders = []string{"Metric", "Value"}

// ExportStatistics renders the statistics snapshot as an xlsx workbook.
func (s *EducationService) ExportStatistics(ctx context.Context, from, to *time.Time) (*excelize.File, string, error) {
	stats, err := s.Statistics(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Education"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range statisticsExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	row := 2
	for _, status := range []string{
		entity.RequirementStatusPending,
		entity.RequirementStatusInProgress,
		entity.RequirementStatusCompleted,
		entity.RequirementStatusOverdue,
	} {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Requirements (%s)", status))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.RequirementCounts[status])
		row++
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Daily logs")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.DailyLogs.TotalLogs)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Daily log minutes")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.DailyLogs.TotalMinutes)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Distinct participants")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.DailyLogs.DistinctUsers)

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 14)

	filename := fmt.Sprintf("education_statistics_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
