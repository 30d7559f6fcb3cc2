package repository

import (
	"context"
	"errors"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"gorm.io/gorm"
)

// ============================================================
// Education categories
// ============================================================

// EducationCategoryRepository education category store
type EducationCategoryRepository struct {
	db *gorm.DB
}

// NewEducationCategoryRepository creates the category repository
func NewEducationCategoryRepository(db *gorm.DB) *EducationCategoryRepository {
	return &EducationCategoryRepository{db: db}
}

// FindByID finds a category by id
func (r *EducationCategoryRepository) FindByID(ctx context.Context, id string) (*entity.EducationCategory, error) {
	var cat entity.EducationCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// Create inserts a category
func (r *EducationCategoryRepository) Create(ctx context.Context, cat *entity.EducationCategory) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

// List returns all categories
func (r *EducationCategoryRepository) List(ctx context.Context) ([]entity.EducationCategory, error) {
	var cats []entity.EducationCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// ============================================================
// Target rules
// ============================================================

// TargetRuleRepository target rule store
type TargetRuleRepository struct {
	db *gorm.DB
}

// NewTargetRuleRepository creates the target rule repository
func NewTargetRuleRepository(db *gorm.DB) *TargetRuleRepository {
	return &TargetRuleRepository{db: db}
}

// FindByID finds a rule by id
func (r *TargetRuleRepository) FindByID(ctx context.Context, id string) (*entity.TargetRule, error) {
	var rule entity.TargetRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// Create inserts a rule
func (r *TargetRuleRepository) Create(ctx context.Context, rule *entity.TargetRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// Update saves a rule
func (r *TargetRuleRepository) Update(ctx context.Context, rule *entity.TargetRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete removes a rule
func (r *TargetRuleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.TargetRule{}, "id = ?", id).Error
}

// ListByCategory returns a category's rules, active first, priority descending
func (r *TargetRuleRepository) ListByCategory(ctx context.Context, categoryID string) ([]entity.TargetRule, error) {
	var rules []entity.TargetRule
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("is_active DESC, priority DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ListActiveByCategory returns active rules ordered by priority descending
func (r *TargetRuleRepository) ListActiveByCategory(ctx context.Context, categoryID string) ([]entity.TargetRule, error) {
	var rules []entity.TargetRule
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("priority DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ============================================================
// User education requirements
// ============================================================

// RequirementRepository user education requirement store
type RequirementRepository struct {
	db *gorm.DB
}

// NewRequirementRepository creates the requirement repository
func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// FindByID finds a requirement by id
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*entity.UserEducationRequirement, error) {
	var req entity.UserEducationRequirement
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ExistsFor reports whether a requirement already exists for the
// (user, category, required date) triple.
func (r *RequirementRepository) ExistsFor(ctx context.Context, userID, categoryID string, requiredDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.UserEducationRequirement{}).
		Where("user_id = ? AND category_id = ? AND required_date = ?", userID, categoryID, requiredDate.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a requirement
func (r *RequirementRepository) Create(ctx context.Context, req *entity.UserEducationRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Update saves a requirement
func (r *RequirementRepository) Update(ctx context.Context, req *entity.UserEducationRequirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// List returns requirements filtered by user/category/status
func (r *RequirementRepository) List(ctx context.Context, userID, categoryID, status string) ([]entity.UserEducationRequirement, error) {
	var reqs []entity.UserEducationRequirement
	query := r.db.WithContext(ctx).Model(&entity.UserEducationRequirement{}).Preload("Category")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("due_date ASC").Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// MarkOverdue flips every pending/in-progress requirement past its due date
// to overdue and returns how many rows changed.
func (r *RequirementRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.UserEducationRequirement{}).
		Where("status IN ? AND due_date < ?",
			[]string{entity.RequirementStatusPending, entity.RequirementStatusInProgress},
			today.Format("2006-01-02")).
		Updates(map[string]interface{}{
			"status":     entity.RequirementStatusOverdue,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// CountByStatus returns requirement counts grouped by status
func (r *RequirementRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.UserEducationRequirement{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DueWithin returns non-terminal requirements due inside the window,
// soonest first.
func (r *RequirementRepository) DueWithin(ctx context.Context, from time.Time, days int) ([]entity.UserEducationRequirement, error) {
	var reqs []entity.UserEducationRequirement
	until := from.AddDate(0, 0, days)
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("status IN ? AND due_date >= ? AND due_date <= ?",
			[]string{entity.RequirementStatusPending, entity.RequirementStatusInProgress},
			from.Format("2006-01-02"), until.Format("2006-01-02")).
		Order("due_date ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// ============================================================
// Education records
// ============================================================

// EducationRecordRepository education record store
type EducationRecordRepository struct {
	db *gorm.DB
}

// NewEducationRecordRepository creates the record repository
func NewEducationRecordRepository(db *gorm.DB) *EducationRecordRepository {
	return &EducationRecordRepository{db: db}
}

// FindByID finds a record by id
func (r *EducationRecordRepository) FindByID(ctx context.Context, id string) (*entity.EducationRecord, error) {
	var rec entity.EducationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Create inserts a record
func (r *EducationRecordRepository) Create(ctx context.Context, rec *entity.EducationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update saves a record
func (r *EducationRecordRepository) Update(ctx context.Context, rec *entity.EducationRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// List returns records filtered by user/requirement/status
func (r *EducationRecordRepository) List(ctx context.Context, userID, requirementID, status string) ([]entity.EducationRecord, error) {
	var recs []entity.EducationRecord
	query := r.db.WithContext(ctx).Model(&entity.EducationRecord{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if requirementID != "" {
		query = query.Where("requirement_id = ?", requirementID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// ============================================================
// Daily logs
// ============================================================

// DailyLogRepository education daily log store
type DailyLogRepository struct {
	db *gorm.DB
}

// NewDailyLogRepository creates the daily log repository
func NewDailyLogRepository(db *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

// ExistsFor reports whether the user already logged this topic on this date
func (r *DailyLogRepository) ExistsFor(ctx context.Context, userID string, logDate time.Time, topic string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.EducationDailyLog{}).
		Where("user_id = ? AND log_date = ? AND topic = ?", userID, logDate.Format("2006-01-02"), topic).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a log entry
func (r *DailyLogRepository) Create(ctx context.Context, log *entity.EducationDailyLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Delete removes a log entry
func (r *DailyLogRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.EducationDailyLog{}, "id = ?", id).Error
}

// List returns log entries filtered by user and date range, newest first
func (r *DailyLogRepository) List(ctx context.Context, userID string, from, to *time.Time) ([]entity.EducationDailyLog, error) {
	var logs []entity.EducationDailyLog
	query := r.db.WithContext(ctx).Model(&entity.EducationDailyLog{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if from != nil {
		query = query.Where("log_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("log_date <= ?", to.Format("2006-01-02"))
	}
	err := query.Order("log_date DESC, created_at DESC").Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DailyLogStats aggregated daily log figures
type DailyLogStats struct {
	TotalLogs     int64 `json:"total_logs"`
	TotalMinutes  int64 `json:"total_minutes"`
	DistinctUsers int64 `json:"distinct_users"`
}

// Statistics aggregates log counts over an optional date range
func (r *DailyLogRepository) Statistics(ctx context.Context, from, to *time.Time) (*DailyLogStats, error) {
	var stats DailyLogStats
	query := r.db.WithContext(ctx).Model(&entity.EducationDailyLog{})
	if from != nil {
		query = query.Where("log_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("log_date <= ?", to.Format("2006-01-02"))
	}
	err := query.
		Select("COUNT(*) AS total_logs, COALESCE(SUM(duration_minutes), 0) AS total_minutes, COUNT(DISTINCT user_id) AS distinct_users").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
