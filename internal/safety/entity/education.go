package entity

import (
	"time"
)

// EducationCategory a class of mandatory education (e.g. quarterly safety
// training). Target rules attached to a category decide who must take it.
type EducationCategory struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	RequiredHours float64   `json:"required_hours" gorm:"not null;default:0"`
	IsRequired    bool      `json:"is_required" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	TargetRules []TargetRule `json:"target_rules,omitempty" gorm:"foreignKey:CategoryID"`
}

func (EducationCategory) TableName() string {
	return "education_categories"
}

// TargetRule matcher that selects users subject to a category. Matching is
// OR-union across all active rules; priority orders evaluation only.
type TargetRule struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	CategoryID string     `json:"category_id" gorm:"size:36;not null;index"`
	RuleType   string     `json:"rule_type" gorm:"size:16;not null"`
	RuleValue  JSONBArray `json:"rule_value" gorm:"type:jsonb;not null;default:'[]'"`
	Priority   int        `json:"priority" gorm:"not null;default:0"`
	IsActive   bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (TargetRule) TableName() string {
	return "education_target_rules"
}

// Target rule types
const (
	RuleTypeDepartment = "department"
	RuleTypePosition   = "position"
	RuleTypeRole       = "role"
	RuleTypeCustom     = "custom"
)

// UserEducationRequirement materialized per-user obligation for a category
type UserEducationRequirement struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	UserID       string     `json:"user_id" gorm:"size:36;not null;index"`
	CategoryID   string     `json:"category_id" gorm:"size:36;not null;index"`
	Status       string     `json:"status" gorm:"size:16;not null;default:pending"`
	RequiredDate time.Time  `json:"required_date" gorm:"type:date;not null"`
	DueDate      time.Time  `json:"due_date" gorm:"type:date;not null"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Category *EducationCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (UserEducationRequirement) TableName() string {
	return "user_education_requirements"
}

// Requirement status lifecycle: pending -> in_progress -> completed | overdue
const (
	RequirementStatusPending    = "pending"
	RequirementStatusInProgress = "in_progress"
	RequirementStatusCompleted  = "completed"
	RequirementStatusOverdue    = "overdue"
)

// EducationRecord evidence that a user attended education. A verified record
// satisfies its linked requirement.
type EducationRecord struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	UserID        string     `json:"user_id" gorm:"size:36;not null;index"`
	CategoryID    string     `json:"category_id" gorm:"size:36;index"`
	RequirementID string     `json:"requirement_id" gorm:"size:36;index"`
	Title         string     `json:"title" gorm:"size:256;not null"`
	Hours         float64    `json:"hours" gorm:"not null;default:0"`
	EducationDate time.Time  `json:"education_date" gorm:"type:date"`
	Status        string     `json:"status" gorm:"size:16;not null;default:pending"`
	ProofFilePath string     `json:"proof_file_path" gorm:"size:512"`
	VerifiedBy    string     `json:"verified_by" gorm:"size:36"`
	VerifiedAt    *time.Time `json:"verified_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (EducationRecord) TableName() string {
	return "education_records"
}

// Record status lifecycle: pending -> verified | rejected
const (
	RecordStatusPending  = "pending"
	RecordStatusVerified = "verified"
	RecordStatusRejected = "rejected"
)

// EducationDailyLog short daily toolbox-talk style entry
type EducationDailyLog struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	UserID          string    `json:"user_id" gorm:"size:36;not null;index"`
	LogDate         time.Time `json:"log_date" gorm:"type:date;not null;index"`
	Topic           string    `json:"topic" gorm:"size:256;not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null;default:0"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
}

func (EducationDailyLog) TableName() string {
	return "education_daily_logs"
}
