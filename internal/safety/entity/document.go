package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB generic jsonb column
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// JSONBArray jsonb array column
type JSONBArray []interface{}

func (j JSONBArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONBArray: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// Document stored safety document row. All type-specific fields live in the
// Content jsonb bag; the row keeps only the columns every query needs.
type Document struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Title      string    `json:"title" gorm:"size:256;not null"`
	Status     string    `json:"status" gorm:"size:16;not null;default:pending;index"`
	UserID     string    `json:"user_id" gorm:"size:36;index"`
	TemplateID string    `json:"template_id" gorm:"size:36"`
	Content    JSONB     `json:"content" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// Document status lifecycle
const (
	DocumentStatusDraft      = "draft"
	DocumentStatusPending    = "pending"
	DocumentStatusInProgress = "in-progress"
	DocumentStatusCompleted  = "completed"
	DocumentStatusApproved   = "approved"
	DocumentStatusRejected   = "rejected"
	DocumentStatusArchived   = "archived"
	DocumentStatusOverdue    = "overdue"
)

// Unified document types
const (
	DocumentTypeDailyChecklist   = "daily-checklist"
	DocumentTypeWeeklyChecklist  = "weekly-checklist"
	DocumentTypeQuarterlyReport  = "quarterly-report"
	DocumentTypeSafetyInspection = "safety-inspection"
	DocumentTypeEducationLog     = "education-log"
	DocumentTypeRiskAssessment   = "risk-assessment"
	DocumentTypeJHA              = "jha"
	DocumentTypeChemicalUsage    = "chemical-usage-report"
	DocumentTypeExperimentPlan   = "experiment-plan"

	// DocumentTypeUnspecified is the normalizer fallback for rows whose
	// content bag carries no type. It is never a valid type on create.
	DocumentTypeUnspecified = "unspecified"
)

// Document categories
const (
	DocumentCategoryChecklist  = "checklist"
	DocumentCategoryReport     = "report"
	DocumentCategoryInspection = "inspection"
	DocumentCategoryEducation  = "education"
	DocumentCategoryAssessment = "assessment"
	DocumentCategoryPlan       = "plan"
)

// documentCategories maps each document type to its fixed category.
var documentCategories = map[string]string{
	DocumentTypeDailyChecklist:   DocumentCategoryChecklist,
	DocumentTypeWeeklyChecklist:  DocumentCategoryChecklist,
	DocumentTypeQuarterlyReport:  DocumentCategoryReport,
	DocumentTypeSafetyInspection: DocumentCategoryInspection,
	DocumentTypeEducationLog:     DocumentCategoryEducation,
	DocumentTypeRiskAssessment:   DocumentCategoryAssessment,
	DocumentTypeJHA:              DocumentCategoryAssessment,
	DocumentTypeChemicalUsage:    DocumentCategoryReport,
	DocumentTypeExperimentPlan:   DocumentCategoryPlan,
}

// IsValidDocumentType reports whether t is one of the known document types.
func IsValidDocumentType(t string) bool {
	_, ok := documentCategories[t]
	return ok
}

// CategoryOf returns the fixed category for a document type.
func CategoryOf(t string) string {
	if c, ok := documentCategories[t]; ok {
		return c
	}
	return ""
}

// AllDocumentTypes returns the fixed set of known types in a stable order.
func AllDocumentTypes() []string {
	return []string{
		DocumentTypeDailyChecklist,
		DocumentTypeWeeklyChecklist,
		DocumentTypeQuarterlyReport,
		DocumentTypeSafetyInspection,
		DocumentTypeEducationLog,
		DocumentTypeRiskAssessment,
		DocumentTypeJHA,
		DocumentTypeChemicalUsage,
		DocumentTypeExperimentPlan,
	}
}
