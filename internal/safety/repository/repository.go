package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict concurrent writer won the compare-and-swap
	ErrVersionConflict = errors.New("document version conflict")
)

// Repositories repository collection
type Repositories struct {
	Document    *DocumentRepository
	History     *DocumentHistoryRepository
	User        *UserRepository
	Category    *EducationCategoryRepository
	TargetRule  *TargetRuleRepository
	Requirement *RequirementRepository
	Record      *EducationRecordRepository
	DailyLog    *DailyLogRepository
}

// NewRepositories creates the repository collection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Document:    NewDocumentRepository(db),
		History:     NewDocumentHistoryRepository(db),
		User:        NewUserRepository(db),
		Category:    NewEducationCategoryRepository(db),
		TargetRule:  NewTargetRuleRepository(db),
		Requirement: NewRequirementRepository(db),
		Record:      NewEducationRecordRepository(db),
		DailyLog:    NewDailyLogRepository(db),
	}
}
