package entity

import (
	"time"
)

// User lab member subject to document ownership and education requirements
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:64;not null"`
	Email        string    `json:"email" gorm:"size:128;uniqueIndex"`
	Department   string    `json:"department" gorm:"size:64;index"`
	DepartmentID string    `json:"department_id" gorm:"size:36"`
	Position     string    `json:"position" gorm:"size:64"`
	Role         string    `json:"role" gorm:"size:32;default:member"`
	Status       string    `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// User status
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)
