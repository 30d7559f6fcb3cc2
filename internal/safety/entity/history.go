package entity

import (
	"time"
)

// DocumentHistory append-only audit entry. Written only when an update
// carries an explicit reason.
type DocumentHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	DocumentID string    `json:"document_id" gorm:"size:36;not null;index"`
	Version    int       `json:"version" gorm:"not null"`
	Changes    JSONB     `json:"changes" gorm:"type:jsonb;not null;default:'{}'"`
	Reason     string    `json:"reason" gorm:"size:512;not null"`
	ChangedBy  string    `json:"changed_by" gorm:"size:36;not null"`
	ChangedAt  time.Time `json:"changed_at"`
}

func (DocumentHistory) TableName() string {
	return "document_histories"
}
