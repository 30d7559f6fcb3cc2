package entity

import (
	"time"
)

// DocumentMeta common metadata envelope shared by every document variant
type DocumentMeta struct {
	Version          int      `json:"version"`
	IsAiGenerated    bool     `json:"isAiGenerated"`
	TemplateID       string   `json:"templateId,omitempty"`
	ParentDocumentID string   `json:"parentDocumentId,omitempty"`
	Tags             []string `json:"tags"`
	Category         string   `json:"category,omitempty"`
	Period           string   `json:"period,omitempty"`
	PeriodDate       string   `json:"periodDate,omitempty"`
}

// ReviewInfo review section
type ReviewInfo struct {
	Reviewer   string     `json:"reviewer,omitempty"`
	Status     string     `json:"status,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}

// ApprovalInfo approval section
type ApprovalInfo struct {
	Approver   string     `json:"approver,omitempty"`
	Status     string     `json:"status,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

// Attachment uploaded file reference
type Attachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// Permissions document access lists
type Permissions struct {
	Owner   string   `json:"owner,omitempty"`
	Editors []string `json:"editors,omitempty"`
	Viewers []string `json:"viewers,omitempty"`
}

// BaseDocument canonical normalized view of any stored document. Every field
// is defaulted by the normalizer, so consumers never touch the raw content bag.
type BaseDocument struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	Author       string          `json:"author"`
	AuthorID     string          `json:"authorId"`
	Department   string          `json:"department"`
	DepartmentID string          `json:"departmentId,omitempty"`
	Metadata     DocumentMeta    `json:"metadata"`
	Review       *ReviewInfo     `json:"review,omitempty"`
	Approval     *ApprovalInfo   `json:"approval,omitempty"`
	Attachments  []Attachment    `json:"attachments"`
	Permissions  *Permissions    `json:"permissions,omitempty"`
	Signature    string          `json:"signature,omitempty"`
	SignedAt     *time.Time      `json:"signedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Details      DocumentDetails `json:"details,omitempty"`
}
