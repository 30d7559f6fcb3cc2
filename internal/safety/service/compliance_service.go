package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/redis/go-redis/v9"
)

const (
	complianceCacheKey = "safety:compliance:overview"
	complianceCacheTTL = 5 * time.Minute

	// deadlineWindowDays how far ahead upcoming deadlines are collected
	deadlineWindowDays = 30
)

// Per-requirement compliance statuses
const (
	RequirementCompleted  = "completed"
	RequirementPending    = "pending"
	RequirementOverdue    = "overdue"
	RequirementNotStarted = "not-started"
)

// Per-type and overall compliance statuses
const (
	ComplianceCompliant    = "compliant"
	CompliancePartial      = "partial"
	ComplianceNonCompliant = "non-compliant"
	ComplianceUnknown      = "unknown"
)

// Overall buckets
const (
	OverallExcellent = "excellent"
	OverallGood      = "good"
	OverallWarning   = "warning"
	OverallCritical  = "critical"
)

// ComplianceDetail one legal requirement with its derived status
type ComplianceDetail struct {
	LawID          string     `json:"law_id"`
	LawName        string     `json:"law_name"`
	ArticleID      string     `json:"article_id"`
	ArticleTitle   string     `json:"article_title"`
	Relevance      string     `json:"relevance"`
	ComplianceType string     `json:"compliance_type"`
	Status         string     `json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	DaysRemaining  *int       `json:"days_remaining,omitempty"`
}

// ComplianceStatus per-document-type compliance summary
type ComplianceStatus struct {
	DocumentType   string             `json:"document_type"`
	Status         string             `json:"status"`
	ComplianceRate int                `json:"compliance_rate"`
	Details        []ComplianceDetail `json:"details"`
	CheckedAt      time.Time          `json:"checked_at"`
}

// UpcomingDeadline a requirement due inside the deadline window
type UpcomingDeadline struct {
	DocumentType  string    `json:"document_type"`
	LawID         string    `json:"law_id"`
	ArticleID     string    `json:"article_id"`
	ArticleTitle  string    `json:"article_title"`
	DueDate       time.Time `json:"due_date"`
	DaysRemaining int       `json:"days_remaining"`
}

// OverallCompliance aggregate across the fixed document type set
type OverallCompliance struct {
	TotalDocuments        int                `json:"total_documents"`
	CompliantDocuments    int                `json:"compliant_documents"`
	PartialDocuments      int                `json:"partial_documents"`
	NonCompliantDocuments int                `json:"non_compliant_documents"`
	UnknownDocuments      int                `json:"unknown_documents"`
	OverallRate           int                `json:"overall_rate"`
	Status                string             `json:"status"`
	UpcomingDeadlines     []UpcomingDeadline `json:"upcoming_deadlines"`
	GeneratedAt           time.Time          `json:"generated_at"`
}

// ComplianceService derives compliance from the static law table joined
// against live document activity. The overview snapshot is cached in Redis.
type ComplianceService struct {
	docRepo *repository.DocumentRepository
	rdb     *redis.Client
}

// NewComplianceService creates the compliance service
func NewComplianceService(docRepo *repository.DocumentRepository, rdb *redis.Client) *ComplianceService {
	return &ComplianceService{docRepo: docRepo, rdb: rdb}
}

// CheckDocumentCompliance derives the per-requirement statuses for one
// document type from live document activity and aggregates them.
func (s *ComplianceService) CheckDocumentCompliance(ctx context.Context, docType string) (*ComplianceStatus, error) {
	requirements := entity.LawRequirementsFor(docType)
	now := time.Now()

	result := &ComplianceStatus{
		DocumentType: docType,
		Details:      []ComplianceDetail{},
		CheckedAt:    now,
	}

	if len(requirements) == 0 {
		result.Status = ComplianceUnknown
		result.ComplianceRate = 0
		return result, nil
	}

	lastDone, err := s.docRepo.LatestByTypeWithStatus(ctx, docType,
		[]string{entity.DocumentStatusCompleted, entity.DocumentStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("query completed documents: %w", err)
	}
	inFlight, err := s.docRepo.LatestByTypeWithStatus(ctx, docType,
		[]string{entity.DocumentStatusDraft, entity.DocumentStatusPending, entity.DocumentStatusInProgress})
	if err != nil {
		return nil, fmt.Errorf("query open documents: %w", err)
	}

	for _, req := range requirements {
		detail := ComplianceDetail{
			LawID:          req.LawID,
			LawName:        req.LawName,
			ArticleID:      req.ArticleID,
			ArticleTitle:   req.ArticleTitle,
			Relevance:      req.Relevance,
			ComplianceType: req.ComplianceType,
		}
		detail.Status, detail.DueDate = deriveRequirementStatus(req, lastDone, inFlight, now)
		if detail.DueDate != nil {
			days := int(math.Ceil(detail.DueDate.Sub(now).Hours() / 24))
			detail.DaysRemaining = &days
		}
		result.Details = append(result.Details, detail)
	}

	result.Status, result.ComplianceRate = AggregateCompliance(result.Details)
	return result, nil
}

// deriveRequirementStatus resolves one requirement against the latest
// completed and latest in-flight document of its type.
func deriveRequirementStatus(req entity.LawRequirement, lastDone, inFlight *entity.Document, now time.Time) (string, *time.Time) {
	if lastDone != nil {
		if req.CycleDays == 0 {
			return RequirementCompleted, nil
		}
		due := lastDone.UpdatedAt.AddDate(0, 0, req.CycleDays)
		if now.Before(due) {
			return RequirementCompleted, &due
		}
		if inFlight != nil {
			return RequirementPending, &due
		}
		return RequirementOverdue, &due
	}
	if inFlight != nil {
		return RequirementPending, nil
	}
	return RequirementNotStarted, nil
}

// AggregateCompliance folds per-requirement statuses into a type-level
// status and rate. Any overdue wins, then any pending or not-started makes
// the type partial; compliant needs every requirement completed.
func AggregateCompliance(details []ComplianceDetail) (string, int) {
	if len(details) == 0 {
		return ComplianceUnknown, 0
	}

	var completed, pending, overdue int
	for _, d := range details {
		switch d.Status {
		case RequirementCompleted:
			completed++
		case RequirementPending, RequirementNotStarted:
			pending++
		case RequirementOverdue:
			overdue++
		}
	}

	rate := int(math.Round(float64(completed) / float64(len(details)) * 100))

	switch {
	case overdue > 0:
		return ComplianceNonCompliant, rate
	case pending > 0:
		return CompliancePartial, rate
	default:
		return ComplianceCompliant, rate
	}
}

// OverallBucket maps an overall rate onto its status bucket
func OverallBucket(rate int) string {
	switch {
	case rate >= 90:
		return OverallExcellent
	case rate >= 75:
		return OverallGood
	case rate >= 50:
		return OverallWarning
	default:
		return OverallCritical
	}
}

// CalculateOverallCompliance runs the per-type check across the fixed type
// set, buckets the result, and collects deadlines due within 30 days. The
// snapshot is served from Redis when fresh.
func (s *ComplianceService) CalculateOverallCompliance(ctx context.Context) (*OverallCompliance, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	overall := &OverallCompliance{
		UpcomingDeadlines: []UpcomingDeadline{},
		GeneratedAt:       time.Now(),
	}

	for _, docType := range entity.AllDocumentTypes() {
		status, err := s.CheckDocumentCompliance(ctx, docType)
		if err != nil {
			return nil, err
		}
		overall.TotalDocuments++
		switch status.Status {
		case ComplianceCompliant:
			overall.CompliantDocuments++
		case CompliancePartial:
			overall.PartialDocuments++
		case ComplianceNonCompliant:
			overall.NonCompliantDocuments++
		default:
			overall.UnknownDocuments++
		}

		for _, d := range status.Details {
			if d.DueDate == nil || d.DaysRemaining == nil {
				continue
			}
			if *d.DaysRemaining < 0 || *d.DaysRemaining > deadlineWindowDays {
				continue
			}
			overall.UpcomingDeadlines = append(overall.UpcomingDeadlines, UpcomingDeadline{
				DocumentType:  docType,
				LawID:         d.LawID,
				ArticleID:     d.ArticleID,
				ArticleTitle:  d.ArticleTitle,
				DueDate:       *d.DueDate,
				DaysRemaining: *d.DaysRemaining,
			})
		}
	}

	overall.OverallRate = int(math.Round(float64(overall.CompliantDocuments) / float64(overall.TotalDocuments) * 100))
	overall.Status = OverallBucket(overall.OverallRate)

	sort.Slice(overall.UpcomingDeadlines, func(i, j int) bool {
		return overall.UpcomingDeadlines[i].DaysRemaining < overall.UpcomingDeadlines[j].DaysRemaining
	})

	s.writeCache(ctx, overall)
	return overall, nil
}

// ListLaws returns the static law table
func (s *ComplianceService) ListLaws() []entity.LawRequirement {
	return entity.AllLawRequirements()
}

// LawsByID returns every article of one law
func (s *ComplianceService) LawsByID(lawID string) []entity.LawRequirement {
	var out []entity.LawRequirement
	for _, req := range entity.AllLawRequirements() {
		if req.LawID == lawID {
			out = append(out, req)
		}
	}
	return out
}

func (s *ComplianceService) readCache(ctx context.Context) *OverallCompliance {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, complianceCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var overall OverallCompliance
	if err := json.Unmarshal(raw, &overall); err != nil {
		return nil
	}
	return &overall
}

func (s *ComplianceService) writeCache(ctx context.Context, overall *OverallCompliance) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(overall)
	if err != nil {
		return
	}
	s.rdb.Set(ctx, complianceCacheKey, raw, complianceCacheTTL)
}
