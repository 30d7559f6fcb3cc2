package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"go.uber.org/zap"
)

// dueOffsetMonths is added to the assignment date to produce the due date.
const dueOffsetMonths = 1

// RuleEngine materializes education requirements from a category's target
// rules. Matching is OR-union across active rules; a user matched by any
// rule is in scope.
type RuleEngine struct {
	categoryRepo    *repository.EducationCategoryRepository
	ruleRepo        *repository.TargetRuleRepository
	requirementRepo *repository.RequirementRepository
	userRepo        *repository.UserRepository
	logger          *zap.Logger
}

// NewRuleEngine creates the rule engine
func NewRuleEngine(
	categoryRepo *repository.EducationCategoryRepository,
	ruleRepo *repository.TargetRuleRepository,
	requirementRepo *repository.RequirementRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *RuleEngine {
	return &RuleEngine{
		categoryRepo:    categoryRepo,
		ruleRepo:        ruleRepo,
		requirementRepo: requirementRepo,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// ApplyRulesResult outcome of one rule application run
type ApplyRulesResult struct {
	CategoryID      string   `json:"category_id"`
	DryRun          bool     `json:"dry_run"`
	MatchedUsers    int      `json:"matched_users"`
	CreatedCount    int      `json:"created_count"`
	SkippedExisting int      `json:"skipped_existing"`
	MatchedUserIDs  []string `json:"matched_user_ids"`
	Errors          []string `json:"errors,omitempty"`
}

// MatchTargetUsers returns the active users selected by a category's active
// rules. Rules are evaluated priority first so logs read in rule order, but
// the result is the same union regardless of ordering.
func (e *RuleEngine) MatchTargetUsers(ctx context.Context, categoryID string) ([]entity.User, error) {
	rules, err := e.ruleRepo.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list target rules: %w", err)
	}
	if len(rules) == 0 {
		return []entity.User{}, nil
	}

	users, err := e.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	matched := []entity.User{}
	seen := make(map[string]bool)
	for _, rule := range rules {
		for _, user := range users {
			if seen[user.ID] {
				continue
			}
			if ruleMatches(rule, user) {
				seen[user.ID] = true
				matched = append(matched, user)
			}
		}
	}
	return matched, nil
}

// ruleMatches reports whether one rule selects one user. Custom rules need
// an evaluator that does not exist yet, so they never match.
func ruleMatches(rule entity.TargetRule, user entity.User) bool {
	switch rule.RuleType {
	case entity.RuleTypeDepartment:
		return containsValue(rule.RuleValue, user.Department) || containsValue(rule.RuleValue, user.DepartmentID)
	case entity.RuleTypePosition:
		return containsValue(rule.RuleValue, user.Position)
	case entity.RuleTypeRole:
		return containsValue(rule.RuleValue, user.Role)
	case entity.RuleTypeCustom:
		return false
	default:
		return false
	}
}

func containsValue(values entity.JSONBArray, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if s, ok := v.(string); ok && s == target {
			return true
		}
	}
	return false
}

// ApplyRules matches users and creates a pending requirement per user with
// required date today and due date one month out. Users who already hold a
// requirement for (category, today) are skipped. In dry-run mode nothing is
// written. Per-user failures are collected; the run fails only when every
// create failed.
func (e *RuleEngine) ApplyRules(ctx context.Context, categoryID string, dryRun bool) (*ApplyRulesResult, error) {
	if _, err := e.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if err == repository.ErrNotFound {
			return nil, &ResourceError{Resource: "education category", ID: categoryID}
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	users, err := e.MatchTargetUsers(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	today := truncateToDate(time.Now())
	dueDate := today.AddDate(0, dueOffsetMonths, 0)

	result := &ApplyRulesResult{
		CategoryID:     categoryID,
		DryRun:         dryRun,
		MatchedUsers:   len(users),
		MatchedUserIDs: make([]string, 0, len(users)),
	}

	for _, user := range users {
		result.MatchedUserIDs = append(result.MatchedUserIDs, user.ID)

		exists, err := e.requirementRepo.ExistsFor(ctx, user.ID, categoryID, today)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", user.ID, err))
			continue
		}
		if exists {
			result.SkippedExisting++
			continue
		}
		if dryRun {
			result.CreatedCount++
			continue
		}

		req := &entity.UserEducationRequirement{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			CategoryID:   categoryID,
			Status:       entity.RequirementStatusPending,
			RequiredDate: today,
			DueDate:      dueDate,
		}
		if err := e.requirementRepo.Create(ctx, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", user.ID, err))
			continue
		}
		result.CreatedCount++
	}

	if len(result.Errors) > 0 && result.CreatedCount == 0 && result.SkippedExisting == 0 {
		return result, fmt.Errorf("apply rules for category %s: all %d assignments failed", categoryID, len(result.Errors))
	}

	e.logger.Info("applied education target rules",
		zap.String("category_id", categoryID),
		zap.Bool("dry_run", dryRun),
		zap.Int("matched", result.MatchedUsers),
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.SkippedExisting),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// CheckOverdue flips pending and in-progress requirements past their due
// date to overdue and returns how many rows changed.
func (e *RuleEngine) CheckOverdue(ctx context.Context) (int64, error) {
	today := truncateToDate(time.Now())
	changed, err := e.requirementRepo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("mark overdue requirements: %w", err)
	}
	if changed > 0 {
		e.logger.Info("marked overdue education requirements", zap.Int64("count", changed))
	}
	return changed, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
