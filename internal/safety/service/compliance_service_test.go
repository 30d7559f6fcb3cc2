package service

import (
	"testing"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
)

func TestAggregateCompliance(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []string
		wantStatus string
		wantRate   int
	}{
		{"no requirements", nil, ComplianceUnknown, 0},
		{"all completed", []string{RequirementCompleted, RequirementCompleted}, ComplianceCompliant, 100},
		{"one pending", []string{RequirementCompleted, RequirementPending}, CompliancePartial, 50},
		{"not started counts as pending", []string{RequirementCompleted, RequirementNotStarted}, CompliancePartial, 50},
		{"any overdue wins", []string{RequirementCompleted, RequirementPending, RequirementOverdue}, ComplianceNonCompliant, 33},
		{"rounding", []string{RequirementCompleted, RequirementCompleted, RequirementPending}, CompliancePartial, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var details []ComplianceDetail
			for _, s := range tt.statuses {
				details = append(details, ComplianceDetail{Status: s})
			}
			status, rate := AggregateCompliance(details)
			if status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, status)
			}
			if rate != tt.wantRate {
				t.Errorf("Expected rate %d, got %d", tt.wantRate, rate)
			}
		})
	}
}

func TestOverallBucket(t *testing.T) {
	tests := []struct {
		rate int
		want string
	}{
		{100, OverallExcellent},
		{90, OverallExcellent},
		{89, OverallGood},
		{75, OverallGood},
		{74, OverallWarning},
		{50, OverallWarning},
		{49, OverallCritical},
		{0, OverallCritical},
	}

	for _, tt := range tests {
		if got := OverallBucket(tt.rate); got != tt.want {
			t.Errorf("OverallBucket(%d) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestDeriveRequirementStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cyclic := entity.LawRequirement{CycleDays: 7}
	oneOff := entity.LawRequirement{CycleDays: 0}

	doneAt := func(d time.Time) *entity.Document {
		return &entity.Document{UpdatedAt: d}
	}
	open := &entity.Document{UpdatedAt: now}

	t.Run("completed one-off never expires", func(t *testing.T) {
		status, due := deriveRequirementStatus(oneOff, doneAt(now.AddDate(-1, 0, 0)), nil, now)
		if status != RequirementCompleted || due != nil {
			t.Errorf("Expected completed with no due date, got %q %v", status, due)
		}
	})

	t.Run("inside the cycle", func(t *testing.T) {
		status, due := deriveRequirementStatus(cyclic, doneAt(now.AddDate(0, 0, -3)), nil, now)
		if status != RequirementCompleted {
			t.Errorf("Expected completed, got %q", status)
		}
		if due == nil || !due.Equal(now.AddDate(0, 0, 4)) {
			t.Errorf("Expected due 4 days out, got %v", due)
		}
	})

	t.Run("cycle lapsed with open draft", func(t *testing.T) {
		status, _ := deriveRequirementStatus(cyclic, doneAt(now.AddDate(0, 0, -10)), open, now)
		if status != RequirementPending {
			t.Errorf("Expected pending, got %q", status)
		}
	})

	t.Run("cycle lapsed with nothing open", func(t *testing.T) {
		status, due := deriveRequirementStatus(cyclic, doneAt(now.AddDate(0, 0, -10)), nil, now)
		if status != RequirementOverdue {
			t.Errorf("Expected overdue, got %q", status)
		}
		if due == nil || !due.Equal(now.AddDate(0, 0, -3)) {
			t.Errorf("Expected due 3 days ago, got %v", due)
		}
	})

	t.Run("never done but started", func(t *testing.T) {
		status, _ := deriveRequirementStatus(cyclic, nil, open, now)
		if status != RequirementPending {
			t.Errorf("Expected pending, got %q", status)
		}
	})

	t.Run("never done never started", func(t *testing.T) {
		status, _ := deriveRequirementStatus(cyclic, nil, nil, now)
		if status != RequirementNotStarted {
			t.Errorf("Expected not-started, got %q", status)
		}
	})
}

func TestLawTable(t *testing.T) {
	all := entity.AllLawRequirements()
	if len(all) == 0 {
		t.Fatal("Expected a non-empty law table")
	}
	for _, req := range all {
		if req.LawID == "" || req.ArticleID == "" {
			t.Errorf("Requirement missing identifiers: %+v", req)
		}
	}

	// the experiment plan deliberately has no legal mapping
	if reqs := entity.LawRequirementsFor(entity.DocumentTypeExperimentPlan); len(reqs) != 0 {
		t.Errorf("Expected no requirements for experiment plans, got %d", len(reqs))
	}
	if reqs := entity.LawRequirementsFor(entity.DocumentTypeDailyChecklist); len(reqs) == 0 {
		t.Error("Expected daily checklist to carry legal requirements")
	}
}
