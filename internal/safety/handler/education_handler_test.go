package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupEducationTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()
	svc := service.NewEducationService(
		repos.Category, repos.TargetRule, repos.Requirement,
		repos.Record, repos.DailyLog, repos.User,
		nil, "safety-documents", logger)
	engine := service.NewRuleEngine(repos.Category, repos.TargetRule, repos.Requirement, repos.User, logger)
	h := NewEducationHandler(svc, engine)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	edu := api.Group("/education")
	edu.GET("/daily-logs", h.ListDailyLogs)
	edu.POST("/daily-logs", h.CreateDailyLogs)
	edu.DELETE("/daily-logs", h.DeleteDailyLog)
	edu.GET("/records", h.ListRecords)
	edu.POST("/records", h.CreateRecord)
	edu.PUT("/records", h.VerifyRecord)
	edu.GET("/requirements", h.ListRequirements)
	edu.POST("/requirements", h.CreateRequirements)
	edu.PUT("/requirements", h.UpdateRequirement)
	edu.PATCH("/requirements", h.PatchRequirements)
	edu.GET("/target-rules", h.ListTargetRules)
	edu.POST("/target-rules", h.CreateTargetRule)
	edu.PATCH("/target-rules", h.PatchTargetRules)
	edu.GET("/categories", h.ListCategories)
	edu.POST("/categories", h.CreateCategory)
	edu.GET("/statistics", h.Statistics)

	return r, db
}

func seedRule(t *testing.T, db *gorm.DB, categoryID, ruleType string, values ...interface{}) *entity.TargetRule {
	t.Helper()
	rule := &entity.TargetRule{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		RuleType:   ruleType,
		RuleValue:  entity.JSONBArray(values),
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("Failed to seed target rule: %v", err)
	}
	return rule
}

func applyRules(t *testing.T, r *gin.Engine, categoryID string, dryRun bool) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(r, "PATCH", "/api/v1/education/target-rules?action=apply-rules", map[string]interface{}{
		"category_id": categoryID,
		"dry_run":     dryRun,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("apply-rules failed: %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func TestCategoryLifecycle(t *testing.T) {
	r, _ := setupEducationTest(t)

	w := testutil.DoRequest(r, "POST", "/api/v1/education/categories", map[string]interface{}{
		"name":           "Chemical Handling",
		"required_hours": 4,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	cat := resp["data"].(map[string]interface{})
	if cat["is_required"] != true {
		t.Errorf("Expected is_required to default true, got %v", cat["is_required"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/education/categories", nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	cats := resp["data"].([]interface{})
	if len(cats) != 1 {
		t.Errorf("Expected 1 category, got %d", len(cats))
	}

	// name is mandatory
	w = testutil.DoRequest(r, "POST", "/api/v1/education/categories", map[string]interface{}{
		"required_hours": 4,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing name, got %d", w.Code)
	}
}

func TestApplyRulesDryRunThenReal(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-001", "Lab Safety Basics")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	testutil.SeedTestUser(t, db, "user-b", "Bob", "Chemistry Lab")
	testutil.SeedTestUser(t, db, "user-c", "Carol", "Physics Lab")
	seedRule(t, db, "cat-001", entity.RuleTypeDepartment, "Chemistry Lab")

	// dry run reports what would happen without writing
	result := applyRules(t, r, "cat-001", true)
	if result["matched_users"] != float64(2) || result["created_count"] != float64(2) {
		t.Errorf("Unexpected dry-run result: %v", result)
	}
	w := testutil.DoRequest(r, "GET", "/api/v1/education/requirements?category_id=cat-001", nil, testutil.DefaultTestToken())
	resp := testutil.ParseResponse(w)
	if reqs, _ := resp["data"].([]interface{}); len(reqs) != 0 {
		t.Fatalf("Dry run must not create requirements, found %d", len(reqs))
	}

	// real run materializes the same set
	result = applyRules(t, r, "cat-001", false)
	if result["created_count"] != float64(2) {
		t.Errorf("Expected 2 created, got %v", result["created_count"])
	}
	w = testutil.DoRequest(r, "GET", "/api/v1/education/requirements?category_id=cat-001", nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	reqs := resp["data"].([]interface{})
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requirements, got %d", len(reqs))
	}
	first := reqs[0].(map[string]interface{})
	if first["status"] != entity.RequirementStatusPending {
		t.Errorf("Expected pending status, got %v", first["status"])
	}

	// a second run only skips
	result = applyRules(t, r, "cat-001", false)
	if result["created_count"] != float64(0) || result["skipped_existing"] != float64(2) {
		t.Errorf("Expected idempotent re-run, got %v", result)
	}
}

func TestApplyRulesUnionAcrossRules(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-002", "Fire Drill")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	testutil.SeedTestUser(t, db, "user-b", "Bob", "Physics Lab")
	seedRule(t, db, "cat-002", entity.RuleTypeDepartment, "Chemistry Lab")

	result := applyRules(t, r, "cat-002", true)
	if result["matched_users"] != float64(1) {
		t.Fatalf("Expected 1 match before second rule, got %v", result["matched_users"])
	}

	// adding a rule can only widen the match set
	seedRule(t, db, "cat-002", entity.RuleTypePosition, "researcher")
	result = applyRules(t, r, "cat-002", true)
	if result["matched_users"] != float64(2) {
		t.Errorf("Expected union of both rules to match 2 users, got %v", result["matched_users"])
	}
}

func TestApplyRulesUnknownCategory(t *testing.T) {
	r, _ := setupEducationTest(t)

	w := testutil.DoRequest(r, "PATCH", "/api/v1/education/target-rules?action=apply-rules", map[string]interface{}{
		"category_id": "no-such-category",
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown category, got %d", w.Code)
	}
}

func TestCreateRequirementsBulk(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-003", "First Aid")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")

	w := testutil.DoRequest(r, "POST", "/api/v1/education/requirements", map[string]interface{}{
		"requirements": []map[string]interface{}{
			{"user_id": "user-a", "category_id": "cat-003", "required_date": "2026-08-01"},
			{"user_id": "user-a", "category_id": "cat-003", "required_date": "2026-08-01"},
			{"user_id": "user-a", "category_id": "cat-003", "required_date": "not-a-date"},
		},
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	result := resp["data"].(map[string]interface{})
	if result["created_count"] != float64(1) || result["skipped_count"] != float64(1) {
		t.Errorf("Unexpected bulk result: %v", result)
	}
	if errs, _ := result["errors"].([]interface{}); len(errs) != 1 {
		t.Errorf("Expected 1 item error, got %v", result["errors"])
	}

	// default due date is one month after the required date
	w = testutil.DoRequest(r, "GET", "/api/v1/education/requirements?user_id=user-a", nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	reqs := resp["data"].([]interface{})
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 requirement, got %d", len(reqs))
	}
	req := reqs[0].(map[string]interface{})
	due, _ := req["due_date"].(string)
	if len(due) < 10 || due[:10] != "2026-09-01" {
		t.Errorf("Expected due date 2026-09-01, got %v", req["due_date"])
	}
}

func TestRequirementStatusTransitions(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-004", "CPR")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	req := seedRequirement(t, db, "user-a", "cat-004", entity.RequirementStatusPending, time.Now().AddDate(0, 1, 0))

	// pending -> in_progress
	w := testutil.DoRequest(r, "PUT", "/api/v1/education/requirements", map[string]interface{}{
		"id": req.ID, "status": entity.RequirementStatusInProgress,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	// in_progress -> completed stamps completed_at
	w = testutil.DoRequest(r, "PUT", "/api/v1/education/requirements", map[string]interface{}{
		"id": req.ID, "status": entity.RequirementStatusCompleted,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	updated := resp["data"].(map[string]interface{})
	if updated["completed_at"] == nil {
		t.Error("Expected completed_at to be stamped")
	}

	// completed is terminal
	w = testutil.DoRequest(r, "PUT", "/api/v1/education/requirements", map[string]interface{}{
		"id": req.ID, "status": entity.RequirementStatusInProgress,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when leaving completed, got %d", w.Code)
	}
}

func TestCheckOverdueSweep(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-005", "Waste Disposal")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	testutil.SeedTestUser(t, db, "user-b", "Bob", "Chemistry Lab")
	lapsed := seedRequirement(t, db, "user-a", "cat-005", entity.RequirementStatusPending, time.Now().AddDate(0, 0, -3))
	current := seedRequirement(t, db, "user-b", "cat-005", entity.RequirementStatusPending, time.Now().AddDate(0, 0, 3))

	w := testutil.DoRequest(r, "PATCH", "/api/v1/education/requirements?action=check-overdue", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["marked_overdue"] != float64(1) {
		t.Errorf("Expected 1 requirement marked overdue, got %v", data["marked_overdue"])
	}

	var got entity.UserEducationRequirement
	if err := db.First(&got, "id = ?", lapsed.ID).Error; err != nil {
		t.Fatalf("Failed to reload requirement: %v", err)
	}
	if got.Status != entity.RequirementStatusOverdue {
		t.Errorf("Expected lapsed requirement overdue, got %s", got.Status)
	}
	// fresh destination: a populated primary key on got would be added to the query conditions
	got = entity.UserEducationRequirement{}
	if err := db.First(&got, "id = ?", current.ID).Error; err != nil {
		t.Fatalf("Failed to reload requirement: %v", err)
	}
	if got.Status != entity.RequirementStatusPending {
		t.Errorf("Expected current requirement untouched, got %s", got.Status)
	}

	// overdue can still be recovered through in_progress
	w = testutil.DoRequest(r, "PUT", "/api/v1/education/requirements", map[string]interface{}{
		"id": lapsed.ID, "status": entity.RequirementStatusInProgress,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Errorf("Expected overdue -> in_progress to be allowed, got %d", w.Code)
	}
}

func TestVerifyRecordCompletesRequirement(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-006", "Electrical Safety")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	req := seedRequirement(t, db, "user-a", "cat-006", entity.RequirementStatusPending, time.Now().AddDate(0, 1, 0))

	w := testutil.DoRequest(r, "POST", "/api/v1/education/records", map[string]interface{}{
		"user_id":        "user-a",
		"category_id":    "cat-006",
		"requirement_id": req.ID,
		"title":          "Electrical Safety Workshop",
		"hours":          2,
		"education_date": "2026-08-20",
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	record := resp["data"].(map[string]interface{})
	if record["status"] != entity.RecordStatusPending {
		t.Errorf("Expected new record pending, got %v", record["status"])
	}
	recordID := record["id"].(string)

	// approving verifies the record and completes the linked requirement
	w = testutil.DoRequest(r, "PUT", "/api/v1/education/records", map[string]interface{}{
		"id": recordID, "approve": true,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	verified := resp["data"].(map[string]interface{})
	if verified["status"] != entity.RecordStatusVerified {
		t.Errorf("Expected verified record, got %v", verified["status"])
	}
	if verified["verified_by"] != "test-user-001" {
		t.Errorf("Expected verifier from token, got %v", verified["verified_by"])
	}

	var got entity.UserEducationRequirement
	if err := db.First(&got, "id = ?", req.ID).Error; err != nil {
		t.Fatalf("Failed to reload requirement: %v", err)
	}
	if got.Status != entity.RequirementStatusCompleted {
		t.Errorf("Expected linked requirement completed, got %s", got.Status)
	}

	// a settled record cannot be verified again
	w = testutil.DoRequest(r, "PUT", "/api/v1/education/records", map[string]interface{}{
		"id": recordID, "approve": false,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on double verification, got %d", w.Code)
	}
}

func TestRejectRecordLeavesRequirementOpen(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-007", "Gas Cylinder Handling")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	req := seedRequirement(t, db, "user-a", "cat-007", entity.RequirementStatusPending, time.Now().AddDate(0, 1, 0))

	w := testutil.DoRequest(r, "POST", "/api/v1/education/records", map[string]interface{}{
		"user_id":        "user-a",
		"requirement_id": req.ID,
		"title":          "Unreadable certificate scan",
	}, testutil.DefaultTestToken())
	resp := testutil.ParseResponse(w)
	recordID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(r, "PUT", "/api/v1/education/records", map[string]interface{}{
		"id": recordID, "approve": false,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != entity.RecordStatusRejected {
		t.Errorf("Expected rejected record, got %v", resp["data"])
	}

	var got entity.UserEducationRequirement
	if err := db.First(&got, "id = ?", req.ID).Error; err != nil {
		t.Fatalf("Failed to reload requirement: %v", err)
	}
	if got.Status != entity.RequirementStatusPending {
		t.Errorf("Expected requirement untouched by rejection, got %s", got.Status)
	}
}

func TestDailyLogsBulkAndDedupe(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")

	w := testutil.DoRequest(r, "POST", "/api/v1/education/daily-logs", map[string]interface{}{
		"logs": []map[string]interface{}{
			{"user_id": "user-a", "log_date": "2026-08-28", "topic": "Spill response", "duration_minutes": 15},
			{"user_id": "user-a", "log_date": "2026-08-28", "topic": "Spill response", "duration_minutes": 15},
			{"user_id": "user-a", "log_date": "2026-08-28", "topic": "PPE check", "duration_minutes": 10},
		},
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	result := resp["data"].(map[string]interface{})
	if result["created_count"] != float64(2) || result["skipped_count"] != float64(1) {
		t.Errorf("Expected 2 created 1 skipped, got %v", result)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/education/daily-logs?user_id=user-a", nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	logs := resp["data"].([]interface{})
	if len(logs) != 2 {
		t.Fatalf("Expected 2 logs, got %d", len(logs))
	}

	id := logs[0].(map[string]interface{})["id"].(string)
	w = testutil.DoRequest(r, "DELETE", "/api/v1/education/daily-logs?id="+id, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from delete, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "GET", "/api/v1/education/daily-logs?user_id=user-a", nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	if logs := resp["data"].([]interface{}); len(logs) != 1 {
		t.Errorf("Expected 1 log after delete, got %d", len(logs))
	}
}

func TestEducationStatistics(t *testing.T) {
	r, db := setupEducationTest(t)

	testutil.SeedCategory(t, db, "cat-008", "General Safety")
	testutil.SeedTestUser(t, db, "user-a", "Alice", "Chemistry Lab")
	testutil.SeedTestUser(t, db, "user-b", "Bob", "Chemistry Lab")
	seedRequirement(t, db, "user-a", "cat-008", entity.RequirementStatusCompleted, time.Now().AddDate(0, 0, 5))
	seedRequirement(t, db, "user-b", "cat-008", entity.RequirementStatusPending, time.Now().AddDate(0, 0, 40))
	nearDue := seedRequirement(t, db, "user-b", "cat-008", entity.RequirementStatusInProgress, time.Now().AddDate(0, 0, 5))

	testutil.DoRequest(r, "POST", "/api/v1/education/daily-logs", map[string]interface{}{
		"logs": []map[string]interface{}{
			{"user_id": "user-a", "log_date": "2026-08-28", "topic": "Spill response", "duration_minutes": 15},
		},
	}, testutil.DefaultTestToken())

	w := testutil.DoRequest(r, "GET", "/api/v1/education/statistics", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	counts := data["requirement_counts"].(map[string]interface{})
	if counts[entity.RequirementStatusCompleted] != float64(1) || counts[entity.RequirementStatusPending] != float64(1) {
		t.Errorf("Unexpected requirement counts: %v", counts)
	}

	// only open requirements due inside the window show up
	upcoming := data["upcoming_due"].([]interface{})
	if len(upcoming) != 1 {
		t.Fatalf("Expected 1 upcoming requirement, got %d", len(upcoming))
	}
	if upcoming[0].(map[string]interface{})["id"] != nearDue.ID {
		t.Errorf("Unexpected upcoming requirement: %v", upcoming[0])
	}
	logStats := data["daily_logs"].(map[string]interface{})
	if logStats["total_minutes"] != float64(15) {
		t.Errorf("Expected 15 total minutes, got %v", logStats["total_minutes"])
	}
}

func seedRequirement(t *testing.T, db *gorm.DB, userID, categoryID, status string, dueDate time.Time) *entity.UserEducationRequirement {
	t.Helper()
	req := &entity.UserEducationRequirement{
		ID:           uuid.New().String(),
		UserID:       userID,
		CategoryID:   categoryID,
		Status:       status,
		RequiredDate: time.Now().AddDate(0, 0, -7),
		DueDate:      dueDate,
	}
	if err := db.Create(req).Error; err != nil {
		t.Fatalf("Failed to seed requirement: %v", err)
	}
	return req
}
