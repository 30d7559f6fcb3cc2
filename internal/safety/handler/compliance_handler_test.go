package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/testutil"
	"gorm.io/gorm"
)

func setupComplianceTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewComplianceService(repos.Document, nil)
	docSvc := service.NewDocumentService(repos.Document, repos.History, repos.User, nil)
	h := NewComplianceHandler(svc)
	dh := NewDocumentHandler(docSvc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/laws", h.ListLaws)
	api.GET("/laws/:id", h.GetLaw)
	api.GET("/compliance/status", h.Status)
	api.GET("/compliance/overview", h.Overview)
	api.POST("/documents", dh.Create)
	api.PUT("/documents/:id", dh.Update)

	testutil.SeedTestUser(t, db, "test-user-001", "Test Admin", "Safety Team")
	return r, db
}

func TestListLaws(t *testing.T) {
	r, _ := setupComplianceTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/laws", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	laws := resp["data"].([]interface{})
	if len(laws) == 0 {
		t.Fatal("Expected a non-empty law table")
	}
}

func TestGetLaw(t *testing.T) {
	r, _ := setupComplianceTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/laws/lsa", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	articles := resp["data"].([]interface{})
	for _, a := range articles {
		if a.(map[string]interface{})["law_id"] != "lsa" {
			t.Errorf("Expected only lsa articles, got %v", a)
		}
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/laws/no-such-law", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown law, got %d", w.Code)
	}
}

func TestComplianceStatusValidation(t *testing.T) {
	r, _ := setupComplianceTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/compliance/status", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without type, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/compliance/status?type=bogus", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown type, got %d", w.Code)
	}
}

func TestComplianceStatusDerivation(t *testing.T) {
	r, _ := setupComplianceTest(t)

	// nothing on file: every mapped requirement is not-started
	w := testutil.DoRequest(r, "GET", "/api/v1/compliance/status?type="+entity.DocumentTypeDailyChecklist, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	status := resp["data"].(map[string]interface{})
	if status["status"] != service.CompliancePartial {
		t.Errorf("Expected partial with nothing on file, got %v", status["status"])
	}
	if status["compliance_rate"] != float64(0) {
		t.Errorf("Expected rate 0, got %v", status["compliance_rate"])
	}

	// a type with no legal mapping resolves to unknown
	w = testutil.DoRequest(r, "GET", "/api/v1/compliance/status?type="+entity.DocumentTypeExperimentPlan, nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	status = resp["data"].(map[string]interface{})
	if status["status"] != service.ComplianceUnknown {
		t.Errorf("Expected unknown for unmapped type, got %v", status["status"])
	}

	// a freshly completed checklist satisfies its daily requirement
	w = testutil.DoRequest(r, "POST", "/api/v1/documents", map[string]interface{}{
		"type":       entity.DocumentTypeDailyChecklist,
		"title":      "Morning Walkthrough",
		"department": "Chemistry Lab",
	}, testutil.DefaultTestToken())
	doc := testutil.ParseResponse(w)["data"].(map[string]interface{})
	w = testutil.DoRequest(r, "PUT", "/api/v1/documents/"+doc["id"].(string), map[string]interface{}{
		"updates": map[string]interface{}{"status": entity.DocumentStatusCompleted},
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to complete document: %d %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/compliance/status?type="+entity.DocumentTypeDailyChecklist, nil, testutil.DefaultTestToken())
	resp = testutil.ParseResponse(w)
	status = resp["data"].(map[string]interface{})
	if status["status"] != service.ComplianceCompliant {
		t.Errorf("Expected compliant after completion, got %v", status["status"])
	}
	details := status["details"].([]interface{})
	for _, d := range details {
		detail := d.(map[string]interface{})
		if detail["status"] != service.RequirementCompleted {
			t.Errorf("Expected every requirement completed, got %v", detail)
		}
	}
}

func TestComplianceOverview(t *testing.T) {
	r, _ := setupComplianceTest(t)

	w := testutil.DoRequest(r, "GET", "/api/v1/compliance/overview", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	overview := resp["data"].(map[string]interface{})

	if overview["total_documents"] != float64(len(entity.AllDocumentTypes())) {
		t.Errorf("Expected one bucket per document type, got %v", overview["total_documents"])
	}
	// empty database: nothing compliant, one unmapped type unknown
	if overview["compliant_documents"] != float64(0) {
		t.Errorf("Expected 0 compliant, got %v", overview["compliant_documents"])
	}
	if overview["unknown_documents"] != float64(1) {
		t.Errorf("Expected 1 unknown, got %v", overview["unknown_documents"])
	}
	if overview["status"] != service.OverallCritical {
		t.Errorf("Expected critical overall, got %v", overview["status"])
	}
	if _, ok := overview["upcoming_deadlines"].([]interface{}); !ok {
		t.Errorf("Expected upcoming_deadlines list, got %v", overview["upcoming_deadlines"])
	}
}
