package service

import (
	"testing"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
)

func TestNormalizeDefaults(t *testing.T) {
	doc := &entity.Document{
		ID:        "doc-001",
		Title:     "Bare Row",
		Status:    entity.DocumentStatusDraft,
		UserID:    "user-001",
		Content:   entity.JSONB{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	base := Normalize(doc)

	if base.Type != entity.DocumentTypeUnspecified {
		t.Errorf("Expected type %q, got %q", entity.DocumentTypeUnspecified, base.Type)
	}
	if base.Author != DefaultAuthor {
		t.Errorf("Expected author %q, got %q", DefaultAuthor, base.Author)
	}
	if base.Department != DefaultDepartment {
		t.Errorf("Expected department %q, got %q", DefaultDepartment, base.Department)
	}
	if base.AuthorID != "user-001" {
		t.Errorf("Expected authorId to fall back to row user id, got %q", base.AuthorID)
	}
	if base.Metadata.Version != 1 {
		t.Errorf("Expected metadata version 1, got %d", base.Metadata.Version)
	}
	if base.Metadata.Tags == nil || len(base.Metadata.Tags) != 0 {
		t.Errorf("Expected empty tags slice, got %v", base.Metadata.Tags)
	}
	if base.Attachments == nil || len(base.Attachments) != 0 {
		t.Errorf("Expected empty attachments slice, got %v", base.Attachments)
	}
	if base.Details != nil {
		t.Errorf("Expected no details for unspecified type, got %v", base.Details)
	}
}

func TestNormalizeNilContent(t *testing.T) {
	doc := &entity.Document{
		ID:     "doc-002",
		Title:  "Nil Content",
		Status: entity.DocumentStatusPending,
	}

	base := Normalize(doc)

	if base.Type != entity.DocumentTypeUnspecified {
		t.Errorf("Expected fallback type, got %q", base.Type)
	}
	if base.Metadata.Version != 1 {
		t.Errorf("Expected metadata version 1, got %d", base.Metadata.Version)
	}
}

func TestNormalizeTypedDocument(t *testing.T) {
	doc := &entity.Document{
		ID:     "doc-003",
		Title:  "Morning Round",
		Status: entity.DocumentStatusCompleted,
		UserID: "user-001",
		Content: entity.JSONB{
			"type":       entity.DocumentTypeDailyChecklist,
			"author":     "Kim",
			"authorId":   "user-001",
			"department": "Chemistry Lab",
			"metadata": map[string]interface{}{
				"version":       float64(3),
				"isAiGenerated": true,
				"tags":          []interface{}{"morning", "lab-a"},
				"category":      entity.DocumentCategoryChecklist,
			},
			"checkItems": []interface{}{
				map[string]interface{}{"label": "Gas valves closed", "checked": true},
				map[string]interface{}{"label": "Fume hood running", "checked": false},
			},
		},
	}

	base := Normalize(doc)

	if base.Author != "Kim" {
		t.Errorf("Expected author Kim, got %q", base.Author)
	}
	if base.Metadata.Version != 3 {
		t.Errorf("Expected version 3, got %d", base.Metadata.Version)
	}
	if !base.Metadata.IsAiGenerated {
		t.Error("Expected isAiGenerated true")
	}
	if len(base.Metadata.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", base.Metadata.Tags)
	}

	details, ok := base.Details.(*entity.DailyChecklistDetails)
	if !ok {
		t.Fatalf("Expected DailyChecklistDetails, got %T", base.Details)
	}
	if len(details.CheckItems) != 2 {
		t.Fatalf("Expected 2 check items, got %d", len(details.CheckItems))
	}
	if details.CheckItems[0].Label != "Gas valves closed" || !details.CheckItems[0].Checked {
		t.Errorf("Unexpected first check item: %+v", details.CheckItems[0])
	}
}

func TestNormalizeDoesNotMutateRow(t *testing.T) {
	content := entity.JSONB{
		"type":   entity.DocumentTypeRiskAssessment,
		"author": "Lee",
	}
	doc := &entity.Document{ID: "doc-004", Title: "RA", Status: entity.DocumentStatusDraft, Content: content}

	Normalize(doc)

	if len(content) != 2 {
		t.Errorf("Normalize mutated the content bag: %v", content)
	}
}

func TestMergeContentPreservesUntouchedFields(t *testing.T) {
	existing := entity.JSONB{
		"type":       entity.DocumentTypeJHA,
		"author":     "Park",
		"department": "Mechanics",
		"jobName":    "Press maintenance",
		"metadata": map[string]interface{}{
			"version": 2,
			"tags":    []interface{}{"press"},
		},
	}

	merged := MergeContent(existing, map[string]interface{}{
		"jobName": "Press maintenance (rev)",
	})

	if merged["jobName"] != "Press maintenance (rev)" {
		t.Errorf("Expected updated jobName, got %v", merged["jobName"])
	}
	if merged["author"] != "Park" || merged["department"] != "Mechanics" {
		t.Errorf("Untouched fields were lost: %v", merged)
	}
	if existing["jobName"] != "Press maintenance" {
		t.Error("MergeContent mutated the existing bag")
	}

	// nested sections survive through the copy
	meta, ok := merged["metadata"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected metadata map, got %T", merged["metadata"])
	}
	if _, ok := meta["tags"]; !ok {
		t.Error("metadata.tags did not survive the merge")
	}
}

func TestMergeContentMetadataMergesKeywise(t *testing.T) {
	existing := entity.JSONB{
		"metadata": map[string]interface{}{
			"version":  2,
			"tags":     []interface{}{"a"},
			"category": "report",
		},
	}

	merged := MergeContent(existing, map[string]interface{}{
		"metadata": map[string]interface{}{
			"tags": []interface{}{"a", "b"},
		},
	})

	meta := merged["metadata"].(map[string]interface{})
	if meta["category"] != "report" {
		t.Errorf("Expected untouched metadata key to survive, got %v", meta)
	}
	tags, ok := meta["tags"].([]interface{})
	if !ok || len(tags) != 2 {
		t.Errorf("Expected replaced tags [a b], got %v", meta["tags"])
	}
}

func TestMergeContentSectionsReplaceWholesale(t *testing.T) {
	existing := entity.JSONB{
		"review": map[string]interface{}{
			"status":   "in-review",
			"reviewer": "Choi",
		},
	}

	merged := MergeContent(existing, map[string]interface{}{
		"review": map[string]interface{}{"status": "approved"},
	})

	review := merged["review"].(map[string]interface{})
	if _, ok := review["reviewer"]; ok {
		t.Errorf("Expected review section to be replaced wholesale, got %v", review)
	}
	if review["status"] != "approved" {
		t.Errorf("Expected replaced status, got %v", review["status"])
	}
}

func TestContentVersion(t *testing.T) {
	if v := ContentVersion(entity.JSONB{}); v != 1 {
		t.Errorf("Expected default version 1, got %d", v)
	}
	if v := ContentVersion(nil); v != 1 {
		t.Errorf("Expected default version 1 for nil content, got %d", v)
	}

	content := entity.JSONB{"metadata": map[string]interface{}{"version": float64(7)}}
	if v := ContentVersion(content); v != 7 {
		t.Errorf("Expected version 7, got %d", v)
	}

	SetContentVersion(content, 8)
	if v := ContentVersion(content); v != 8 {
		t.Errorf("Expected version 8 after set, got %d", v)
	}

	// set on a bag without metadata creates the section
	bare := entity.JSONB{}
	SetContentVersion(bare, 2)
	if v := ContentVersion(bare); v != 2 {
		t.Errorf("Expected version 2, got %d", v)
	}
}
