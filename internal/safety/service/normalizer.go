package service

import (
	"encoding/json"
	"time"

	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
)

// Default values filled in by the normalizer when the content bag is missing
// the corresponding field.
const (
	DefaultAuthor     = "Unknown"
	DefaultDepartment = "Unassigned"
)

// Normalize projects a stored row onto the canonical BaseDocument. Pure:
// tolerates arbitrarily missing nested paths, never mutates the row, and
// defaults every field. A row without content.type yields
// entity.DocumentTypeUnspecified rather than an error.
func Normalize(doc *entity.Document) *entity.BaseDocument {
	content := doc.Content
	if content == nil {
		content = entity.JSONB{}
	}

	docType := strVal(content, "type")
	if docType == "" {
		docType = entity.DocumentTypeUnspecified
	}

	base := &entity.BaseDocument{
		ID:           doc.ID,
		Type:         docType,
		Title:        doc.Title,
		Status:       doc.Status,
		Author:       strOr(content, "author", DefaultAuthor),
		AuthorID:     firstNonEmpty(strVal(content, "authorId"), doc.UserID),
		Department:   strOr(content, "department", DefaultDepartment),
		DepartmentID: strVal(content, "departmentId"),
		Metadata:     normalizeMeta(mapVal(content, "metadata"), doc.TemplateID),
		Attachments:  normalizeAttachments(content["attachments"]),
		Signature:    strVal(content, "signature"),
		SignedAt:     timeVal(content, "signedAt"),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}

	if m := mapVal(content, "review"); m != nil {
		var review entity.ReviewInfo
		if decodeSection(m, &review) {
			base.Review = &review
		}
	}
	if m := mapVal(content, "approval"); m != nil {
		var approval entity.ApprovalInfo
		if decodeSection(m, &approval) {
			base.Approval = &approval
		}
	}
	if m := mapVal(content, "permissions"); m != nil {
		var perms entity.Permissions
		if decodeSection(m, &perms) {
			base.Permissions = &perms
		}
	}

	base.Details = decodeDetails(docType, content)

	return base
}

// NormalizeAll normalizes a slice of rows
func NormalizeAll(docs []entity.Document) []entity.BaseDocument {
	out := make([]entity.BaseDocument, 0, len(docs))
	for i := range docs {
		out = append(out, *Normalize(&docs[i]))
	}
	return out
}

// MergeContent produces the new content bag for a partial update: a deep copy
// of the stored bag with the update keys laid over it. Top-level sections
// merge key-wise for "metadata"; every other key replaces wholesale. Fields
// absent from updates always survive untouched.
func MergeContent(existing entity.JSONB, updates map[string]interface{}) entity.JSONB {
	merged := deepCopy(existing)
	if merged == nil {
		merged = entity.JSONB{}
	}
	for key, value := range updates {
		if key == "metadata" {
			merged["metadata"] = mergeSection(mapVal(merged, "metadata"), value)
			continue
		}
		merged[key] = value
	}
	return merged
}

// ContentVersion reads metadata.version from a content bag, defaulting to 1.
func ContentVersion(content entity.JSONB) int {
	meta := mapVal(content, "metadata")
	if meta == nil {
		return 1
	}
	if v := intVal(meta, "version"); v > 0 {
		return v
	}
	return 1
}

// SetContentVersion writes metadata.version into a content bag in place.
func SetContentVersion(content entity.JSONB, version int) {
	meta := mapVal(content, "metadata")
	if meta == nil {
		meta = map[string]interface{}{}
		content["metadata"] = meta
	}
	meta["version"] = version
}

func mergeSection(existing map[string]interface{}, update interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range existing {
		out[k] = v
	}
	if m, ok := update.(map[string]interface{}); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func deepCopy(content entity.JSONB) entity.JSONB {
	if content == nil {
		return nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		// content came from jsonb, so this cannot realistically fail;
		// fall back to a shallow copy
		out := entity.JSONB{}
		for k, v := range content {
			out[k] = v
		}
		return out
	}
	var out entity.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return content
	}
	return out
}

func normalizeMeta(m map[string]interface{}, rowTemplateID string) entity.DocumentMeta {
	meta := entity.DocumentMeta{
		Version: 1,
		Tags:    []string{},
	}
	if m == nil {
		meta.TemplateID = rowTemplateID
		return meta
	}
	if v := intVal(m, "version"); v > 0 {
		meta.Version = v
	}
	meta.IsAiGenerated = boolVal(m, "isAiGenerated")
	meta.TemplateID = firstNonEmpty(strVal(m, "templateId"), rowTemplateID)
	meta.ParentDocumentID = strVal(m, "parentDocumentId")
	meta.Category = strVal(m, "category")
	meta.Period = strVal(m, "period")
	meta.PeriodDate = strVal(m, "periodDate")
	if tags := strSliceVal(m, "tags"); tags != nil {
		meta.Tags = tags
	}
	return meta
}

func normalizeAttachments(v interface{}) []entity.Attachment {
	attachments := []entity.Attachment{}
	list, ok := v.([]interface{})
	if !ok {
		return attachments
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var att entity.Attachment
		if decodeSection(m, &att) {
			attachments = append(attachments, att)
		}
	}
	return attachments
}

// decodeDetails decodes the type-specific fields of the content bag into the
// matching variant. Unknown types (and the unspecified fallback) have no
// details.
func decodeDetails(docType string, content entity.JSONB) entity.DocumentDetails {
	switch docType {
	case entity.DocumentTypeDailyChecklist:
		return decodeVariant(content, &entity.DailyChecklistDetails{})
	case entity.DocumentTypeWeeklyChecklist:
		return decodeVariant(content, &entity.WeeklyChecklistDetails{})
	case entity.DocumentTypeQuarterlyReport:
		return decodeVariant(content, &entity.QuarterlyReportDetails{})
	case entity.DocumentTypeSafetyInspection:
		return decodeVariant(content, &entity.SafetyInspectionDetails{})
	case entity.DocumentTypeEducationLog:
		return decodeVariant(content, &entity.EducationLogDetails{})
	case entity.DocumentTypeRiskAssessment:
		return decodeVariant(content, &entity.RiskAssessmentDetails{})
	case entity.DocumentTypeJHA:
		return decodeVariant(content, &entity.JHADetails{})
	case entity.DocumentTypeChemicalUsage:
		return decodeVariant(content, &entity.ChemicalUsageDetails{})
	case entity.DocumentTypeExperimentPlan:
		return decodeVariant(content, &entity.ExperimentPlanDetails{})
	}
	return nil
}

func decodeVariant(content entity.JSONB, target entity.DocumentDetails) entity.DocumentDetails {
	raw, err := json.Marshal(map[string]interface{}(content))
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil
	}
	return target
}

func decodeSection(m map[string]interface{}, target interface{}) bool {
	raw, err := json.Marshal(m)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, target) == nil
}

// ============================================================
// Safe accessors over the untyped content bag
// ============================================================

func strVal(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func strOr(m map[string]interface{}, key, fallback string) string {
	if s := strVal(m, key); s != "" {
		return s
	}
	return fallback
}

func mapVal(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func intVal(m map[string]interface{}, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

func boolVal(m map[string]interface{}, key string) bool {
	if m == nil {
		return false
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func strSliceVal(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	list, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeVal(m map[string]interface{}, key string) *time.Time {
	s := strVal(m, key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
