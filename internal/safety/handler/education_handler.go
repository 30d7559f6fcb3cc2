package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
)

// EducationHandler education sub-API: daily logs, records, requirements,
// target rules, statistics and proof upload.
type EducationHandler struct {
	svc    *service.EducationService
	engine *service.RuleEngine
}

// NewEducationHandler creates the education handler
func NewEducationHandler(svc *service.EducationService, engine *service.RuleEngine) *EducationHandler {
	return &EducationHandler{svc: svc, engine: engine}
}

// ============================================================
// Daily logs
// ============================================================

// ListDailyLogs GET /education/daily-logs
func (h *EducationHandler) ListDailyLogs(c *gin.Context) {
	from, to := parseDateRange(c)
	logs, err := h.svc.ListDailyLogs(c.Request.Context(), c.Query("user_id"), from, to)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, logs)
}

// CreateDailyLogs POST /education/daily-logs (bulk)
func (h *EducationHandler) CreateDailyLogs(c *gin.Context) {
	var req struct {
		Logs []service.CreateDailyLogItem `json:"logs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.CreateDailyLogs(c.Request.Context(), req.Logs)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, result)
}

// PatchDailyLogs PATCH /education/daily-logs?action=statistics
func (h *EducationHandler) PatchDailyLogs(c *gin.Context) {
	switch c.Query("action") {
	case "statistics":
		h.Statistics(c)
	default:
		BadRequest(c, "unknown action: "+c.Query("action"))
	}
}

// DeleteDailyLog DELETE /education/daily-logs?id=...
func (h *EducationHandler) DeleteDailyLog(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		BadRequest(c, "id query parameter is required")
		return
	}
	if err := h.svc.DeleteDailyLog(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	SuccessMessage(c, nil, "log entry deleted")
}

// ============================================================
// Records
// ============================================================

// ListRecords GET /education/records
func (h *EducationHandler) ListRecords(c *gin.Context) {
	records, err := h.svc.ListRecords(c.Request.Context(),
		c.Query("user_id"), c.Query("requirement_id"), c.Query("status"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, records)
}

// CreateRecord POST /education/records
func (h *EducationHandler) CreateRecord(c *gin.Context) {
	var req service.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.svc.CreateRecord(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, record)
}

// VerifyRecord PUT /education/records
func (h *EducationHandler) VerifyRecord(c *gin.Context) {
	var req struct {
		ID      string `json:"id" binding:"required"`
		Approve *bool  `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.svc.VerifyRecord(c.Request.Context(), req.ID, GetUserID(c), *req.Approve)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, record)
}

// ============================================================
// Requirements
// ============================================================

// ListRequirements GET /education/requirements
func (h *EducationHandler) ListRequirements(c *gin.Context) {
	reqs, err := h.svc.ListRequirements(c.Request.Context(),
		c.Query("user_id"), c.Query("category_id"), c.Query("status"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, reqs)
}

// CreateRequirements POST /education/requirements (bulk)
func (h *EducationHandler) CreateRequirements(c *gin.Context) {
	var req struct {
		Requirements []service.CreateRequirementItem `json:"requirements" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.CreateRequirements(c.Request.Context(), req.Requirements)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, result)
}

// UpdateRequirement PUT /education/requirements
func (h *EducationHandler) UpdateRequirement(c *gin.Context) {
	var req struct {
		ID     string `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	requirement, err := h.svc.UpdateRequirementStatus(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, requirement)
}

// PatchRequirements PATCH /education/requirements?action=check-overdue
func (h *EducationHandler) PatchRequirements(c *gin.Context) {
	switch c.Query("action") {
	case "check-overdue":
		changed, err := h.engine.CheckOverdue(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		Success(c, gin.H{"marked_overdue": changed})
	default:
		BadRequest(c, "unknown action: "+c.Query("action"))
	}
}

// ============================================================
// Target rules
// ============================================================

// ListTargetRules GET /education/target-rules?category_id=...
func (h *EducationHandler) ListTargetRules(c *gin.Context) {
	categoryID := c.Query("category_id")
	if categoryID == "" {
		BadRequest(c, "category_id query parameter is required")
		return
	}
	rules, err := h.svc.ListTargetRules(c.Request.Context(), categoryID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, rules)
}

// CreateTargetRule POST /education/target-rules
func (h *EducationHandler) CreateTargetRule(c *gin.Context) {
	var req service.CreateTargetRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rule, err := h.svc.CreateTargetRule(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, rule)
}

// UpdateTargetRule PUT /education/target-rules
func (h *EducationHandler) UpdateTargetRule(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
		service.UpdateTargetRuleRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rule, err := h.svc.UpdateTargetRule(c.Request.Context(), req.ID, &req.UpdateTargetRuleRequest)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, rule)
}

// DeleteTargetRule DELETE /education/target-rules?id=...
func (h *EducationHandler) DeleteTargetRule(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		BadRequest(c, "id query parameter is required")
		return
	}
	if err := h.svc.DeleteTargetRule(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	SuccessMessage(c, nil, "target rule deleted")
}

// PatchTargetRules PATCH /education/target-rules?action=apply-rules
func (h *EducationHandler) PatchTargetRules(c *gin.Context) {
	switch c.Query("action") {
	case "apply-rules":
		var req struct {
			CategoryID string `json:"category_id" binding:"required"`
			DryRun     bool   `json:"dry_run"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}
		result, err := h.engine.ApplyRules(c.Request.Context(), req.CategoryID, req.DryRun)
		if err != nil {
			Error(c, err)
			return
		}
		Success(c, result)
	default:
		BadRequest(c, "unknown action: "+c.Query("action"))
	}
}

// ============================================================
// Categories
// ============================================================

// ListCategories GET /education/categories
func (h *EducationHandler) ListCategories(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cats)
}

// CreateCategory POST /education/categories
func (h *EducationHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	cat, err := h.svc.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, cat)
}

// ============================================================
// Statistics and upload
// ============================================================

// Statistics GET /education/statistics
func (h *EducationHandler) Statistics(c *gin.Context) {
	from, to := parseDateRange(c)
	stats, err := h.svc.Statistics(c.Request.Context(), from, to)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, stats)
}

// ExportStatistics GET /education/statistics/export
func (h *EducationHandler) ExportStatistics(c *gin.Context) {
	from, to := parseDateRange(c)
	f, filename, err := h.svc.ExportStatistics(c.Request.Context(), from, to)
	if err != nil {
		Error(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// UploadProof POST /education/upload (multipart: record_id + file)
func (h *EducationHandler) UploadProof(c *gin.Context) {
	recordID := c.PostForm("record_id")
	if recordID == "" {
		BadRequest(c, "record_id form field is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "cannot read file: "+err.Error())
		return
	}
	defer file.Close()

	record, err := h.svc.UploadProof(c.Request.Context(), recordID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, record)
}

// parseDateRange reads optional from/to date query params
func parseDateRange(c *gin.Context) (*time.Time, *time.Time) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = &t
		}
	}
	return from, to
}
