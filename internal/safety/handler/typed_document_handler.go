package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
)

// TypedDocumentHandler period-scoped convenience wrappers over the unified
// document service. Each wrapper pins the document type and stamps the
// period into the content metadata.
type TypedDocumentHandler struct {
	svc *service.DocumentService
}

// NewTypedDocumentHandler creates the typed wrapper handler
func NewTypedDocumentHandler(svc *service.DocumentService) *TypedDocumentHandler {
	return &TypedDocumentHandler{svc: svc}
}

// periodTypes maps the period route segment onto the unified document type.
// Monthly is the chemical usage report, the only type on a 30 day cadence.
var periodTypes = map[string]string{
	"daily":     entity.DocumentTypeDailyChecklist,
	"weekly":    entity.DocumentTypeWeeklyChecklist,
	"monthly":   entity.DocumentTypeChemicalUsage,
	"quarterly": entity.DocumentTypeQuarterlyReport,
}

// typedCreateRequest typed create payload. The route supplies the type, so
// unlike the generic create the body does not carry one.
type typedCreateRequest struct {
	Title         string                 `json:"title" binding:"required"`
	Department    string                 `json:"department" binding:"required"`
	DepartmentID  string                 `json:"department_id"`
	Description   string                 `json:"description"`
	IsDraft       bool                   `json:"is_draft"`
	IsAiGenerated bool                   `json:"is_ai_generated"`
	TemplateID    string                 `json:"template_id"`
	Tags          []string               `json:"tags"`
	Data          map[string]interface{} `json:"data"`
}

// typedUpdateRequest typed update payload; the target id travels in the body
type typedUpdateRequest struct {
	ID string `json:"id" binding:"required"`
	service.UpdateDocumentRequest
}

// List GET /documents/{period}
func (h *TypedDocumentHandler) List(period string) gin.HandlerFunc {
	docType := periodTypes[period]
	return func(c *gin.Context) {
		filter := parseDocumentFilter(c)
		filter.Types = []string{docType}

		result, err := h.svc.List(c.Request.Context(), filter)
		if err != nil {
			Error(c, err)
			return
		}
		SuccessList(c, &ListEnvelope{
			Items: result.Documents,
			Pagination: &Pagination{
				Page:       result.CurrentPage,
				Limit:      result.Limit,
				Total:      result.TotalCount,
				TotalPages: result.TotalPages,
			},
			Filters: map[string]interface{}{"type": docType},
		})
	}
}

// Create POST /documents/{period}
func (h *TypedDocumentHandler) Create(period string) gin.HandlerFunc {
	docType := periodTypes[period]
	return func(c *gin.Context) {
		var req typedCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}

		doc, err := h.svc.Create(c.Request.Context(), GetUserID(c), &service.CreateDocumentRequest{
			Type:          docType,
			Title:         req.Title,
			Department:    req.Department,
			DepartmentID:  req.DepartmentID,
			Description:   req.Description,
			IsDraft:       req.IsDraft,
			IsAiGenerated: req.IsAiGenerated,
			TemplateID:    req.TemplateID,
			Tags:          req.Tags,
			Period:        period,
			Data:          req.Data,
		})
		if err != nil {
			Error(c, err)
			return
		}
		Created(c, doc)
	}
}

// Update PUT /documents/{period}
func (h *TypedDocumentHandler) Update(period string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req typedUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}

		doc, err := h.svc.Update(c.Request.Context(), GetUserID(c), req.ID, &req.UpdateDocumentRequest)
		if err != nil {
			Error(c, err)
			return
		}
		Success(c, doc)
	}
}

// Delete DELETE /documents/{period}?id=...
func (h *TypedDocumentHandler) Delete(period string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			BadRequest(c, "id query parameter is required")
			return
		}
		if err := h.svc.Delete(c.Request.Context(), GetUserID(c), id); err != nil {
			Error(c, err)
			return
		}
		SuccessMessage(c, nil, "document archived")
	}
}
