package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
)

// ComplianceHandler law browsing and compliance status endpoints
type ComplianceHandler struct {
	svc *service.ComplianceService
}

// NewComplianceHandler creates the compliance handler
func NewComplianceHandler(svc *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{svc: svc}
}

// ListLaws GET /laws
func (h *ComplianceHandler) ListLaws(c *gin.Context) {
	Success(c, h.svc.ListLaws())
}

// GetLaw GET /laws/:id
func (h *ComplianceHandler) GetLaw(c *gin.Context) {
	id := c.Param("id")
	articles := h.svc.LawsByID(id)
	if len(articles) == 0 {
		Error(c, &service.ResourceError{Resource: "law", ID: id})
		return
	}
	Success(c, articles)
}

// Status GET /compliance/status?type=...
func (h *ComplianceHandler) Status(c *gin.Context) {
	docType := c.Query("type")
	if docType == "" {
		BadRequest(c, "type query parameter is required")
		return
	}
	if !entity.IsValidDocumentType(docType) {
		BadRequest(c, "unknown document type: "+docType)
		return
	}

	status, err := h.svc.CheckDocumentCompliance(c.Request.Context(), docType)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, status)
}

// Overview GET /compliance/overview
func (h *ComplianceHandler) Overview(c *gin.Context) {
	overview, err := h.svc.CalculateOverallCompliance(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, overview)
}
