package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
)

// DocumentHandler unified document endpoints
type DocumentHandler struct {
	svc *service.DocumentService
}

// NewDocumentHandler creates the document handler
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// List GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	filter := parseDocumentFilter(c)

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
		Sort: map[string]string{
			"by":    c.DefaultQuery("sortBy", "createdAt"),
			"order": c.DefaultQuery("sortOrder", "desc"),
		},
		Filters: echoFilters(c),
	})
}

// Get GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, doc)
}

// Create POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	doc, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, doc)
}

// Update PUT /documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	doc, err := h.svc.Update(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, doc)
}

// Delete DELETE /documents/:id (soft delete, archives the document)
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	SuccessMessage(c, nil, "document archived")
}

// History GET /documents/:id/history
func (h *DocumentHandler) History(c *gin.Context) {
	entries, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, entries)
}

// parseDocumentFilter turns the list query params into a repository filter
func parseDocumentFilter(c *gin.Context) repository.DocumentFilter {
	page, limit := GetPagination(c)
	filter := repository.DocumentFilter{
		Query:       c.Query("query"),
		Types:       splitCSV(firstQuery(c, "types", "type")),
		Statuses:    splitCSV(firstQuery(c, "statuses", "status")),
		Departments: splitCSV(firstQuery(c, "departments", "department")),
		Author:      c.Query("author"),
		Category:    c.Query("category"),
		Tags:        splitCSV(c.Query("tags")),
		Page:        page,
		Limit:       limit,
		SortBy:      c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:   c.DefaultQuery("sortOrder", "desc"),
	}

	if raw := c.Query("isAiGenerated"); raw != "" {
		v := raw == "true"
		filter.IsAiGenerated = &v
	}
	if raw := c.Query("startDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.EndDate = &t
		}
	}
	return filter
}

// echoFilters reflects the applied filters back into the list envelope
func echoFilters(c *gin.Context) map[string]interface{} {
	filters := map[string]interface{}{}
	for _, key := range []string{"query", "types", "type", "statuses", "status", "departments", "department", "author", "category", "tags", "isAiGenerated", "startDate", "endDate"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}
