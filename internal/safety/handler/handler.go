package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
)

// apiVersion reported in list metadata
const apiVersion = "1.0"

// Handlers handler collection
type Handlers struct {
	Document   *DocumentHandler
	Typed      *TypedDocumentHandler
	Education  *EducationHandler
	Compliance *ComplianceHandler
}

// NewHandlers creates the handler collection
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Document:   NewDocumentHandler(svc.Document),
		Typed:      NewTypedDocumentHandler(svc.Document),
		Education:  NewEducationHandler(svc.Education, svc.RuleEngine),
		Compliance: NewComplianceHandler(svc.Compliance),
	}
}

// Response common response envelope
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Message  string      `json:"message,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// ErrorBody error payload inside the envelope
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Metadata list response metadata
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
	Version   string `json:"version"`
}

// Pagination list paging info
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListEnvelope list payload with paging, sort and filter echo
type ListEnvelope struct {
	Items      interface{}            `json:"items"`
	Pagination *Pagination            `json:"pagination,omitempty"`
	Sort       map[string]string      `json:"sort,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessMessage 200 with data and a human message
func SuccessMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// Created 201 with data
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// SuccessList 200 with a list payload plus response metadata
func SuccessList(c *gin.Context, list *ListEnvelope) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    list,
		Metadata: &Metadata{
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: GetRequestID(c),
			Version:   apiVersion,
		},
	})
}

// Fail writes an error envelope with an explicit status and code
func Fail(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Error maps a service error onto the envelope
func Error(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
		return
	}
	var rerr *service.ResourceError
	if errors.As(err, &rerr) {
		Fail(c, http.StatusNotFound, "NOT_FOUND", rerr.Error(), nil)
		return
	}
	var cerr *service.ConflictError
	if errors.As(err, &cerr) {
		Fail(c, http.StatusConflict, "VERSION_CONFLICT", cerr.Error(), gin.H{
			"expected_version": cerr.Expected,
			"current_version":  cerr.Actual,
		})
		return
	}
	var aerr *service.AuthorizationError
	if errors.As(err, &aerr) {
		Fail(c, http.StatusForbidden, "FORBIDDEN", aerr.Error(), nil)
		return
	}
	Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

// BadRequest 400 with a message
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// GetUserID returns the authenticated user id from the request context
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetRequestID returns the request id set by the middleware
func GetRequestID(c *gin.Context) string {
	requestID, _ := c.Get("request_id")
	if id, ok := requestID.(string); ok {
		return id
	}
	return ""
}

// GetPagination parses page/limit query params with sane bounds
func GetPagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// firstQuery returns the first non-empty value among aliased query params
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}

// splitCSV splits a comma-separated query value, dropping empties
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
