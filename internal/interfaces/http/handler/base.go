package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/infrastructure/logger"
	"github.com/travelops/backoffice/internal/interfaces/http/dto"
	"github.com/travelops/backoffice/internal/interfaces/http/middleware"
)

var (
	errNoTenant = errors.New("tenant not found in context")
	errNoUser   = errors.New("user ID not found in context")
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDKey)
}

// getTenantID returns the tenant resolved by the tenant middleware. There
// is no fallback: a request without an authenticated tenant cannot reach
// ledger data.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetTenantID(c); ok {
		return id, nil
	}
	return uuid.Nil, errNoTenant
}

func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errNoUser
	}
	return uuid.Parse(raw)
}

// principal returns the tenant and user of an authenticated request, writing
// a 401 and returning ok=false when either is missing.
func (h *BaseHandler) principal(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User context required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// tenant returns the tenant of an authenticated request, writing a 401 when
// it is missing.
func (h *BaseHandler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return uuid.Nil, false
	}
	return tenantID, true
}

// pathID parses a UUID path parameter, writing a 400 when it is malformed
func (h *BaseHandler) pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body into req, answering 400 on malformed
// JSON or failed validation.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindQuery decodes query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body too large")
	case isValidationError(err):
		middleware.HandleValidationError(c, err)
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
	}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize, totalPages int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize, totalPages))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	middleware.SetErrorCode(c, code)
	c.AbortWithStatusJSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code and message; anything else is logged and answered with a
// generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, code, message := dto.ResolveError(err)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed",
			zap.String("code", code),
			zap.Error(err),
		)
	}
	h.Error(c, status, code, message)
}
