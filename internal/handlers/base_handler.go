package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.GetLogger(c, h.logger).Info(msg,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"caller", getCaller(c))
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.GetLogger(c, h.logger).Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"caller", getCaller(c))
}

// requireCaller writes 401 and returns false when the request has no caller
func (h *BaseHandler) requireCaller(c *gin.Context) (models.Address, bool) {
	caller := getCaller(c)
	if caller.IsZero() {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	return caller, true
}

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.ErrInvalidInput.Code,
			Message: "Invalid request payload",
			Kind:    string(services.KindValidation),
			Details: err.Error(),
		})
		return false
	}
	return true
}

// parseCourseID reads the :id path parameter. Ids that do not parse cannot
// name an existing course.
func (h *BaseHandler) parseCourseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   services.ErrCourseNotFound.Code,
			Message: "Invalid course id",
			Kind:    string(services.KindValidation),
			Details: err.Error(),
		})
		return 0, false
	}
	return uint(id), true
}

// handleServiceError maps a service failure to its HTTP status
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	registryErr, ok := services.AsRegistryError(err)
	if !ok {
		h.LogError(c, err, "Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "InternalError",
			Message: "Internal server error",
		})
		return
	}

	resp := ErrorResponse{
		Error:   registryErr.Code,
		Message: err.Error(),
		Kind:    string(registryErr.Kind),
	}

	var validationErrors validator.ValidationErrors
	var rowErrors services.ImportRowErrors
	switch {
	case errors.As(err, &validationErrors):
		resp.Details = validationErrors
	case errors.As(err, &rowErrors):
		resp.Details = rowErrors
	}

	c.JSON(statusFor(registryErr), resp)
}

func statusFor(err *services.RegistryError) int {
	if err == services.ErrCourseNotFound {
		return http.StatusNotFound
	}
	switch err.Kind {
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindState:
		return http.StatusConflict
	case services.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
