package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

type UserHandler struct {
	BaseHandler
	accessService services.AccessService
}

func NewUserHandler(accessService services.AccessService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:   NewBaseHandler(logger),
		accessService: accessService,
	}
}

// Register binds the caller's address to an id, email, password hash and role
// @Summary Register
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "InvalidRole or malformed input"
// @Failure 409 {object} ErrorResponse "AlreadyRegistered or DuplicateId"
// @Router /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Registering user")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.accessService.Register(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login checks an id and password hash. A mismatch is a normal response
// with success=false.
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login attempt")

	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.accessService.Login(c.Request.Context(), getCaller(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCurrentUser returns the caller's own record
// @Router /users/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	user, err := h.accessService.GetCurrentUser(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateEmail replaces the caller's email
// @Router /users/me/email [put]
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	h.LogRequest(c, "Updating email")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.accessService.UpdateProfile(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password hash after checking the old one
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	h.LogRequest(c, "Changing password")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accessService.ChangePassword(c.Request.Context(), caller, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed"})
}

// ListUsers lists registered users in registration order (admin only)
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param role query string false "Filter by role (student, teacher, admin)"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	filters, err := h.parseUserFilters(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	users, total, err := h.accessService.GetAllUsers(c.Request.Context(), caller, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Content:          users,
		TotalElements:    total,
		Size:             filters.Limit,
		NumberOfElements: len(users),
		Last:             int64(filters.Offset+len(users)) >= total,
		Empty:            len(users) == 0,
	})
}

// GetUser returns the public record of one address
// @Router /users/{address} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	address := models.NormalizeAddress(c.Param("address"))

	user, err := h.accessService.GetUser(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, services.ErrNotRegistered) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   services.ErrNotRegistered.Code,
				Message: err.Error(),
				Kind:    string(services.ErrNotRegistered.Kind),
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) parseUserFilters(c *gin.Context) (repositories.UserFilters, error) {
	page := 1
	size := 10

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	filters := repositories.UserFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role, err := models.ParseRole(roleStr)
		if err != nil {
			return filters, services.ErrInvalidRole
		}
		filters.Role = &role
	}

	return filters, nil
}
