package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// AddCourse creates a course (admin only)
// @Summary Add course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body services.CourseRequest true "Course"
// @Success 201 {object} models.CourseCreatedResponse
// @Failure 400 {object} ErrorResponse "InvalidCredits or InvalidTeacher"
// @Failure 403 {object} ErrorResponse "Unauthorized"
// @Router /courses [post]
func (h *CourseHandler) AddCourse(c *gin.Context) {
	h.LogRequest(c, "Adding course")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.CourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	created, err := h.courseService.AddCourse(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateCourse replaces name, credits and teacher (admin only)
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	h.LogRequest(c, "Updating course")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	var req services.CourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// SetCourseActive toggles whether a course is offered (admin only)
// @Router /courses/{id}/active [put]
func (h *CourseHandler) SetCourseActive(c *gin.Context) {
	h.LogRequest(c, "Setting course active flag")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	var req services.SetCourseActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.ErrInvalidInput.Code,
			Message: "active is required",
			Kind:    string(services.KindValidation),
		})
		return
	}

	course, err := h.courseService.SetCourseActive(c.Request.Context(), caller, id, *req.Active)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses returns every course in id order
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.GetAllCourses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourse returns one course
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	course, err := h.courseService.GetCourseDetail(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetTeacherCourses returns the courses taught by the caller
// @Router /teachers/me/courses [get]
func (h *CourseHandler) GetTeacherCourses(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	courses, err := h.courseService.GetTeacherCourses(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}
