package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

const maxImportSize = 8 << 20

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService   services.EnrollmentService
	importExportService services.ImportExportService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, importExportService services.ImportExportService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:         NewBaseHandler(logger),
		enrollmentService:   enrollmentService,
		importExportService: importExportService,
	}
}

// MarkStudent records that a student has taken a course (admin only)
// @Summary Mark student course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body services.MarkStudentRequest true "Student"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "CourseNotFound"
// @Router /courses/{id}/students [post]
func (h *EnrollmentHandler) MarkStudent(c *gin.Context) {
	h.LogRequest(c, "Marking student course")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	var req services.MarkStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.enrollmentService.MarkStudentCourse(c.Request.Context(), caller, id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Student marked"})
}

// GetCourseStudents returns the roster in marking order
// @Router /courses/{id}/students [get]
func (h *EnrollmentHandler) GetCourseStudents(c *gin.Context) {
	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	roster, err := h.enrollmentService.GetCourseStudents(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

// GetStudentCourses returns the courses the calling student has taken
// @Router /students/me/courses [get]
func (h *EnrollmentHandler) GetStudentCourses(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	courses, err := h.enrollmentService.GetStudentTakenCourses(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// ImportEnrollments marks every row of an uploaded .xlsx sheet, or none (admin only)
// @Accept multipart/form-data
// @Param file formData file true "Sheet with course_id and student_address columns"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} ErrorResponse "InvalidImport with per-row details"
// @Router /enrollments/import [post]
func (h *EnrollmentHandler) ImportEnrollments(c *gin.Context) {
	h.LogRequest(c, "Importing enrollments")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.ErrInvalidImport.Code,
			Message: "Missing file upload",
			Kind:    string(services.KindValidation),
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "InternalError",
			Message: "Failed to read upload",
		})
		return
	}
	defer file.Close()

	result, err := h.importExportService.ImportEnrollments(c.Request.Context(), caller, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
