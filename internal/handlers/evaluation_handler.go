package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

type EvaluationHandler struct {
	BaseHandler
	evaluationService services.EvaluationService
}

func NewEvaluationHandler(evaluationService services.EvaluationService, logger utils.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		BaseHandler:       NewBaseHandler(logger),
		evaluationService: evaluationService,
	}
}

// SubmitEvaluation records the calling student's one evaluation of a course
// @Summary Submit evaluation
// @Tags evaluations
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body services.SubmitEvaluationRequest true "Evaluation"
// @Success 201 {object} models.Evaluation
// @Failure 400 {object} ErrorResponse "InvalidScore"
// @Failure 403 {object} ErrorResponse "NotStudent"
// @Failure 404 {object} ErrorResponse "CourseNotFound"
// @Failure 409 {object} ErrorResponse "NotEnrolled or AlreadyEvaluated"
// @Router /courses/{id}/evaluations [post]
func (h *EvaluationHandler) SubmitEvaluation(c *gin.Context) {
	h.LogRequest(c, "Submitting evaluation")

	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	var req services.SubmitEvaluationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	evaluation, err := h.evaluationService.SubmitEvaluation(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, evaluation)
}

// GetCourseEvaluations lists a course's evaluations (course teacher or admin)
// @Router /courses/{id}/evaluations [get]
func (h *EvaluationHandler) GetCourseEvaluations(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	id, ok := h.parseCourseID(c)
	if !ok {
		return
	}

	evaluations, err := h.evaluationService.GetCourseEvaluations(c.Request.Context(), caller, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, evaluations)
}

// GetStudentEvaluations lists the calling student's evaluations
// @Router /students/me/evaluations [get]
func (h *EvaluationHandler) GetStudentEvaluations(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	evaluations, err := h.evaluationService.GetStudentEvaluations(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, evaluations)
}
