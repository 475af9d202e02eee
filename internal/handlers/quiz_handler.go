package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a quiz owned by the calling teacher
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz definition"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating quiz", "title", req.Title)

	quiz, err := h.quizService.Create(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz returns a quiz; students get it without the answer key
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ListMyQuizzes is the teacher dashboard
// @Router /quizzes/mine [get]
func (h *QuizHandler) ListMyQuizzes(c *gin.Context) {
	rows, err := h.quizService.ListMine(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ListAvailable is the student dashboard
// @Router /quizzes/available [get]
func (h *QuizHandler) ListAvailable(c *gin.Context) {
	dashboard, err := h.quizService.Available(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetResults returns attempts and statistics for a quiz
// @Router /quizzes/{id}/results [get]
func (h *QuizHandler) GetResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	results, err := h.quizService.Results(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportResults downloads the results as a spreadsheet
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	data, err := h.exportService.ExportResults(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-%s-results.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DeleteQuiz removes a quiz; its attempts are kept
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz deleted successfully", nil, "quiz_id", id)
}
