package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// SubmitAttempt scores and stores a finished quiz
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.SubmitAttemptRequest true "Selections"
// @Success 201 {object} models.Attempt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "quiz_id", req.QuizID)

	attempt, err := h.attemptService.Submit(c.Request.Context(), principalFrom(c), req.QuizID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// @Router /attempts/mine [get]
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	attempts, err := h.attemptService.ListMine(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}
