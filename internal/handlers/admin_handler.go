package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	BaseHandler
	userService      services.UserService
	analyticsService services.AnalyticsService
}

func NewAdminHandler(userService services.UserService, analyticsService services.AnalyticsService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:      NewBaseHandler(logger),
		userService:      userService,
		analyticsService: analyticsService,
	}
}

// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c *gin.Context) {
	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListStudents supports ?grade=all|6..12 and ?search=
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	var filter services.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	students, err := h.userService.Students(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// @Router /admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := h.userService.DeleteStudent(c.Request.Context(), principalFrom(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Student deleted successfully", nil, "student_id", id)
}

// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.userService.Teachers(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// @Router /admin/teachers [post]
func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	var req services.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}

	teacher, err := h.userService.CreateTeacher(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, teacher)
}

// @Router /admin/teachers/{id} [delete]
func (h *AdminHandler) DeleteTeacher(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := h.userService.DeleteTeacher(c.Request.Context(), principalFrom(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Teacher deleted successfully", nil, "teacher_id", id)
}
