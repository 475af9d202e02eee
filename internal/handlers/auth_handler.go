package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	resolver    *identity.Resolver
	google      identity.TokenVerifier
	userService services.UserService
}

func NewAuthHandler(resolver *identity.Resolver, google identity.TokenVerifier, userService services.UserService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		resolver:    resolver,
		google:      google,
		userService: userService,
	}
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleSignIn exchanges a Google ID token for the caller's profile. New
// accounts start as students with an incomplete profile.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if !bindJSON(c, &req) {
		return
	}

	if h.google == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Google sign-in is not enabled", Code: "NOT_FOUND"})
		return
	}

	principal, err := h.resolver.Authenticate(c.Request.Context(), h.google, req.IDToken)
	if err != nil {
		respondAuthError(c, h.logger, err)
		return
	}

	h.LogInfo(c, "Google sign-in", "user_id", principal.UserID, "profile_complete", principal.ProfileComplete())
	c.JSON(http.StatusOK, principal)
}

// Me returns the resolved caller.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, principalFrom(c))
}

func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	var req services.CompleteProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CompleteProfile(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
