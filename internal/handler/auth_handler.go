package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsuite/cbt-backend/internal/middleware"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/service"
	"github.com/schoolsuite/cbt-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GuestLogin godoc
// POST /api/v1/auth/guest/login
// Validates the shared access code and issues a practice token.
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	var req model.GuestLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, studentID, err := h.authService.GuestLogin(c.Request.Context(), req.StudentName, req.AccessCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAccessCode) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidAccessCode)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"student": gin.H{
			"id":   studentID,
			"name": req.StudentName,
		},
	})
}

// Me godoc
// GET /api/v1/auth/guest/me
// Returns the identity baked into the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student": gin.H{
			"id":   claims.StudentID,
			"name": claims.StudentName,
		},
	})
}

// Logout godoc
// POST /api/v1/auth/guest/logout
// Invalidates the active login for this identity.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.StudentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
