package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradehub/tradehub-api/internal/coordinator"
	"github.com/tradehub/tradehub-api/internal/dto"
)

// AuthHandler exposes the coordinator's auth flows over HTTP
type AuthHandler struct {
	coordinator *coordinator.Coordinator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(c *coordinator.Coordinator) *AuthHandler {
	return &AuthHandler{coordinator: c}
}

// SignUp handles account registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Sign-up request"
// @Success 201 {object} dto.Result
// @Failure 400 {object} dto.Result
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result := h.coordinator.SignUp(c.Request.Context(), &req)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SignIn handles password login
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Sign-in request"
// @Success 200 {object} dto.Result
// @Failure 401 {object} dto.Result
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result := h.coordinator.SignIn(c.Request.Context(), req.Email, req.Password)
	if !result.Success {
		c.JSON(http.StatusUnauthorized, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// OTP handles passwordless login requests
// @Summary Request a magic login link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.OTPRequest true "OTP request"
// @Success 200 {object} dto.Result
// @Failure 400 {object} dto.Result
// @Router /auth/otp [post]
func (h *AuthHandler) OTP(c *gin.Context) {
	var req dto.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result := h.coordinator.LoginWithOTP(c.Request.Context(), req.Email, req.UserType)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SignOut handles logout
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.coordinator.SignOut(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Signed out successfully",
	})
}
