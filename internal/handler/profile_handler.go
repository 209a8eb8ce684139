package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradehub/tradehub-api/internal/coordinator"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/repository"
	"github.com/tradehub/tradehub-api/internal/service"
	"github.com/tradehub/tradehub-api/internal/storage"
)

// ProfileHandler serves the authenticated profile endpoints
type ProfileHandler struct {
	profiles    *service.ProfileService
	coordinator *coordinator.Coordinator
	uploader    storage.Uploader
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *service.ProfileService, c *coordinator.Coordinator, uploader storage.Uploader) *ProfileHandler {
	return &ProfileHandler{
		profiles:    profiles,
		coordinator: c,
		uploader:    uploader,
	}
}

type profileResponse struct {
	Profile      *domain.Profile             `json:"profile"`
	Professional *domain.ProfessionalDetails `json:"professional,omitempty"`
}

// Me returns the authenticated user's profile
// @Summary Get own profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} profileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	profile, details, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Profile does not exist",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, profileResponse{Profile: profile, Professional: details})
}

// Update applies the allow-listed profile fields
// @Summary Update own profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile updates"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} dto.ErrorResponse
// @Router /profile/me [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.profiles.Update(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Profile does not exist",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UploadAvatar stores an avatar image and saves its URL on the profile
// @Summary Upload profile avatar
// @Tags profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} dto.ErrorResponse
// @Router /profile/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "avatar file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "failed to read avatar file",
		})
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), file, "avatar_"+userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Error:   "Service unavailable",
				Message: "Avatar uploads are not enabled",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.profiles.SetAvatar(c.Request.Context(), userID, url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// RequestRoleChange records a pending role change request
// @Summary Request a role change
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RoleChangeRequest true "Requested role"
// @Success 202 {object} dto.Result
// @Failure 400 {object} dto.Result
// @Router /profile/me/role-change [post]
func (h *ProfileHandler) RequestRoleChange(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result := h.coordinator.RequestRoleChange(c.Request.Context(), userID, domain.UserType(req.RequestedRole))
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// Delete removes the authenticated user's account data
// @Summary Delete own account
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /profile/me [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	if err := h.profiles.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Profile does not exist",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Account deleted"})
}
