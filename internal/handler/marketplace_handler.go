package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/repository"
	"github.com/tradehub/tradehub-api/internal/service"
)

// MarketplaceHandler serves the job, bid, message and complaint endpoints
type MarketplaceHandler struct {
	marketplace *service.MarketplaceService
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(marketplace *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplace: marketplace}
}

func (h *MarketplaceHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: "Resource does not exist",
		})
	case errors.Is(err, service.ErrWrongRole):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrNotJobOwner), errors.Is(err, service.ErrNotThreadUser):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrJobNotOpen),
		errors.Is(err, service.ErrBidNotPending),
		errors.Is(err, service.ErrInvalidJobTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrDuplicateBid):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: "You have already bid on this job",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}

// CreateJob posts a new job for the authenticated homeowner
// @Summary Post a job
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateJobRequest true "Job details"
// @Success 201 {object} domain.Job
// @Failure 400 {object} dto.ErrorResponse
// @Router /jobs [post]
func (h *MarketplaceHandler) CreateJob(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	job, err := h.marketplace.PostJob(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs returns the caller's jobs, or open jobs when browsing
// @Summary List jobs
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param scope query string false "own or open" default(own)
// @Param trade query string false "Trade filter for open jobs"
// @Success 200 {array} domain.Job
// @Router /jobs [get]
func (h *MarketplaceHandler) ListJobs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var (
		jobs []*domain.Job
		err  error
	)
	if c.DefaultQuery("scope", "own") == "open" {
		jobs, err = h.marketplace.BrowseOpenJobs(c.Request.Context(), c.Query("trade"))
	} else {
		jobs, err = h.marketplace.ListOwnJobs(c.Request.Context(), userID)
	}
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// UpdateJobStatus moves a job through its lifecycle
// @Summary Update job status
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body dto.UpdateJobStatusRequest true "New status"
// @Success 200 {object} domain.Job
// @Failure 403 {object} dto.ErrorResponse
// @Router /jobs/{id}/status [patch]
func (h *MarketplaceHandler) UpdateJobStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	job, err := h.marketplace.UpdateJobStatus(c.Request.Context(), userID, c.Param("id"), domain.JobStatus(req.Status))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// PlaceBid records a bid on an open job
// @Summary Bid on a job
// @Tags bids
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body dto.CreateBidRequest true "Bid details"
// @Success 201 {object} domain.Bid
// @Failure 409 {object} dto.ErrorResponse
// @Router /jobs/{id}/bids [post]
func (h *MarketplaceHandler) PlaceBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	bid, err := h.marketplace.PlaceBid(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// ListJobBids returns the bids on the caller's job
// @Summary List bids on a job
// @Tags bids
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.Bid
// @Failure 403 {object} dto.ErrorResponse
// @Router /jobs/{id}/bids [get]
func (h *MarketplaceHandler) ListJobBids(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	bids, err := h.marketplace.ListJobBids(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}

// ListOwnBids returns the authenticated professional's bids
// @Summary List own bids
// @Tags bids
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Bid
// @Router /bids [get]
func (h *MarketplaceHandler) ListOwnBids(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	bids, err := h.marketplace.ListOwnBids(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bids)
}

// AcceptBid accepts a bid and assigns the job
// @Summary Accept a bid
// @Tags bids
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Param bidId path string true "Bid ID"
// @Success 200 {object} domain.Bid
// @Failure 409 {object} dto.ErrorResponse
// @Router /jobs/{id}/bids/{bidId}/accept [post]
func (h *MarketplaceHandler) AcceptBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	bid, err := h.marketplace.AcceptBid(c.Request.Context(), userID, c.Param("id"), c.Param("bidId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

// SendMessage posts a message into a job thread
// @Summary Send a message
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 403 {object} dto.ErrorResponse
// @Router /jobs/{id}/messages [post]
func (h *MarketplaceHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	msg, err := h.marketplace.SendMessage(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ReadThread returns a job's message thread
// @Summary Read a job thread
// @Tags messages
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.Message
// @Router /jobs/{id}/messages [get]
func (h *MarketplaceHandler) ReadThread(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	messages, err := h.marketplace.ReadThread(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// FileComplaint records a complaint against another user
// @Summary File a complaint
// @Tags complaints
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateComplaintRequest true "Complaint"
// @Success 201 {object} domain.Complaint
// @Failure 400 {object} dto.ErrorResponse
// @Router /complaints [post]
func (h *MarketplaceHandler) FileComplaint(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	complaint, err := h.marketplace.FileComplaint(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// ListOwnComplaints returns the complaints the caller has filed
// @Summary List own complaints
// @Tags complaints
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Complaint
// @Router /complaints [get]
func (h *MarketplaceHandler) ListOwnComplaints(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	complaints, err := h.marketplace.ListOwnComplaints(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaints)
}

// Dashboard returns role-specific landing counts for the caller
// @Summary Get dashboard counts
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param trade query string false "Trade filter for available jobs"
// @Success 200 {object} dto.HomeownerDashboard
// @Router /dashboard [get]
func (h *MarketplaceHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
		return
	}

	profile, err := h.marketplace.Viewer(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if profile.UserType == domain.UserTypeProfessional {
		dash, err := h.marketplace.ProfessionalDashboard(c.Request.Context(), userID, c.Query("trade"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dash)
		return
	}

	dash, err := h.marketplace.HomeownerDashboard(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
