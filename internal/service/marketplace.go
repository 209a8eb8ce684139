package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/repository"
	"go.uber.org/zap"
)

// Marketplace errors surfaced to handlers
var (
	ErrNotJobOwner          = errors.New("job belongs to another homeowner")
	ErrJobNotOpen           = errors.New("job is not open for bids")
	ErrWrongRole            = errors.New("operation not allowed for this role")
	ErrNotThreadUser        = errors.New("user is not part of this job thread")
	ErrBidNotPending        = errors.New("bid has already been decided")
	ErrInvalidJobTransition = errors.New("job status transition not allowed")
)

// allowedJobTransitions is the job lifecycle a homeowner may drive directly.
// Moving to assigned happens only through AcceptBid; completed and cancelled
// are terminal.
var allowedJobTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobOpen:     {domain.JobCancelled},
	domain.JobAssigned: {domain.JobCompleted, domain.JobCancelled},
}

func jobTransitionAllowed(from, to domain.JobStatus) bool {
	for _, s := range allowedJobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// MarketplaceService implements the job/bid/message/complaint flows between
// homeowners and professionals
type MarketplaceService struct {
	profiles   repository.ProfileRepository
	jobs       repository.JobRepository
	bids       repository.BidRepository
	messages   repository.MessageRepository
	complaints repository.ComplaintRepository
	logger     *zap.Logger
}

// NewMarketplaceService creates a new marketplace service
func NewMarketplaceService(
	profiles repository.ProfileRepository,
	jobs repository.JobRepository,
	bids repository.BidRepository,
	messages repository.MessageRepository,
	complaints repository.ComplaintRepository,
	logger *zap.Logger,
) *MarketplaceService {
	return &MarketplaceService{
		profiles:   profiles,
		jobs:       jobs,
		bids:       bids,
		messages:   messages,
		complaints: complaints,
		logger:     logger,
	}
}

func (s *MarketplaceService) requireRole(ctx context.Context, userID string, role domain.UserType) (*domain.Profile, error) {
	profile, err := s.profiles.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.UserType != role {
		return nil, ErrWrongRole
	}
	return profile, nil
}

// Viewer returns the caller's profile so handlers can branch on role
func (s *MarketplaceService) Viewer(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.FetchByID(ctx, userID)
}

// PostJob creates an open job for a homeowner
func (s *MarketplaceService) PostJob(ctx context.Context, homeownerID string, req *dto.CreateJobRequest) (*domain.Job, error) {
	if _, err := s.requireRole(ctx, homeownerID, domain.UserTypeHomeowner); err != nil {
		return nil, err
	}

	job := &domain.Job{
		HomeownerID: homeownerID,
		Title:       req.Title,
		Description: req.Description,
		Trade:       req.Trade,
		Postcode:    req.Postcode,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Status:      domain.JobOpen,
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("job posted",
		zap.String("job_id", job.ID),
		zap.String("homeowner_id", homeownerID),
		zap.String("trade", job.Trade),
	)
	return job, nil
}

// ListOwnJobs returns a homeowner's jobs
func (s *MarketplaceService) ListOwnJobs(ctx context.Context, homeownerID string) ([]*domain.Job, error) {
	return s.jobs.ListByHomeowner(ctx, homeownerID)
}

// BrowseOpenJobs returns open jobs for professionals, optionally filtered by
// trade
func (s *MarketplaceService) BrowseOpenJobs(ctx context.Context, trade string) ([]*domain.Job, error) {
	return s.jobs.ListOpen(ctx, trade)
}

// UpdateJobStatus moves a homeowner's own job through its lifecycle
func (s *MarketplaceService) UpdateJobStatus(ctx context.Context, homeownerID, jobID string, status domain.JobStatus) (*domain.Job, error) {
	job, err := s.jobs.FetchByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.HomeownerID != homeownerID {
		return nil, ErrNotJobOwner
	}
	if !jobTransitionAllowed(job.Status, status) {
		return nil, fmt.Errorf("cannot move job from %s to %s: %w", job.Status, status, ErrInvalidJobTransition)
	}

	return s.jobs.UpdateStatus(ctx, jobID, status)
}

// PlaceBid records a professional's bid on an open job
func (s *MarketplaceService) PlaceBid(ctx context.Context, professionalID, jobID string, req *dto.CreateBidRequest) (*domain.Bid, error) {
	if _, err := s.requireRole(ctx, professionalID, domain.UserTypeProfessional); err != nil {
		return nil, err
	}

	job, err := s.jobs.FetchByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobOpen {
		return nil, ErrJobNotOpen
	}

	bid := &domain.Bid{
		JobID:          jobID,
		ProfessionalID: professionalID,
		Amount:         req.Amount,
		Message:        req.Message,
		Status:         domain.BidPending,
	}
	if err := s.bids.Insert(ctx, bid); err != nil {
		return nil, err
	}

	s.logger.Info("bid placed",
		zap.String("bid_id", bid.ID),
		zap.String("job_id", jobID),
		zap.String("professional_id", professionalID),
	)
	return bid, nil
}

// ListJobBids returns the bids on a homeowner's own job
func (s *MarketplaceService) ListJobBids(ctx context.Context, homeownerID, jobID string) ([]*domain.Bid, error) {
	job, err := s.jobs.FetchByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.HomeownerID != homeownerID {
		return nil, ErrNotJobOwner
	}

	return s.bids.ListByJob(ctx, jobID)
}

// ListOwnBids returns a professional's bids
func (s *MarketplaceService) ListOwnBids(ctx context.Context, professionalID string) ([]*domain.Bid, error) {
	return s.bids.ListByProfessional(ctx, professionalID)
}

// AcceptBid accepts a bid on a homeowner's job and moves the job to
// assigned. Other pending bids stay pending until explicitly rejected.
func (s *MarketplaceService) AcceptBid(ctx context.Context, homeownerID, jobID, bidID string) (*domain.Bid, error) {
	job, err := s.jobs.FetchByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.HomeownerID != homeownerID {
		return nil, ErrNotJobOwner
	}
	if job.Status != domain.JobOpen {
		return nil, ErrJobNotOpen
	}

	bid, err := s.bids.FetchByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.JobID != jobID {
		return nil, fmt.Errorf("bid %s is not on job %s: %w", bidID, jobID, repository.ErrNotFound)
	}
	if bid.Status != domain.BidPending {
		return nil, ErrBidNotPending
	}

	bid, err = s.bids.UpdateStatus(ctx, bidID, domain.BidAccepted)
	if err != nil {
		return nil, err
	}

	if _, err := s.jobs.UpdateStatus(ctx, jobID, domain.JobAssigned); err != nil {
		return nil, fmt.Errorf("bid accepted but job status update failed: %w", err)
	}

	return bid, nil
}

// SendMessage appends a message to a job thread. Every thread runs through
// the job's homeowner, so either the sender or the recipient must be the
// homeowner; anything else is rejected.
func (s *MarketplaceService) SendMessage(ctx context.Context, senderID, jobID string, req *dto.SendMessageRequest) (*domain.Message, error) {
	job, err := s.jobs.FetchByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if senderID != job.HomeownerID && req.RecipientID != job.HomeownerID {
		return nil, ErrNotThreadUser
	}

	msg := &domain.Message{
		JobID:       jobID,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// ReadThread returns a job's messages and marks the reader's unread ones as
// read
func (s *MarketplaceService) ReadThread(ctx context.Context, readerID, jobID string) ([]*domain.Message, error) {
	messages, err := s.messages.ListThread(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkRead(ctx, jobID, readerID); err != nil {
		s.logger.Warn("failed to mark thread read", zap.String("job_id", jobID), zap.Error(err))
	}

	return messages, nil
}

// FileComplaint records a complaint from one user about another
func (s *MarketplaceService) FileComplaint(ctx context.Context, reporterID string, req *dto.CreateComplaintRequest) (*domain.Complaint, error) {
	complaint := &domain.Complaint{
		ReporterID: reporterID,
		SubjectID:  req.SubjectID,
		Category:   req.Category,
		Body:       req.Body,
		Status:     domain.ComplaintOpen,
	}
	if req.JobID != "" {
		complaint.JobID = &req.JobID
	}

	if err := s.complaints.Insert(ctx, complaint); err != nil {
		return nil, err
	}

	return complaint, nil
}

// ListOwnComplaints returns the complaints a user has filed
func (s *MarketplaceService) ListOwnComplaints(ctx context.Context, reporterID string) ([]*domain.Complaint, error) {
	return s.complaints.ListByReporter(ctx, reporterID)
}

// HomeownerDashboard aggregates a homeowner's landing counts
func (s *MarketplaceService) HomeownerDashboard(ctx context.Context, homeownerID string) (*dto.HomeownerDashboard, error) {
	open, err := s.jobs.CountByHomeowner(ctx, homeownerID, domain.JobOpen)
	if err != nil {
		return nil, err
	}
	active, err := s.jobs.CountByHomeowner(ctx, homeownerID, domain.JobAssigned)
	if err != nil {
		return nil, err
	}
	completed, err := s.jobs.CountByHomeowner(ctx, homeownerID, domain.JobCompleted)
	if err != nil {
		return nil, err
	}
	pendingBids, err := s.bids.CountPendingForHomeowner(ctx, homeownerID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnread(ctx, homeownerID)
	if err != nil {
		return nil, err
	}

	return &dto.HomeownerDashboard{
		OpenJobs:       open,
		ActiveJobs:     active,
		CompletedJobs:  completed,
		PendingBids:    pendingBids,
		UnreadMessages: unread,
	}, nil
}

// ProfessionalDashboard aggregates a professional's landing counts
func (s *MarketplaceService) ProfessionalDashboard(ctx context.Context, professionalID, trade string) (*dto.ProfessionalDashboard, error) {
	available, err := s.jobs.CountOpen(ctx, trade)
	if err != nil {
		return nil, err
	}
	placed, err := s.bids.CountByProfessional(ctx, professionalID, domain.BidPending)
	if err != nil {
		return nil, err
	}
	accepted, err := s.bids.CountByProfessional(ctx, professionalID, domain.BidAccepted)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnread(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfessionalDashboard{
		AvailableJobs:  available,
		PlacedBids:     placed,
		AcceptedBids:   accepted,
		UnreadMessages: unread,
	}, nil
}
