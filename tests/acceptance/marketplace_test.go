package acceptance

import (
	"fmt"
	"net/http"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
)

func (s *Suite) postJob(token string) domain.Job {
	resp := s.doRequest(http.MethodPost, "/api/v1/jobs", dto.CreateJobRequest{
		Title:       "Fix leaking tap",
		Description: "Kitchen tap drips constantly",
		Trade:       "plumbing",
		Postcode:    "SW1A 1AA",
		BudgetMin:   50,
		BudgetMax:   150,
	}, token)

	var job domain.Job
	s.decodeBody(resp, &job)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return job
}

func (s *Suite) TestPostJob_Homeowner() {
	token, userID := s.registerUser("poster@example.com", "homeowner")

	job := s.postJob(token)

	s.Equal(userID, job.HomeownerID)
	s.Equal(domain.JobOpen, job.Status)
	s.NotEmpty(job.ID)
}

func (s *Suite) TestPostJob_ProfessionalForbidden() {
	token, _ := s.registerUser("wrongrole@example.com", "professional")

	resp := s.doRequest(http.MethodPost, "/api/v1/jobs", dto.CreateJobRequest{
		Title:       "Fix leaking tap",
		Description: "Kitchen tap drips constantly",
		Trade:       "plumbing",
		Postcode:    "SW1A 1AA",
	}, token)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestBrowseOpenJobs_FilteredByTrade() {
	ownerToken, _ := s.registerUser("browse-owner@example.com", "homeowner")
	s.postJob(ownerToken)

	proToken, _ := s.registerUser("browse-pro@example.com", "professional")

	resp := s.doRequest(http.MethodGet, "/api/v1/jobs?scope=open&trade=plumbing", nil, proToken)
	var jobs []domain.Job
	s.decodeBody(resp, &jobs)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(jobs, 1)
	s.Equal("Fix leaking tap", jobs[0].Title)

	respNone := s.doRequest(http.MethodGet, "/api/v1/jobs?scope=open&trade=roofing", nil, proToken)
	var none []domain.Job
	s.decodeBody(respNone, &none)
	s.Empty(none)
}

func (s *Suite) TestBidFlow_PlaceListAccept() {
	ownerToken, _ := s.registerUser("bid-owner@example.com", "homeowner")
	job := s.postJob(ownerToken)

	proToken, proID := s.registerUser("bid-pro@example.com", "professional")

	bidResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids", job.ID), dto.CreateBidRequest{
		Amount:  120,
		Message: "Can start Monday",
	}, proToken)
	var bid domain.Bid
	s.decodeBody(bidResp, &bid)
	s.Require().Equal(http.StatusCreated, bidResp.StatusCode)
	s.Equal(proID, bid.ProfessionalID)
	s.Equal(domain.BidPending, bid.Status)

	// A second bid on the same job from the same professional is rejected
	dupResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids", job.ID), dto.CreateBidRequest{
		Amount: 110,
	}, proToken)
	dupResp.Body.Close()
	s.Equal(http.StatusConflict, dupResp.StatusCode)

	listResp := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/bids", job.ID), nil, ownerToken)
	var bids []domain.Bid
	s.decodeBody(listResp, &bids)
	s.Require().Len(bids, 1)

	acceptResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids/%s/accept", job.ID, bid.ID), nil, ownerToken)
	var accepted domain.Bid
	s.decodeBody(acceptResp, &accepted)
	s.Equal(http.StatusOK, acceptResp.StatusCode)
	s.Equal(domain.BidAccepted, accepted.Status)

	ownJobsResp := s.doRequest(http.MethodGet, "/api/v1/jobs", nil, ownerToken)
	var ownJobs []domain.Job
	s.decodeBody(ownJobsResp, &ownJobs)
	s.Require().Len(ownJobs, 1)
	s.Equal(domain.JobAssigned, ownJobs[0].Status)
}

func (s *Suite) TestAcceptBid_RejectsBidFromAnotherJob() {
	ownerToken, _ := s.registerUser("cross-owner-a@example.com", "homeowner")
	ownJob := s.postJob(ownerToken)

	otherToken, _ := s.registerUser("cross-owner-b@example.com", "homeowner")
	otherJob := s.postJob(otherToken)

	proToken, _ := s.registerUser("cross-pro@example.com", "professional")
	bidResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids", otherJob.ID), dto.CreateBidRequest{
		Amount: 200,
	}, proToken)
	var bid domain.Bid
	s.decodeBody(bidResp, &bid)
	s.Require().Equal(http.StatusCreated, bidResp.StatusCode)

	// Owner A accepts B's bid through A's own job path
	acceptResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids/%s/accept", ownJob.ID, bid.ID), nil, ownerToken)
	acceptResp.Body.Close()
	s.Equal(http.StatusNotFound, acceptResp.StatusCode)

	ownJobsResp := s.doRequest(http.MethodGet, "/api/v1/jobs", nil, ownerToken)
	var ownJobs []domain.Job
	s.decodeBody(ownJobsResp, &ownJobs)
	s.Require().Len(ownJobs, 1)
	s.Equal(domain.JobOpen, ownJobs[0].Status)

	bidsResp := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/bids", otherJob.ID), nil, otherToken)
	var bids []domain.Bid
	s.decodeBody(bidsResp, &bids)
	s.Require().Len(bids, 1)
	s.Equal(domain.BidPending, bids[0].Status)
}

func (s *Suite) TestUpdateJobStatus_RejectsReopeningCancelledJob() {
	token, _ := s.registerUser("lifecycle-owner@example.com", "homeowner")
	job := s.postJob(token)

	cancelResp := s.doRequest(http.MethodPatch, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), dto.UpdateJobStatusRequest{
		Status: "cancelled",
	}, token)
	var cancelled domain.Job
	s.decodeBody(cancelResp, &cancelled)
	s.Require().Equal(http.StatusOK, cancelResp.StatusCode)
	s.Equal(domain.JobCancelled, cancelled.Status)

	reopenResp := s.doRequest(http.MethodPatch, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), dto.UpdateJobStatusRequest{
		Status: "open",
	}, token)
	reopenResp.Body.Close()
	s.Equal(http.StatusConflict, reopenResp.StatusCode)
}

func (s *Suite) TestListJobBids_OnlyOwner() {
	ownerToken, _ := s.registerUser("secret-owner@example.com", "homeowner")
	job := s.postJob(ownerToken)

	otherToken, _ := s.registerUser("other-owner@example.com", "homeowner")

	resp := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/bids", job.ID), nil, otherToken)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestMessages_ThreadBetweenOwnerAndProfessional() {
	ownerToken, ownerID := s.registerUser("msg-owner@example.com", "homeowner")
	job := s.postJob(ownerToken)

	proToken, proID := s.registerUser("msg-pro@example.com", "professional")

	sendResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/messages", job.ID), dto.SendMessageRequest{
		RecipientID: proID,
		Body:        "When can you start?",
	}, ownerToken)
	var msg domain.Message
	s.decodeBody(sendResp, &msg)
	s.Require().Equal(http.StatusCreated, sendResp.StatusCode)
	s.Equal(ownerID, msg.SenderID)

	replyResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/messages", job.ID), dto.SendMessageRequest{
		RecipientID: ownerID,
		Body:        "Monday morning",
	}, proToken)
	replyResp.Body.Close()
	s.Require().Equal(http.StatusCreated, replyResp.StatusCode)

	threadResp := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/messages", job.ID), nil, ownerToken)
	var thread []domain.Message
	s.decodeBody(threadResp, &thread)
	s.Require().Len(thread, 2)
	s.Equal("When can you start?", thread[0].Body)
	s.Equal("Monday morning", thread[1].Body)
}

func (s *Suite) TestMessages_OutsiderCannotJoinThread() {
	ownerToken, _ := s.registerUser("thread-owner@example.com", "homeowner")
	job := s.postJob(ownerToken)

	outsiderToken, outsiderID := s.registerUser("outsider@example.com", "professional")
	_, bystanderID := s.registerUser("bystander@example.com", "professional")
	_ = outsiderID

	resp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/messages", job.ID), dto.SendMessageRequest{
		RecipientID: bystanderID,
		Body:        "psst",
	}, outsiderToken)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestComplaints_FileAndList() {
	reporterToken, _ := s.registerUser("reporter@example.com", "homeowner")
	_, subjectID := s.registerUser("subject@example.com", "professional")

	fileResp := s.doRequest(http.MethodPost, "/api/v1/complaints", dto.CreateComplaintRequest{
		SubjectID: subjectID,
		Category:  "no-show",
		Body:      "Never turned up",
	}, reporterToken)
	var complaint domain.Complaint
	s.decodeBody(fileResp, &complaint)
	s.Require().Equal(http.StatusCreated, fileResp.StatusCode)
	s.Equal(domain.ComplaintOpen, complaint.Status)

	listResp := s.doRequest(http.MethodGet, "/api/v1/complaints", nil, reporterToken)
	var complaints []domain.Complaint
	s.decodeBody(listResp, &complaints)
	s.Require().Len(complaints, 1)
	s.Equal(subjectID, complaints[0].SubjectID)
}

func (s *Suite) TestDashboard_Homeowner() {
	token, _ := s.registerUser("dash-owner@example.com", "homeowner")
	s.postJob(token)

	resp := s.doRequest(http.MethodGet, "/api/v1/dashboard", nil, token)
	var dash dto.HomeownerDashboard
	s.decodeBody(resp, &dash)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, dash.OpenJobs)
	s.Equal(0, dash.ActiveJobs)
}

func (s *Suite) TestDashboard_Professional() {
	ownerToken, _ := s.registerUser("dash-job-owner@example.com", "homeowner")
	job := s.postJob(ownerToken)

	proToken, _ := s.registerUser("dash-pro@example.com", "professional")
	bidResp := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%s/bids", job.ID), dto.CreateBidRequest{
		Amount: 99,
	}, proToken)
	bidResp.Body.Close()
	s.Require().Equal(http.StatusCreated, bidResp.StatusCode)

	resp := s.doRequest(http.MethodGet, "/api/v1/dashboard?trade=plumbing", nil, proToken)
	var dash dto.ProfessionalDashboard
	s.decodeBody(resp, &dash)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, dash.AvailableJobs)
	s.Equal(1, dash.PlacedBids)
}
