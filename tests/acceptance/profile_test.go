package acceptance

import (
	"net/http"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
)

type profileEnvelope struct {
	Profile      domain.Profile              `json:"profile"`
	Professional *domain.ProfessionalDetails `json:"professional"`
}

func (s *Suite) TestProfileMe_Homeowner() {
	token, userID := s.registerUser("me@example.com", "homeowner")

	resp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, token)

	var me profileEnvelope
	s.decodeBody(resp, &me)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(userID, me.Profile.ID)
	s.Equal("me@example.com", me.Profile.Email)
	s.Equal(domain.UserTypeHomeowner, me.Profile.UserType)
	s.True(me.Profile.Confirmed)
	s.Nil(me.Professional)
}

func (s *Suite) TestProfileMe_ProfessionalIncludesDetails() {
	token, userID := s.registerUser("pro-me@example.com", "professional")

	resp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, token)

	var me profileEnvelope
	s.decodeBody(resp, &me)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(domain.UserTypeProfessional, me.Profile.UserType)
	s.Require().NotNil(me.Professional)
	s.Equal(userID, me.Professional.ID)
	s.Equal("Sample Trades Ltd", me.Professional.CompanyName)
	s.Equal("plumbing", me.Professional.Trade)
}

func (s *Suite) TestProfileUpdate_AppliesAllowListedFields() {
	token, _ := s.registerUser("edit@example.com", "homeowner")

	name := "Alex"
	phone := "07700900123"
	resp := s.doRequest(http.MethodPatch, "/api/v1/profile/me", dto.UpdateProfileRequest{
		FirstName: &name,
		Phone:     &phone,
	}, token)

	var updated domain.Profile
	s.decodeBody(resp, &updated)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Alex", updated.FirstName)
	s.Equal("07700900123", updated.Phone)
	s.Equal("Taylor", updated.LastName, "omitted fields are untouched")
}

func (s *Suite) TestProfileUpdate_CannotChangeRole() {
	token, _ := s.registerUser("sneaky@example.com", "homeowner")

	resp := s.doRequest(http.MethodPatch, "/api/v1/profile/me", map[string]string{
		"user_type":  "professional",
		"first_name": "Alex",
	}, token)

	var updated domain.Profile
	s.decodeBody(resp, &updated)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Alex", updated.FirstName)
	s.Equal(domain.UserTypeHomeowner, updated.UserType, "the role is not editable through profile updates")
}

func (s *Suite) TestRoleChange_Recorded() {
	token, _ := s.registerUser("switch@example.com", "homeowner")

	resp := s.doRequest(http.MethodPost, "/api/v1/profile/me/role-change", dto.RoleChangeRequest{
		RequestedRole: "professional",
	}, token)

	var result dto.Result
	s.decodeBody(resp, &result)

	s.Equal(http.StatusAccepted, resp.StatusCode)
	s.True(result.Success)

	// The profile's role stays until the request is approved externally
	meResp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, token)
	var me profileEnvelope
	s.decodeBody(meResp, &me)
	s.Equal(domain.UserTypeHomeowner, me.Profile.UserType)
}

func (s *Suite) TestRoleChange_SameRoleRejected() {
	token, _ := s.registerUser("same@example.com", "homeowner")

	resp := s.doRequest(http.MethodPost, "/api/v1/profile/me/role-change", dto.RoleChangeRequest{
		RequestedRole: "homeowner",
	}, token)

	var result dto.Result
	s.decodeBody(resp, &result)

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(result.Message, "already registered as a homeowner")
}

func (s *Suite) TestProfileDelete() {
	token, _ := s.registerUser("gone@example.com", "homeowner")

	resp := s.doRequest(http.MethodDelete, "/api/v1/profile/me", nil, token)
	var result dto.SuccessResponse
	s.decodeBody(resp, &result)
	s.Equal(http.StatusOK, resp.StatusCode)

	meResp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, token)
	defer meResp.Body.Close()
	s.Equal(http.StatusNotFound, meResp.StatusCode)
}

func (s *Suite) TestProfileMe_RequiresToken() {
	resp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, "")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
