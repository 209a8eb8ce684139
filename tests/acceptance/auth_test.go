package acceptance

import (
	"net/http"

	"github.com/tradehub/tradehub-api/internal/dto"
)

func (s *Suite) TestSignUp_HomeownerSuccess() {
	resp, result := s.signUp("owner@example.com", "homeowner")

	s.Equal(http.StatusCreated, resp.StatusCode)
	s.True(result.Success)
	s.Contains(result.Message, "check your email")
}

func (s *Suite) TestSignUp_PasswordMismatch() {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signup", dto.SignUpRequest{
		Email:           "mismatch@example.com",
		Password:        testPassword,
		ConfirmPassword: "Different123",
		UserType:        "homeowner",
	}, "")

	var result dto.Result
	s.decodeBody(resp, &result)

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Passwords do not match", result.Message)
}

func (s *Suite) TestSignUp_DuplicateEmailNamesExistingRole() {
	_, result := s.signUp("dup@example.com", "professional")
	s.Require().True(result.Success)

	resp, result := s.signUp("dup@example.com", "homeowner")

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.False(result.Success)
	s.Contains(result.Message, "already registered as a professional")
}

func (s *Suite) TestSignUp_InvalidUserTypeRejected() {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":            "bad@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
		"user_type":        "admin",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestSignIn_Success() {
	s.registerUser("signin@example.com", "homeowner")

	resp, envelope := s.signIn("signin@example.com", testPassword)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(envelope.Success)
	s.Equal("Bearer", envelope.Data.TokenType)
	s.Equal("homeowner", envelope.Data.UserType)
	s.NotEmpty(envelope.Data.AccessToken)
	s.NotZero(envelope.Data.ExpiresAt)
}

func (s *Suite) TestSignIn_WrongPassword() {
	s.registerUser("wrongpass@example.com", "homeowner")

	resp, envelope := s.signIn("wrongpass@example.com", "WrongPassword123")

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(envelope.Success)
	s.Equal("Invalid email or password", envelope.Message)
}

func (s *Suite) TestSignIn_UnknownEmail() {
	resp, envelope := s.signIn("nobody@example.com", testPassword)

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(envelope.Success)
}

func (s *Suite) TestSignIn_UnconfirmedEmailGated() {
	s.Identity.SetAutoConfirm(false)

	resp, result := s.signUp("pending@example.com", "homeowner")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Require().True(result.Success)

	loginResp, envelope := s.signIn("pending@example.com", testPassword)

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
	s.False(envelope.Success)
	s.Contains(envelope.Message, "not confirmed")
}

func (s *Suite) TestSignIn_SucceedsAfterConfirmation() {
	s.Identity.SetAutoConfirm(false)

	_, result := s.signUp("eventually@example.com", "homeowner")
	s.Require().True(result.Success)

	gatedResp, _ := s.signIn("eventually@example.com", testPassword)
	s.Require().Equal(http.StatusUnauthorized, gatedResp.StatusCode)

	s.Identity.Confirm("eventually@example.com")

	resp, envelope := s.signIn("eventually@example.com", testPassword)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(envelope.Success)

	// The local profile picked up the provider's confirmation
	meResp := s.doRequest(http.MethodGet, "/api/v1/profile/me", nil, envelope.Data.AccessToken)
	var me struct {
		Profile struct {
			Confirmed bool   `json:"confirmed"`
			UserType  string `json:"user_type"`
		} `json:"profile"`
	}
	s.decodeBody(meResp, &me)
	s.Equal(http.StatusOK, meResp.StatusCode)
	s.True(me.Profile.Confirmed)
}

func (s *Suite) TestOTP_RequestsMagicLink() {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/otp", dto.OTPRequest{
		Email:    "link@example.com",
		UserType: "professional",
	}, "")

	var result dto.Result
	s.decodeBody(resp, &result)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(result.Success)
	s.Contains(s.Identity.OTPEmails(), "link@example.com")
}

func (s *Suite) TestSignOut_Success() {
	token, _ := s.registerUser("leaving@example.com", "homeowner")

	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signout", nil, token)

	var result dto.SuccessResponse
	s.decodeBody(resp, &result)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Signed out successfully", result.Message)
}

func (s *Suite) TestSignOut_RequiresToken() {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signout", nil, "")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
