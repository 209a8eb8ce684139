package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tradehub/tradehub-api/internal/dto"
)

const testPassword = "Password123"

// signInEnvelope mirrors dto.Result with a typed sign-in payload
type signInEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    dto.SignInData `json:"data"`
}

func (s *Suite) doRequest(method, path string, body interface{}, token string) *http.Response {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) decodeBody(resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func (s *Suite) signUp(email, userType string) (*http.Response, dto.Result) {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signup", dto.SignUpRequest{
		Email:           email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
		UserType:        userType,
		FirstName:       "Sam",
		LastName:        "Taylor",
		Phone:           "07700900000",
		Postcode:        "SW1A 1AA",
		CompanyName:     "Sample Trades Ltd",
		Trade:           "plumbing",
	}, "")

	var result dto.Result
	s.decodeBody(resp, &result)
	return resp, result
}

func (s *Suite) signIn(email, password string) (*http.Response, signInEnvelope) {
	resp := s.doRequest(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{
		Email:    email,
		Password: password,
	}, "")

	var envelope signInEnvelope
	s.decodeBody(resp, &envelope)
	return resp, envelope
}

// registerUser signs a user up and in, returning the bearer token and user id
func (s *Suite) registerUser(email, userType string) (string, string) {
	resp, result := s.signUp(email, userType)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "sign-up failed: %s", result.Message)

	loginResp, envelope := s.signIn(email, testPassword)
	s.Require().Equal(http.StatusOK, loginResp.StatusCode, "sign-in failed: %s", envelope.Message)
	s.Require().NotEmpty(envelope.Data.AccessToken)

	return envelope.Data.AccessToken, envelope.Data.UserID
}
