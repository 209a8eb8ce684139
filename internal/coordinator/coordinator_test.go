package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/dto"
	"github.com/tradehub/tradehub-api/internal/identity"
)

func signUpRequest(email, userType string) *dto.SignUpRequest {
	return &dto.SignUpRequest{
		Email:           email,
		Password:        "Password123",
		ConfirmPassword: "Password123",
		UserType:        userType,
		FirstName:       "Sam",
		LastName:        "Taylor",
		Phone:           "07700900000",
		Postcode:        "SW1A 1AA",
	}
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	h := newHarness()

	req := signUpRequest("new@example.com", "homeowner")
	req.ConfirmPassword = "Different123"

	result := h.coord.SignUp(context.Background(), req)

	assert.False(t, result.Success)
	assert.Equal(t, "Passwords do not match", result.Message)
}

func TestSignUp_RejectsAdminType(t *testing.T) {
	h := newHarness()

	result := h.coord.SignUp(context.Background(), signUpRequest("new@example.com", "admin"))

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid account type", result.Message)
}

func TestSignUp_RejectsDuplicateConfirmedEmail(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "existing",
		Email:     "taken@example.com",
		UserType:  domain.UserTypeProfessional,
		Confirmed: true,
	})

	result := h.coord.SignUp(context.Background(), signUpRequest("Taken@Example.com", "homeowner"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already registered as a professional")
}

func TestSignUp_PendingConfirmation(t *testing.T) {
	h := newHarness()
	h.provider.signUpResult = &identity.SignUpResult{UserID: "pending-1", Email: "pending@example.com"}

	result := h.coord.SignUp(context.Background(), signUpRequest("pending@example.com", "homeowner"))

	require.True(t, result.Success)
	assert.Contains(t, result.Message, "check your email")

	// No session means no profile yet; the row is created on first sign-in
	assert.Nil(t, h.profiles.get("pending-1"))
	assert.Equal(t, domain.UserTypeHomeowner, h.roles.role("pending-1"))
	assert.Equal(t, domain.UserTypeHomeowner, h.coord.UserType())

	require.Len(t, h.provider.signUpOpts, 1)
	assert.Equal(t, "https://tradehub.example/auth/callback?type=homeowner", h.provider.signUpOpts[0].EmailRedirectTo)
	assert.Equal(t, "homeowner", h.provider.signUpOpts[0].Metadata["user_type"])
}

func TestSignUp_ActiveSessionProvisionsProfessional(t *testing.T) {
	h := newHarness()
	session := confirmedSession("pro-1", "plumber@example.com")
	h.provider.signUpResult = &identity.SignUpResult{
		UserID:  "pro-1",
		Email:   "plumber@example.com",
		Session: session,
	}

	req := signUpRequest("plumber@example.com", "professional")
	req.CompanyName = "Pipes Ltd"
	req.RegistrationNumber = "12345678"
	req.Trade = "plumbing"

	result := h.coord.SignUp(context.Background(), req)

	require.True(t, result.Success)

	profile := h.profiles.get("pro-1")
	require.NotNil(t, profile)
	assert.Equal(t, domain.UserTypeProfessional, profile.UserType)
	assert.Equal(t, "Sam", profile.FirstName)
	assert.Equal(t, "SW1A 1AA", profile.Postcode)

	details, err := h.professionals.FetchByID(context.Background(), "pro-1")
	require.NoError(t, err)
	assert.Equal(t, "Pipes Ltd", details.CompanyName)
	assert.Equal(t, "plumbing", details.Trade)
}

func TestSignUp_BackfillsEventProvisionedProfile(t *testing.T) {
	h := newHarness()
	// An event-driven reconciliation already created the row from session
	// metadata, without the contact details from the sign-up form
	h.profiles.put(&domain.Profile{
		ID:       "owner-2",
		Email:    "early@example.com",
		UserType: domain.UserTypeHomeowner,
	})
	h.provider.signUpResult = &identity.SignUpResult{
		UserID:  "owner-2",
		Email:   "early@example.com",
		Session: confirmedSession("owner-2", "early@example.com"),
	}

	result := h.coord.SignUp(context.Background(), signUpRequest("early@example.com", "homeowner"))

	require.True(t, result.Success)

	profile := h.profiles.get("owner-2")
	require.NotNil(t, profile)
	assert.Equal(t, "Sam", profile.FirstName)
	assert.Equal(t, "Taylor", profile.LastName)
	assert.Equal(t, "07700900000", profile.Phone)
	assert.Equal(t, "SW1A 1AA", profile.Postcode)
}

func TestSignUp_DispatchesEmails(t *testing.T) {
	h := newHarness()

	result := h.coord.SignUp(context.Background(), signUpRequest("mail@example.com", "homeowner"))
	require.True(t, result.Success)

	assert.Eventually(t, func() bool {
		confirmations, welcomes := h.notifier.sent()
		return confirmations == 1 && welcomes == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	h := newHarness()
	h.provider.signInErr = identity.ErrInvalidCredentials

	result := h.coord.SignIn(context.Background(), "who@example.com", "wrong")

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid email or password", result.Message)
}

func TestSignIn_UnconfirmedEmailReportedSynchronously(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-11",
		Email:     "slow@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: false,
	})
	h.provider.signInSession = unconfirmedSession("user-11", "slow@example.com")

	result := h.coord.SignIn(context.Background(), "slow@example.com", "Password123")

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not confirmed")
	assert.False(t, h.coord.IsAuthenticated())
}

func TestSignIn_Success(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-12",
		Email:     "ready@example.com",
		UserType:  domain.UserTypeProfessional,
		Confirmed: true,
	})
	h.provider.signInSession = confirmedSession("user-12", "ready@example.com")

	result := h.coord.SignIn(context.Background(), "  Ready@Example.com ", "Password123")

	require.True(t, result.Success)
	data, ok := result.Data.(dto.SignInData)
	require.True(t, ok)
	assert.Equal(t, "user-12", data.UserID)
	assert.Equal(t, "professional", data.UserType)
	assert.Equal(t, "Bearer", data.TokenType)
	assert.NotEmpty(t, data.AccessToken)
}

func TestSignOut_ClearsEverything(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-13",
		Email:     "done@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: true,
	})
	h.provider.session = confirmedSession("user-13", "done@example.com")
	require.NoError(t, h.coord.Init(context.Background()))
	require.True(t, h.coord.IsAuthenticated())
	require.Equal(t, domain.UserTypeHomeowner, h.roles.role("user-13"))

	err := h.coord.SignOut(context.Background())

	require.NoError(t, err)
	assert.False(t, h.coord.IsAuthenticated())
	assert.Nil(t, h.coord.User())
	assert.Nil(t, h.coord.Profile())
	assert.Empty(t, h.roles.role("user-13"))
	assert.Equal(t, 1, h.provider.signOuts())
}

func TestLoginWithOTP_SendsLinkWithRoleMetadata(t *testing.T) {
	h := newHarness()

	result := h.coord.LoginWithOTP(context.Background(), "link@example.com", "professional")

	require.True(t, result.Success)
	require.Len(t, h.provider.otpCalls, 1)
	assert.Equal(t, "https://tradehub.example/auth/callback?type=professional", h.provider.otpCalls[0].EmailRedirectTo)
	assert.Equal(t, "professional", h.provider.otpCalls[0].Metadata["user_type"])
}

func TestLoginWithOTP_RejectsInvalidRole(t *testing.T) {
	h := newHarness()

	result := h.coord.LoginWithOTP(context.Background(), "link@example.com", "superuser")

	assert.False(t, result.Success)
	assert.Empty(t, h.provider.otpCalls)
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	h := newHarness()

	name := "Alex"
	_, err := h.coord.UpdateProfile(context.Background(), &dto.UpdateProfileRequest{FirstName: &name})

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateProfile_AppliesAllowListOnly(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-14",
		Email:     "edit@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: true,
	})
	h.provider.session = confirmedSession("user-14", "edit@example.com")
	require.NoError(t, h.coord.Init(context.Background()))

	name := "Alex"
	phone := "07700900123"
	updated, err := h.coord.UpdateProfile(context.Background(), &dto.UpdateProfileRequest{
		FirstName: &name,
		Phone:     &phone,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alex", updated.FirstName)
	assert.Equal(t, "07700900123", updated.Phone)
	// The role survives any update
	assert.Equal(t, domain.UserTypeHomeowner, updated.UserType)
	assert.Equal(t, domain.UserTypeHomeowner, h.coord.UserType())
	assert.Equal(t, "Alex", h.coord.Profile().FirstName)
}

func TestRequestRoleChange_RejectsSameRole(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-15",
		Email:     "same@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: true,
	})

	result := h.coord.RequestRoleChange(context.Background(), "user-15", domain.UserTypeHomeowner)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already registered as a homeowner")
}

func TestRequestRoleChange_RecordsPendingRequest(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-16",
		Email:     "switch@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: true,
	})

	result := h.coord.RequestRoleChange(context.Background(), "user-16", domain.UserTypeProfessional)

	require.True(t, result.Success)

	requests, err := h.roleChanges.ListByUser(context.Background(), "user-16")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.UserTypeHomeowner, requests[0].FromRole)
	assert.Equal(t, domain.UserTypeProfessional, requests[0].RequestedRole)
	assert.Equal(t, domain.RoleChangePending, requests[0].Status)

	// The profile's role itself is untouched
	assert.Equal(t, domain.UserTypeHomeowner, h.profiles.get("user-16").UserType)
}

func TestUserType_OverrideWinsOverProfile(t *testing.T) {
	h := newHarness()
	h.profiles.put(&domain.Profile{
		ID:        "user-17",
		Email:     "view@example.com",
		UserType:  domain.UserTypeHomeowner,
		Confirmed: true,
	})
	h.provider.session = confirmedSession("user-17", "view@example.com")
	require.NoError(t, h.coord.Init(context.Background()))

	assert.Equal(t, domain.UserTypeHomeowner, h.coord.UserType())

	h.coord.SetUserType(domain.UserTypeProfessional)
	assert.Equal(t, domain.UserTypeProfessional, h.coord.UserType())

	// Signing out drops the override with the rest of the state
	h.provider.emit(domain.SessionEvent{Kind: domain.SessionSignedOut})
	assert.Equal(t, domain.UserTypeHomeowner, h.coord.UserType(), "falls back to the last cached role")
}
