package coordinator

import (
	"context"
	"strings"
	"sync"

	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/internal/identity"
	"github.com/tradehub/tradehub-api/internal/repository"
)

type fakeProvider struct {
	mu            sync.Mutex
	session       *domain.Session
	signInSession *domain.Session
	signInErr     error
	signUpResult  *identity.SignUpResult
	signUpErr     error
	otpErr        error
	signOutErr    error
	signOutCalls  int
	otpCalls      []identity.OTPOptions
	signUpOpts    []identity.SignUpOptions
	handlers      []func(domain.SessionEvent)
}

func (f *fakeProvider) GetSession(_ context.Context) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, _, _ string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.signInSession, nil
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string, opts identity.SignUpOptions) (*identity.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpOpts = append(f.signUpOpts, opts)
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if f.signUpResult != nil {
		return f.signUpResult, nil
	}
	return &identity.SignUpResult{UserID: "new-user", Email: email}, nil
}

func (f *fakeProvider) SignInWithOTP(_ context.Context, _ string, opts identity.OTPOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpCalls = append(f.otpCalls, opts)
	return f.otpErr
}

func (f *fakeProvider) SignOut(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	f.session = nil
	return f.signOutErr
}

func (f *fakeProvider) OnSessionChange(handler func(domain.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
	return func() {}
}

func (f *fakeProvider) emit(event domain.SessionEvent) {
	f.mu.Lock()
	handlers := append([]func(domain.SessionEvent){}, f.handlers...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
}

func (f *fakeProvider) signOuts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

type fakeProfileRepo struct {
	mu         sync.Mutex
	rows       map[string]*domain.Profile
	fetchErr   error
	insertErr  error
	fetchHook  func()
	insertHook func(profile *domain.Profile) error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{rows: map[string]*domain.Profile{}}
}

func (r *fakeProfileRepo) put(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.rows[p.ID] = &cp
}

func (r *fakeProfileRepo) get(id string) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *fakeProfileRepo) FetchByID(_ context.Context, id string) (*domain.Profile, error) {
	if r.fetchHook != nil {
		r.fetchHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) FindByIDOrEmail(_ context.Context, id, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	for _, p := range r.rows {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProfileRepo) Insert(_ context.Context, profile *domain.Profile) error {
	if r.insertHook != nil {
		if err := r.insertHook(profile); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.rows[profile.ID]; ok {
		return repository.ErrDuplicateProfile
	}
	for _, p := range r.rows {
		if strings.EqualFold(p.Email, profile.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *profile
	r.rows[profile.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, id string, updates *repository.ProfileUpdate) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if updates.FirstName != nil {
		p.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		p.LastName = *updates.LastName
	}
	if updates.Phone != nil {
		p.Phone = *updates.Phone
	}
	if updates.Postcode != nil {
		p.Postcode = *updates.Postcode
	}
	if updates.PreferredContact != nil {
		p.PreferredContact = *updates.PreferredContact
	}
	if updates.Address != nil {
		p.Address = *updates.Address
	}
	if updates.AvatarURL != nil {
		p.AvatarURL = *updates.AvatarURL
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateID(_ context.Context, oldID, newID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[oldID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.rows, oldID)
	p.ID = newID
	r.rows[newID] = p
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) SetConfirmed(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Confirmed = true
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeProfessionalRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.ProfessionalDetails
}

func newFakeProfessionalRepo() *fakeProfessionalRepo {
	return &fakeProfessionalRepo{rows: map[string]*domain.ProfessionalDetails{}}
}

func (r *fakeProfessionalRepo) Insert(_ context.Context, details *domain.ProfessionalDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *details
	r.rows[details.ID] = &cp
	return nil
}

func (r *fakeProfessionalRepo) FetchByID(_ context.Context, id string) (*domain.ProfessionalDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

type fakeRoleChangeRepo struct {
	mu   sync.Mutex
	rows []*domain.RoleChangeRequest
}

func (r *fakeRoleChangeRepo) Insert(_ context.Context, req *domain.RoleChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeRoleChangeRepo) ListByUser(_ context.Context, userID string) ([]*domain.RoleChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RoleChangeRequest
	for _, row := range r.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeRoleCache struct {
	mu    sync.Mutex
	roles map[string]domain.UserType
}

func newFakeRoleCache() *fakeRoleCache {
	return &fakeRoleCache{roles: map[string]domain.UserType{}}
}

func (c *fakeRoleCache) SetRole(_ context.Context, userID string, role domain.UserType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
	return nil
}

func (c *fakeRoleCache) Role(_ context.Context, userID string) (domain.UserType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roles[userID], nil
}

func (c *fakeRoleCache) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, userID)
	return nil
}

func (c *fakeRoleCache) role(userID string) domain.UserType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roles[userID]
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []string
	welcomes      []string
}

func (n *fakeNotifier) SendConfirmation(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, email)
	return nil
}

func (n *fakeNotifier) SendWelcome(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
	return nil
}

func (n *fakeNotifier) sent() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmations), len(n.welcomes)
}
