package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/handlers"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/internal/service"
	"github.com/shadiejo/shadiejo-api/pkg/config"
	"github.com/shadiejo/shadiejo-api/pkg/events"
)

// ---------- Mocks ----------

// memStore is a single in-memory backing store shared by all the mock
// repositories so cross-repository behavior (promotion, duplicate checks)
// works like it does against Postgres.
type memStore struct {
	mu sync.Mutex

	nextUserID   int64
	users        map[int64]*domain.User
	pendingUsers map[string]*domain.PendingUser

	nextVendorID   int64
	vendors        map[int64]*domain.Vendor
	pendingVendors map[string]*domain.PendingVendor

	nextVenueID int64
	venues      map[int64]*domain.Venue
}

func newMemStore() *memStore {
	return &memStore{
		nextUserID:     1,
		users:          make(map[int64]*domain.User),
		pendingUsers:   make(map[string]*domain.PendingUser),
		nextVendorID:   1,
		vendors:        make(map[int64]*domain.Vendor),
		pendingVendors: make(map[string]*domain.PendingVendor),
		nextVenueID:    1,
		venues:         make(map[int64]*domain.Venue),
	}
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpsertGoogle(_ context.Context, profile *domain.GoogleProfile) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == profile.Email {
			u.IsVerified = true
			u.IsActive = true
			if u.GoogleID == nil {
				id := profile.ID
				u.GoogleID = &id
			}
			cp := *u
			return &cp, nil
		}
	}
	id := r.s.nextUserID
	r.s.nextUserID++
	gid := profile.ID
	u := &domain.User{
		ID: id, Name: profile.Name, Email: profile.Email,
		Role: domain.RoleUser, IsActive: true, IsVerified: true, GoogleID: &gid,
	}
	r.s.users[id] = u
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// --- pending users ---

type memPendingUserRepo struct{ s *memStore }

func (r *memPendingUserRepo) Upsert(_ context.Context, rec *domain.PendingUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.pendingUsers[rec.Email] = &cp
	return nil
}

func (r *memPendingUserRepo) FindByToken(_ context.Context, token string) (*domain.PendingUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.pendingUsers {
		if rec.Token == token {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPendingUserRepo) FindByEmail(_ context.Context, email string) (*domain.PendingUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.pendingUsers[email]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *memPendingUserRepo) Refresh(_ context.Context, email, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.pendingUsers[email]
	if !ok {
		return domain.ErrNoPendingRecord
	}
	rec.Token = token
	rec.ExpiresAt = expiresAt
	return nil
}

func (r *memPendingUserRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, rec := range r.s.pendingUsers {
		if rec.Token == token {
			delete(r.s.pendingUsers, email)
		}
	}
	return nil
}

func (r *memPendingUserRepo) Promote(_ context.Context, rec *domain.PendingUser) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == rec.Email {
			u.IsVerified = true
			u.IsActive = true
			delete(r.s.pendingUsers, rec.Email)
			return u.ID, nil
		}
	}
	id := r.s.nextUserID
	r.s.nextUserID++
	hash := rec.PasswordHash
	r.s.users[id] = &domain.User{
		ID: id, Name: rec.Name, Email: rec.Email, Phone: rec.Phone,
		PasswordHash: &hash, Role: rec.Role, IsActive: true, IsVerified: true,
	}
	delete(r.s.pendingUsers, rec.Email)
	return id, nil
}

func (r *memPendingUserRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

// --- vendors ---

type memVendorRepo struct{ s *memStore }

func (r *memVendorRepo) FindByID(_ context.Context, id int64) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.vendors[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *memVendorRepo) FindByEmail(_ context.Context, email string) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.Email == email {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memVendorRepo) CNICExists(_ context.Context, cnic string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.CNICNumber == cnic {
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendorRepo) List(_ context.Context, filter repository.VendorListFilter) ([]domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Vendor
	for _, v := range r.s.vendors {
		switch filter {
		case repository.VendorsPending:
			if !v.IsVerified || v.IsActive {
				continue
			}
		case repository.VendorsApproved:
			if !v.IsVerified || !v.IsActive {
				continue
			}
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVendorRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.IsActive = active
	return nil
}

func (r *memVendorRepo) UpdateProfile(_ context.Context, id int64, upd *domain.VendorProfileUpdate) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		v.Name = *upd.Name
	}
	if upd.Phone != nil {
		v.Phone = *upd.Phone
	}
	cp := *v
	return &cp, nil
}

func (r *memVendorRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.vendors)), nil
}

func (r *memVendorRepo) CountByStatus(ctx context.Context, filter repository.VendorListFilter) (int64, error) {
	list, _ := r.List(ctx, filter)
	return int64(len(list)), nil
}

// --- pending vendors ---

type memPendingVendorRepo struct{ s *memStore }

func (r *memPendingVendorRepo) Upsert(_ context.Context, rec *domain.PendingVendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.pendingVendors[rec.Email] = &cp
	return nil
}

func (r *memPendingVendorRepo) FindByToken(_ context.Context, token string) (*domain.PendingVendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.pendingVendors {
		if rec.Token == token {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPendingVendorRepo) FindByEmail(_ context.Context, email string) (*domain.PendingVendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.pendingVendors[email]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *memPendingVendorRepo) Refresh(_ context.Context, email, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.pendingVendors[email]
	if !ok {
		return domain.ErrNoPendingRecord
	}
	rec.Token = token
	rec.ExpiresAt = expiresAt
	return nil
}

func (r *memPendingVendorRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, rec := range r.s.pendingVendors {
		if rec.Token == token {
			delete(r.s.pendingVendors, email)
		}
	}
	return nil
}

func (r *memPendingVendorRepo) Promote(_ context.Context, rec *domain.PendingVendor) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.Email == rec.Email {
			v.IsVerified = true
			delete(r.s.pendingVendors, rec.Email)
			return v.ID, nil
		}
		if v.CNICNumber == rec.CNICNumber {
			return 0, domain.ErrDuplicateNationalID
		}
	}
	id := r.s.nextVendorID
	r.s.nextVendorID++
	hash := rec.PasswordHash
	r.s.vendors[id] = &domain.Vendor{
		ID: id, Name: rec.Name, Email: rec.Email, Phone: rec.Phone,
		CNICNumber: rec.CNICNumber, CNICFrontImage: rec.CNICFrontImage,
		CNICBackImage: rec.CNICBackImage, PasswordHash: &hash,
		IsActive: false, IsVerified: true,
	}
	delete(r.s.pendingVendors, rec.Email)
	return id, nil
}

func (r *memPendingVendorRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

func (r *memPendingVendorRepo) CNICPending(_ context.Context, cnic, excludeEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, rec := range r.s.pendingVendors {
		if rec.CNICNumber == cnic && email != excludeEmail {
			return true, nil
		}
	}
	return false, nil
}

// --- venues ---

type memVenueRepo struct{ s *memStore }

func (r *memVenueRepo) Create(_ context.Context, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextVenueID
	r.s.nextVenueID++
	v := &domain.Venue{
		ID: id, VendorID: vendorID, Name: req.Name, Description: req.Description,
		VenueType: req.VenueType, City: req.City, Address: req.Address,
		Capacity: req.Capacity, PricePerDay: req.PricePerDay,
		Amenities: req.Amenities, Images: req.Images, IsActive: true,
	}
	r.s.venues[id] = v
	cp := *v
	return &cp, nil
}

func (r *memVenueRepo) ListByVendor(_ context.Context, vendorID int64) ([]domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Venue
	for _, v := range r.s.venues {
		if v.VendorID == vendorID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVenueRepo) FindForVendor(_ context.Context, id, vendorID int64) (*domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.venues[id]; ok && v.VendorID == vendorID {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *memVenueRepo) Update(_ context.Context, id, vendorID int64, req *domain.VenueRequest) (*domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.venues[id]
	if !ok || v.VendorID != vendorID {
		return nil, domain.ErrNotFound
	}
	v.Name, v.Description, v.VenueType = req.Name, req.Description, req.VenueType
	v.City, v.Address = req.City, req.Address
	v.Capacity, v.PricePerDay, v.Amenities = req.Capacity, req.PricePerDay, req.Amenities
	if req.Images != nil {
		v.Images = req.Images
	}
	cp := *v
	return &cp, nil
}

func (r *memVenueRepo) Delete(_ context.Context, id, vendorID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.venues[id]; ok && v.VendorID == vendorID {
		delete(r.s.venues, id)
		return nil
	}
	return domain.ErrNotFound
}

func (r *memVenueRepo) ListPublic(_ context.Context, filter *domain.VenueFilter) ([]domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Venue
	for _, v := range r.s.venues {
		if !v.IsActive {
			continue
		}
		if filter != nil {
			if filter.City != "" && !strings.EqualFold(filter.City, v.City) {
				continue
			}
			if filter.VenueType != "" && !strings.EqualFold(filter.VenueType, v.VenueType) {
				continue
			}
			if filter.MinCapacity > 0 && v.Capacity < filter.MinCapacity {
				continue
			}
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVenueRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.venues)), nil
}

func (r *memVenueRepo) FindPublic(_ context.Context, id int64) (*domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.venues[id]; ok && v.IsActive {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

// --- mailer / rate limits / oauth state ---

type capturingMailer struct {
	mu         sync.Mutex
	lastToken  string
	lastKind   string
	lastTo     string
	sendErr    error
	verifySent int
}

func (m *capturingMailer) SendVerificationEmail(toEmail, _, token, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lastTo = toEmail
	m.lastToken = token
	m.lastKind = kind
	m.verifySent++
	return nil
}

func (m *capturingMailer) SendWelcomeEmail(_, _ string) error { return nil }

func (m *capturingMailer) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastToken
}

type allowAllRateLimit struct{}

func (allowAllRateLimit) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

type memStateStore struct {
	mu     sync.Mutex
	states map[string]bool
}

func (m *memStateStore) Save(_ context.Context, state string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = make(map[string]bool)
	}
	m.states[state] = true
	return nil
}

func (m *memStateStore) Consume(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[state] {
		delete(m.states, state)
		return true, nil
	}
	return false, nil
}

// ---------- Fixture ----------

type apiFixture struct {
	store  *memStore
	mail   *capturingMailer
	server *httptest.Server
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret",
			SessionTokenTTL:      30 * time.Minute,
			EmailVerificationTTL: 24 * time.Hour,
			OAuthStateTTL:        10 * time.Minute,
		},
		Upload: config.UploadConfig{
			MaxIDImageBytes:    1024, // small caps keep upload tests fast
			MaxVenueImageBytes: 2048,
		},
		App: config.AppConfig{
			BaseURL:     "http://localhost:8000",
			FrontendURL: "http://localhost:8080",
		},
	}
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := newMemStore()
	mail := &capturingMailer{}
	bus := events.NewNoopBus()
	cfg := testConfig()

	users := &memUserRepo{s: store}
	pendingUsers := &memPendingUserRepo{s: store}
	vendors := &memVendorRepo{s: store}
	pendingVendors := &memPendingVendorRepo{s: store}
	venues := &memVenueRepo{s: store}

	authService := service.NewAuthService(users, pendingUsers, mail, bus, cfg)
	vendorService := service.NewVendorService(vendors, pendingVendors, mail, bus, cfg)
	venueService := service.NewVenueService(venues, vendors)
	adminService := service.NewAdminService(users, vendors, venues, bus)
	oauthService := service.NewOAuthService(users, &memStateStore{}, cfg)

	h := handlers.New(authService, vendorService, venueService, adminService, oauthService, allowAllRateLimit{}, cfg)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	return &apiFixture{store: store, mail: mail, server: server}
}

// ---------- Request helpers ----------

func (f *apiFixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (f *apiFixture) postJSON(t *testing.T, path, token string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return f.do(t, http.MethodPost, path, token, strings.NewReader(string(body)), "application/json")
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	return body.Code
}
