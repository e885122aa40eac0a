package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

func vendorSignupForm(t *testing.T, fields map[string]string, frontSize, backSize int) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if frontSize > 0 {
		fw, err := w.CreateFormFile("cnic_front", "front.jpg")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(bytes.Repeat([]byte{0xAB}, frontSize))
	}
	if backSize > 0 {
		fw, err := w.CreateFormFile("cnic_back", "back.jpg")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(bytes.Repeat([]byte{0xCD}, backSize))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func defaultVendorFields(email string) map[string]string {
	return map[string]string{
		"name":        "Grand Marquee",
		"email":       email,
		"phone":       "03211234567",
		"cnic_number": "35202-1234567-1",
		"password":    "vendorsecret1",
	}
}

func signupVendor(t *testing.T, f *apiFixture, email string) {
	t.Helper()
	body, contentType := vendorSignupForm(t, defaultVendorFields(email), 256, 256)
	resp := f.do(t, http.MethodPost, "/vendor/signup", "", body, contentType)
	wantStatus(t, resp, http.StatusCreated)
	resp.Body.Close()
}

func verifyVendor(t *testing.T, f *apiFixture) {
	t.Helper()
	resp := f.do(t, http.MethodGet, "/vendor/verify?token="+f.mail.token(), "", nil, "")
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func approveVendor(t *testing.T, f *apiFixture, vendorID int64) {
	t.Helper()
	adminToken := makeAdmin(t, f)
	resp := f.postJSON(t, "/admin/vendors/1/decision", adminToken, map[string]bool{"approved": true})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	_ = vendorID
}

func makeAdmin(t *testing.T, f *apiFixture) string {
	t.Helper()
	signupUser(t, f, "ops@shadiejo.com", "adminpassword")
	verifyUser(t, f)
	f.store.mu.Lock()
	for _, u := range f.store.users {
		if u.Email == "ops@shadiejo.com" {
			u.Role = domain.RoleAdmin
		}
	}
	f.store.mu.Unlock()
	return loginUser(t, f, "ops@shadiejo.com", "adminpassword")
}

func loginVendor(t *testing.T, f *apiFixture, email, password string) string {
	t.Helper()
	resp := f.postJSON(t, "/vendor/login", "", map[string]string{"email": email, "password": password})
	wantStatus(t, resp, http.StatusOK)
	var body domain.TokenResponse
	decodeBody(t, resp, &body)
	return body.AccessToken
}

func TestVendorSignupNormalizesCNIC(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")

	f.store.mu.Lock()
	rec := f.store.pendingVendors["marquee@example.com"]
	f.store.mu.Unlock()
	if rec == nil {
		t.Fatal("vendor signup not staged")
	}
	if rec.CNICNumber != "3520212345671" {
		t.Fatalf("cnic = %q, want dashes stripped", rec.CNICNumber)
	}
	if rec.CNICFrontImage == nil || rec.CNICBackImage == nil {
		t.Fatal("ID images not captured")
	}
	if f.mail.lastKind != "vendor" {
		t.Fatalf("verification mail kind = %q", f.mail.lastKind)
	}
}

func TestVendorSignupWithoutImages(t *testing.T) {
	f := newAPIFixture(t)

	// ID documents are optional at signup; vendors can supply them later.
	body, contentType := vendorSignupForm(t, defaultVendorFields("marquee@example.com"), 0, 0)
	resp := f.do(t, http.MethodPost, "/vendor/signup", "", body, contentType)
	wantStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	f.store.mu.Lock()
	rec := f.store.pendingVendors["marquee@example.com"]
	f.store.mu.Unlock()
	if rec == nil {
		t.Fatal("vendor signup not staged")
	}
	if rec.CNICFrontImage != nil || rec.CNICBackImage != nil {
		t.Fatal("expected no ID documents on record")
	}
}

func TestVendorSignupFrontImageOnly(t *testing.T) {
	f := newAPIFixture(t)

	body, contentType := vendorSignupForm(t, defaultVendorFields("marquee@example.com"), 256, 0)
	resp := f.do(t, http.MethodPost, "/vendor/signup", "", body, contentType)
	wantStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	f.store.mu.Lock()
	rec := f.store.pendingVendors["marquee@example.com"]
	f.store.mu.Unlock()
	if rec == nil {
		t.Fatal("vendor signup not staged")
	}
	if rec.CNICFrontImage == nil {
		t.Fatal("front image not captured")
	}
	if rec.CNICBackImage != nil {
		t.Fatal("back image should be absent")
	}
}

func TestVendorSignupOversizedImage(t *testing.T) {
	f := newAPIFixture(t)

	// Test config caps ID images at 1024 bytes.
	body, contentType := vendorSignupForm(t, defaultVendorFields("marquee@example.com"), 1500, 256)
	resp := f.do(t, http.MethodPost, "/vendor/signup", "", body, contentType)
	wantStatus(t, resp, http.StatusRequestEntityTooLarge)
	if code := errorCode(t, resp); code != "PAYLOAD_TOO_LARGE" {
		t.Fatalf("code = %s", code)
	}
}

func TestVendorSignupDuplicateCNIC(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "first@example.com")

	// Different email, same CNIC, still staged: rejected.
	body, contentType := vendorSignupForm(t, defaultVendorFields("second@example.com"), 256, 256)
	resp := f.do(t, http.MethodPost, "/vendor/signup", "", body, contentType)
	wantStatus(t, resp, http.StatusConflict)
	if code := errorCode(t, resp); code != "CNIC_EXISTS" {
		t.Fatalf("code = %s", code)
	}
}

func TestVendorLoginBlockedUntilApproved(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")

	// Unverified: login reports the verification step.
	resp := f.postJSON(t, "/vendor/login", "", map[string]string{
		"email": "marquee@example.com", "password": "vendorsecret1",
	})
	wantStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	verifyVendor(t, f)

	// Verified but unapproved: still blocked, with the approval state.
	resp = f.postJSON(t, "/vendor/login", "", map[string]string{
		"email": "marquee@example.com", "password": "vendorsecret1",
	})
	wantStatus(t, resp, http.StatusForbidden)
	if code := errorCode(t, resp); code != "ACCOUNT_INACTIVE" {
		t.Fatalf("code = %s", code)
	}

	approveVendor(t, f, 1)

	token := loginVendor(t, f, "marquee@example.com", "vendorsecret1")
	if token == "" {
		t.Fatal("expected a vendor session token")
	}
}

func TestVendorApprovalRequiresVerifiedVendor(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := makeAdmin(t, f)

	// No such vendor.
	resp := f.postJSON(t, "/admin/vendors/99/decision", adminToken, map[string]bool{"approved": true})
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestAdminApproveVendorByBody(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")
	verifyVendor(t, f)
	adminToken := makeAdmin(t, f)

	// Decision addressed by body instead of path.
	resp := f.postJSON(t, "/admin/vendors/approve", adminToken, map[string]interface{}{
		"vendor_id": 1, "approved": true,
	})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	loginVendor(t, f, "marquee@example.com", "vendorsecret1")

	// Missing vendor_id is a client error.
	resp = f.postJSON(t, "/admin/vendors/approve", adminToken, map[string]bool{"approved": true})
	wantStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "INVALID_INPUT" {
		t.Fatalf("code = %s", code)
	}
}

func TestVendorProfileUpdate(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")
	verifyVendor(t, f)
	approveVendor(t, f, 1)
	token := loginVendor(t, f, "marquee@example.com", "vendorsecret1")

	resp := f.do(t, http.MethodGet, "/vendor/profile", token, nil, "")
	wantStatus(t, resp, http.StatusOK)
	var vendor domain.Vendor
	decodeBody(t, resp, &vendor)
	if vendor.Email != "marquee@example.com" {
		t.Fatalf("unexpected profile: %+v", vendor)
	}

	req, err := http.NewRequest(http.MethodPatch, f.server.URL+"/vendor/profile",
		bytes.NewReader([]byte(`{"name":"Grand Marquee Lahore"}`)))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	patchResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, patchResp, http.StatusOK)
	var updated domain.Vendor
	decodeBody(t, patchResp, &updated)
	if updated.Name != "Grand Marquee Lahore" {
		t.Fatalf("name = %q", updated.Name)
	}
	// Email is immutable through this endpoint.
	if updated.Email != "marquee@example.com" {
		t.Fatalf("email changed: %q", updated.Email)
	}
}

func TestVendorEndpointsRejectUserTokens(t *testing.T) {
	f := newAPIFixture(t)

	signupUser(t, f, "ayesha@example.com", "supersecret1")
	verifyUser(t, f)
	userToken := loginUser(t, f, "ayesha@example.com", "supersecret1")

	resp := f.do(t, http.MethodGet, "/vendor/profile", userToken, nil, "")
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestVenueLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")
	verifyVendor(t, f)
	approveVendor(t, f, 1)
	token := loginVendor(t, f, "marquee@example.com", "vendorsecret1")

	resp := f.postJSON(t, "/vendor/venues/", token, map[string]interface{}{
		"name":          "Rose Garden Hall",
		"venue_type":    "banquet",
		"city":          "Lahore",
		"address":       "12 Canal Road",
		"capacity":      400,
		"price_per_day": 150000,
	})
	wantStatus(t, resp, http.StatusCreated)
	var venue domain.Venue
	decodeBody(t, resp, &venue)
	if venue.ID == 0 || venue.VendorID != 1 {
		t.Fatalf("unexpected venue: %+v", venue)
	}

	// Public catalog sees it.
	resp = f.do(t, http.MethodGet, "/venues/?city=lahore", "", nil, "")
	wantStatus(t, resp, http.StatusOK)
	var listed []domain.Venue
	decodeBody(t, resp, &listed)
	if len(listed) != 1 || listed[0].Name != "Rose Garden Hall" {
		t.Fatalf("public listing = %+v", listed)
	}

	// Filter that excludes it.
	resp = f.do(t, http.MethodGet, "/venues/?min_capacity=1000", "", nil, "")
	wantStatus(t, resp, http.StatusOK)
	var none []domain.Venue
	decodeBody(t, resp, &none)
	if len(none) != 0 {
		t.Fatalf("expected empty listing, got %+v", none)
	}

	// Delete, then the public catalog is empty.
	resp = f.do(t, http.MethodDelete, "/vendor/venues/1", token, nil, "")
	wantStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/venues/1", "", nil, "")
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestVenueWritesBlockedForSuspendedVendor(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")
	verifyVendor(t, f)
	approveVendor(t, f, 1)
	token := loginVendor(t, f, "marquee@example.com", "vendorsecret1")

	// Admin pulls the approval after login.
	f.store.mu.Lock()
	f.store.vendors[1].IsActive = false
	f.store.mu.Unlock()

	resp := f.postJSON(t, "/vendor/venues/", token, map[string]interface{}{
		"name": "X", "venue_type": "hall", "city": "Lahore", "address": "Somewhere", "capacity": 10,
	})
	wantStatus(t, resp, http.StatusForbidden)
	if code := errorCode(t, resp); code != "ACCOUNT_INACTIVE" {
		t.Fatalf("code = %s", code)
	}
}

func TestAdminVendorListing(t *testing.T) {
	f := newAPIFixture(t)

	signupVendor(t, f, "marquee@example.com")
	verifyVendor(t, f)
	adminToken := makeAdmin(t, f)

	resp := f.do(t, http.MethodGet, "/admin/vendors?status=pending", adminToken, nil, "")
	wantStatus(t, resp, http.StatusOK)
	var pending []domain.VendorInfo
	decodeBody(t, resp, &pending)
	if len(pending) != 1 || pending[0].Email != "marquee@example.com" {
		t.Fatalf("pending vendors = %+v", pending)
	}

	// The fixed sub-path returns the same filtered view.
	resp = f.do(t, http.MethodGet, "/admin/vendors/pending", adminToken, nil, "")
	wantStatus(t, resp, http.StatusOK)
	var pendingAlias []domain.VendorInfo
	decodeBody(t, resp, &pendingAlias)
	if len(pendingAlias) != 1 || pendingAlias[0].Email != "marquee@example.com" {
		t.Fatalf("pending sub-path vendors = %+v", pendingAlias)
	}

	resp = f.do(t, http.MethodGet, "/admin/vendors/approved", adminToken, nil, "")
	wantStatus(t, resp, http.StatusOK)
	var approved []domain.VendorInfo
	decodeBody(t, resp, &approved)
	if len(approved) != 0 {
		t.Fatalf("approved vendors = %+v", approved)
	}

	// Listing carries no ID-document payloads; the detail view does.
	resp = f.do(t, http.MethodGet, "/admin/vendors/1", adminToken, nil, "")
	wantStatus(t, resp, http.StatusOK)
	var detail domain.Vendor
	decodeBody(t, resp, &detail)
	if detail.CNICFrontImage == nil || detail.CNICBackImage == nil {
		t.Fatal("detail view should include ID documents")
	}
}
