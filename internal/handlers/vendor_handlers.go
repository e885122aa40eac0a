package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

// VendorSignup handles vendor registration. The request is multipart form
// data carrying the profile fields plus up to two optional CNIC document
// images; vendors without them can still register and upload later.
func (h *Handlers) VendorSignup(w http.ResponseWriter, r *http.Request) {
	// Two ID images plus form fields; anything bigger is rejected outright.
	maxBody := 2*h.config.Upload.MaxIDImageBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(maxBody); err != nil {
		respondError(w, r, err)
		return
	}

	req := domain.VendorSignupRequest{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Phone:      r.FormValue("phone"),
		CNICNumber: r.FormValue("cnic_number"),
		Password:   r.FormValue("password"),
	}

	front, err := h.formFileBase64(r, "cnic_front", h.config.Upload.MaxIDImageBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	back, err := h.formFileBase64(r, "cnic_back", h.config.Upload.MaxIDImageBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	req.CNICFrontImage = front
	req.CNICBackImage = back

	if err := h.vendorService.Signup(r.Context(), &req); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

// VendorVerifyEmail handles the link from the vendor verification email
func (h *Handlers) VendorVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing verification token", "INVALID_INPUT")
		return
	}

	vendorID, err := h.vendorService.VerifyEmail(r.Context(), token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Email verified successfully. Your account is pending admin approval.",
			"vendor_id": vendorID,
		})
		return
	}

	http.Redirect(w, r, h.config.App.FrontendURL+"/vendor/verification-success", http.StatusFound)
}

// VendorResendVerification re-sends the vendor verification email
func (h *Handlers) VendorResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", "INVALID_INPUT")
		return
	}

	if err := h.vendorService.ResendVerification(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent",
	})
}

// VendorLogin handles vendor authentication
func (h *Handlers) VendorLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	response, err := h.vendorService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// VendorProfile returns the authenticated vendor's account
func (h *Handlers) VendorProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	vendor, err := h.vendorService.Profile(r.Context(), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// VendorUpdateProfile applies a partial update to the vendor's own profile
func (h *Handlers) VendorUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.VendorProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	vendor, err := h.vendorService.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// formFileBase64 reads one uploaded file and returns it base64 encoded.
// Returns nil without error when the field is absent; returns
// ErrPayloadTooLarge when the file exceeds maxBytes.
func (h *Handlers) formFileBase64(r *http.Request, field string, maxBytes int64) (*string, error) {
	file, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s", domain.ErrInvalidInput, field)
	}
	defer file.Close()

	return encodeUpload(file, field, maxBytes)
}

func encodeUpload(file multipart.File, field string, maxBytes int64) (*string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds the size limit", domain.ErrPayloadTooLarge, field)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, field)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return &encoded, nil
}
