package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

// Signup handles end-user registration
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	if err := h.authService.Signup(r.Context(), &req); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

// Login handles end-user and admin authentication. Accepts a JSON body or
// a classic form post.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	response, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// VerifyEmail handles the link from the verification email. Browsers land
// here, so a successful verification redirects to the frontend; clients
// sending Accept: application/json get a JSON body instead.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing verification token", "INVALID_INPUT")
		return
	}

	userID, err := h.authService.VerifyEmail(r.Context(), token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Email verified successfully",
			"user_id": userID,
		})
		return
	}

	http.Redirect(w, r, h.config.App.FrontendURL+"/verification-success", http.StatusFound)
}

// ResendVerification re-sends the verification email for a staged signup
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent",
	})
}

// Me returns the authenticated user's profile
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return
	}

	user, err := h.authService.Me(r.Context(), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout acknowledges a sign-out. Sessions are stateless bearer tokens,
// so the server has nothing to revoke; clients discard the token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// wantsJSON distinguishes API clients from browsers following an email
// link. Accept headers are often lists ("application/json, */*"), so a
// substring match is the safe reading.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.Header.Get("Accept") == "" && r.Header.Get("Content-Type") == "application/json"
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (*domain.LoginRequest, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form body", "INVALID_INPUT")
			return nil, false
		}
		return &domain.LoginRequest{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}, true
	}

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return nil, false
	}
	return &req, true
}
