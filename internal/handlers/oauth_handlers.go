package handlers

import (
	"net/http"
	"net/url"
)

// GoogleLogin starts the Google sign-in flow by redirecting to the
// provider's consent page. Returns 501 when Google is not configured.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.oauthService.Enabled() {
		writeError(w, http.StatusNotImplemented, "Google sign-in is not configured", "OAUTH_DISABLED")
		return
	}

	authURL, err := h.oauthService.AuthURL(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback finishes the Google sign-in flow. On success the browser
// is redirected to the frontend with the session token; API clients asking
// for JSON get the token response directly.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthService.Enabled() {
		writeError(w, http.StatusNotImplemented, "Google sign-in is not configured", "OAUTH_DISABLED")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	response, err := h.oauthService.HandleCallback(r.Context(), state, code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, response)
		return
	}

	redirect := h.config.App.FrontendURL + "/dashboard?token=" + url.QueryEscape(response.AccessToken)
	http.Redirect(w, r, redirect, http.StatusFound)
}
