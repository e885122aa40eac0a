package handlers

import (
	"errors"
	"net/http"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// respondError translates a service error into a stable HTTP status and
// machine-readable code. Anything unrecognized is a 500 with the detail
// kept out of the response body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large", "PAYLOAD_TOO_LARGE")
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with this email already exists", "EMAIL_EXISTS")
	case errors.Is(err, domain.ErrDuplicateNationalID):
		writeError(w, http.StatusConflict, "This CNIC number is already registered", "CNIC_EXISTS")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Incorrect email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, domain.ErrAccountNotVerified):
		writeError(w, http.StatusForbidden, "Email address is not verified", "EMAIL_NOT_VERIFIED")
	case errors.Is(err, domain.ErrAccountInactive):
		writeError(w, http.StatusForbidden, "Account is not active", "ACCOUNT_INACTIVE")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "Invalid verification token", "INVALID_TOKEN")
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusGone, "Verification token has expired. Please request a new one.", "TOKEN_EXPIRED")
	case errors.Is(err, domain.ErrNoPendingRecord):
		writeError(w, http.StatusNotFound, "No pending verification for this email", "NO_PENDING_VERIFICATION")
	case errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, "This email is already verified", "ALREADY_VERIFIED")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", "NOT_FOUND")
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large", "PAYLOAD_TOO_LARGE")
	case errors.Is(err, domain.ErrNotificationFailed):
		writeError(w, http.StatusBadGateway, "Could not send the verification email. Please try again later.", "NOTIFICATION_FAILED")
	case errors.Is(err, domain.ErrOAuthStateMismatch):
		writeError(w, http.StatusForbidden, "OAuth state is invalid or expired", "OAUTH_STATE_MISMATCH")
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}
