package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shadiejo/shadiejo-api/pkg/auth"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

func (h *Handlers) parseBearer(r *http.Request) *auth.Claims {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}

	claims, err := auth.Parse(strings.TrimPrefix(header, "Bearer "), h.config.Auth.JWTSecret)
	if err != nil {
		return nil
	}
	return claims
}

// RequireUser admits end-user and admin session tokens. Vendor tokens are
// a different principal and are rejected.
func (h *Handlers) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.parseBearer(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}
		if claims.Type == auth.TypeVendor {
			writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
			return
		}

		ctx := logger.WithUserID(r.Context(), claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireVendor admits vendor session tokens only.
func (h *Handlers) RequireVendor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.parseBearer(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}
		if claims.Type != auth.TypeVendor {
			writeError(w, http.StatusForbidden, "Vendor account required", "FORBIDDEN")
			return
		}

		ctx := logger.WithVendorID(r.Context(), claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits admin-typed tokens and re-checks the role in the
// database, so revoking the role takes effect before the token expires.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.parseBearer(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}
		if claims.Type != auth.TypeAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", "FORBIDDEN")
			return
		}

		isAdmin, err := h.adminService.IsAdmin(r.Context(), claims.Sub)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !isAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", "FORBIDDEN")
			return
		}

		ctx := logger.WithUserID(r.Context(), claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
