package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
)

// Routes assembles the full API surface.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	signupLimit := h.SignupRateLimit(10, time.Minute)

	// End-user and admin auth
	r.Route("/auth", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Get("/verify", h.VerifyEmail)
		r.With(signupLimit).Post("/resend-verification", h.ResendVerification)

		r.With(h.RequireUser).Get("/me", h.Me)
		r.With(h.RequireUser).Post("/logout", h.Logout)

		r.Route("/oauth/google", func(r chi.Router) {
			r.Get("/", h.GoogleLogin)
			r.Get("/callback", h.GoogleCallback)
		})
	})

	// Vendor track
	r.Route("/vendor", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", h.VendorSignup)
		r.Post("/login", h.VendorLogin)
		r.Get("/verify", h.VendorVerifyEmail)
		r.With(signupLimit).Post("/resend-verification", h.VendorResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireVendor)
			r.Get("/me", h.VendorProfile)
			r.Get("/profile", h.VendorProfile)
			r.Patch("/profile", h.VendorUpdateProfile)
			r.Put("/profile", h.VendorUpdateProfile)

			r.Route("/venues", func(r chi.Router) {
				r.Post("/", h.CreateVenue)
				r.Get("/", h.ListMyVenues)
				r.Get("/{id}", h.GetMyVenue)
				r.Put("/{id}", h.UpdateVenue)
				r.Delete("/{id}", h.DeleteVenue)
			})
		})
	})

	// Public venue catalog
	r.Route("/venues", func(r chi.Router) {
		r.Get("/", h.BrowseVenues)
		r.Get("/{id}", h.GetVenue)
	})

	// Admin surface
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/vendors", h.AdminListVendors)
		r.Get("/vendors/pending", h.AdminListPendingVendors)
		r.Get("/vendors/approved", h.AdminListApprovedVendors)
		r.Post("/vendors/approve", h.AdminApproveVendor)
		r.Get("/vendors/{id}", h.AdminGetVendor)
		r.Post("/vendors/{id}/decision", h.AdminDecideVendor)
		r.Get("/users", h.AdminListUsers)
		r.Get("/stats", h.AdminStats)
	})

	return r
}
