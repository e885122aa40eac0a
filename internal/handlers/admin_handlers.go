package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shadiejo/shadiejo-api/internal/domain"
	"github.com/shadiejo/shadiejo-api/internal/repository"
)

func vendorFilterFromQuery(r *http.Request) repository.VendorListFilter {
	switch r.URL.Query().Get("status") {
	case "pending":
		return repository.VendorsPending
	case "approved":
		return repository.VendorsApproved
	default:
		return repository.VendorsAll
	}
}

// AdminListVendors lists vendor accounts, optionally filtered by status
func (h *Handlers) AdminListVendors(w http.ResponseWriter, r *http.Request) {
	h.listVendors(w, r, vendorFilterFromQuery(r))
}

// AdminListPendingVendors and AdminListApprovedVendors are fixed-path
// forms of the status filter for clients that prefer sub-paths.
func (h *Handlers) AdminListPendingVendors(w http.ResponseWriter, r *http.Request) {
	h.listVendors(w, r, repository.VendorsPending)
}

func (h *Handlers) AdminListApprovedVendors(w http.ResponseWriter, r *http.Request) {
	h.listVendors(w, r, repository.VendorsApproved)
}

func (h *Handlers) listVendors(w http.ResponseWriter, r *http.Request, filter repository.VendorListFilter) {
	vendors, err := h.adminService.ListVendors(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendors)
}

// AdminGetVendor returns one vendor with ID documents for manual review
func (h *Handlers) AdminGetVendor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vendor ID", "INVALID_INPUT")
		return
	}

	vendor, err := h.adminService.GetVendor(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// AdminDecideVendor approves or rejects a vendor registration
func (h *Handlers) AdminDecideVendor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vendor ID", "INVALID_INPUT")
		return
	}

	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Approved == nil {
		writeError(w, http.StatusBadRequest, "Field 'approved' is required", "INVALID_INPUT")
		return
	}

	info, err := h.adminService.DecideVendor(r.Context(), &domain.VendorApprovalRequest{
		VendorID: id,
		Approved: *body.Approved,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// AdminApproveVendor takes the vendor ID in the body instead of the path.
// Same decision flow as AdminDecideVendor.
func (h *Handlers) AdminApproveVendor(w http.ResponseWriter, r *http.Request) {
	var req domain.VendorApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VendorID == 0 {
		writeError(w, http.StatusBadRequest, "Field 'vendor_id' is required", "INVALID_INPUT")
		return
	}

	info, err := h.adminService.DecideVendor(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// AdminListUsers pages through registered end users
func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.adminService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// AdminStats returns platform counters for the dashboard
func (h *Handlers) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
