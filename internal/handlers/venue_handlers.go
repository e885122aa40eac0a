package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shadiejo/shadiejo-api/internal/domain"
)

// venuePayload is the JSON shape for venue create/update. Multipart
// requests carry the same fields as form values with images as files.
type venuePayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	VenueType   string   `json:"venue_type"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Capacity    int      `json:"capacity"`
	PricePerDay float64  `json:"price_per_day"`
	Amenities   string   `json:"amenities"`
	Images      []string `json:"images"`
}

func (h *Handlers) decodeVenueRequest(w http.ResponseWriter, r *http.Request) (*domain.VenueRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var p venuePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, domain.ErrInvalidInput
		}
		return p.toRequest(), nil
	}

	// Multipart: gallery images come as files, everything else as fields.
	maxBody := 6*h.config.Upload.MaxVenueImageBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		return nil, err
	}

	capacity, _ := strconv.Atoi(r.FormValue("capacity"))
	price, _ := strconv.ParseFloat(r.FormValue("price_per_day"), 64)

	req := &domain.VenueRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		VenueType:   r.FormValue("venue_type"),
		City:        r.FormValue("city"),
		Address:     r.FormValue("address"),
		Capacity:    capacity,
		PricePerDay: price,
		Amenities:   r.FormValue("amenities"),
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["images"]) > 0 {
		var images []string
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			encoded, err := encodeUpload(file, "images", h.config.Upload.MaxVenueImageBytes)
			file.Close()
			if err != nil {
				return nil, err
			}
			images = append(images, *encoded)
		}
		encoded, err := json.Marshal(images)
		if err != nil {
			return nil, err
		}
		s := string(encoded)
		req.Images = &s
	}

	return req, nil
}

func (p *venuePayload) toRequest() *domain.VenueRequest {
	req := &domain.VenueRequest{
		Name:        p.Name,
		Description: p.Description,
		VenueType:   p.VenueType,
		City:        p.City,
		Address:     p.Address,
		Capacity:    p.Capacity,
		PricePerDay: p.PricePerDay,
		Amenities:   p.Amenities,
	}
	if p.Images != nil {
		encoded, _ := json.Marshal(p.Images)
		s := string(encoded)
		req.Images = &s
	}
	return req
}

// CreateVenue handles venue creation by an approved vendor
func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	req, err := h.decodeVenueRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	venue, err := h.venueService.Create(r.Context(), claims.Sub, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, venue)
}

// ListMyVenues returns all venues owned by the authenticated vendor
func (h *Handlers) ListMyVenues(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	venues, err := h.venueService.ListForVendor(r.Context(), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venues)
}

// GetMyVenue returns one venue owned by the authenticated vendor
func (h *Handlers) GetMyVenue(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", "INVALID_INPUT")
		return
	}

	venue, err := h.venueService.GetForVendor(r.Context(), id, claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venue)
}

// UpdateVenue handles updating a venue owned by the authenticated vendor
func (h *Handlers) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", "INVALID_INPUT")
		return
	}

	req, err := h.decodeVenueRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	venue, err := h.venueService.Update(r.Context(), id, claims.Sub, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venue)
}

// DeleteVenue handles deleting a venue owned by the authenticated vendor
func (h *Handlers) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", "INVALID_INPUT")
		return
	}

	if err := h.venueService.Delete(r.Context(), id, claims.Sub); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BrowseVenues is the public venue catalog with optional filters
func (h *Handlers) BrowseVenues(w http.ResponseWriter, r *http.Request) {
	filter := &domain.VenueFilter{
		City:      r.URL.Query().Get("city"),
		VenueType: r.URL.Query().Get("venue_type"),
	}
	if v := r.URL.Query().Get("min_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.MinCapacity = n
		}
	}

	venues, err := h.venueService.Browse(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venues)
}

// GetVenue returns one active venue from the public catalog
func (h *Handlers) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", "INVALID_INPUT")
		return
	}

	venue, err := h.venueService.GetPublic(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venue)
}
