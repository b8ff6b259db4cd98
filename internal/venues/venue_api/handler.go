package venue_api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/auth"
	"guestlist/internal/ledger"
	"guestlist/internal/logger"
	"guestlist/internal/models"
	"guestlist/internal/utils"
	"guestlist/internal/venues"
)

type Handler struct {
	Venues   *venues.Service
	Resolver *auth.Resolver
	Logger   *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/venues", func(r chi.Router) {
		r.Get("/", h.ListVenues)
		r.Post("/", h.CreateVenue)
		r.Get("/{venueID}", h.GetVenue)
		r.Put("/{venueID}", h.UpdateVenue)
		r.Post("/{venueID}/activate", h.ActivateVenue)
		r.Post("/{venueID}/deactivate", h.DeactivateVenue)
	})
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, err := h.Resolver.Resolve(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
		return models.Identity{}, false
	}
	return identity, true
}

type venueRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	venue, err := h.Venues.CreateVenue(identity, venues.CreateParams{
		Name:        req.Name,
		Category:    req.Category,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.Info("VENUE", "created "+venue.ID+" ("+venue.Name+")")
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Venue created", venue))
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	venue, err := h.Venues.GetVenue(identity, chi.URLParam(r, "venueID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Venue fetched", venue))
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	venueList, err := h.Venues.ListVenues(identity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Venues fetched", venueList))
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	venue, err := h.Venues.UpdateVenue(identity, chi.URLParam(r, "venueID"), venues.UpdateParams{
		Name:        req.Name,
		Category:    req.Category,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Venue updated", venue))
}

func (h *Handler) ActivateVenue(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) DeactivateVenue(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	venueID := chi.URLParam(r, "venueID")
	if err := h.Venues.SetActive(identity, venueID, active); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Venue updated", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, ledger.HTTPStatus(err), utils.ErrorResponse("Venue operation failed", err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
