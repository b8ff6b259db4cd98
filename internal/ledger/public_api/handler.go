package public_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/ledger"
	"guestlist/internal/logger"
	"guestlist/internal/models"
	"guestlist/internal/utils"
)

// Handler serves the anonymous registration surface behind
// /guest?token=... links. No session required: the token is the
// credential and is re-validated on every request.
type Handler struct {
	Ledger *ledger.Service
	Logger *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/guest", func(r chi.Router) {
		r.Get("/validate", h.ValidateLink)
		r.Post("/register", h.RegisterGuest)
	})
}

type linkInfo struct {
	Link  models.GuestLinkPublic `json:"link"`
	Venue models.VenuePublic     `json:"venue"`
}

// ValidateLink tells the registration page whether the token is usable
// and what to display. Advisory only: the registration call re-checks.
func (h *Handler) ValidateLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	link, venue, err := h.Ledger.ValidateLink(token)
	if err != nil {
		h.writeError(w, "VALIDATE", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Link valid", linkInfo{
		Link:  link.Public(),
		Venue: venue.Public(),
	}))
}

func (h *Handler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Name  string `json:"name"`
		Date  string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	guest, err := h.Ledger.RegisterViaLink(req.Token, req.Name, req.Date)
	if err != nil {
		h.writeError(w, "REGISTER", err)
		return
	}

	h.Logger.LogGuest("REGISTER", guest.ID, fmt.Sprintf("via link %s", guest.LinkID))
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Guest registered", guest))
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	status := ledger.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("PUBLIC", fmt.Sprintf("[%s] %v", action, err))
	}
	writeJSON(w, status, utils.ErrorResponse("Registration failed", err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
