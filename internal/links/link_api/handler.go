package link_api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/auth"
	"guestlist/internal/busdate"
	"guestlist/internal/ledger"
	"guestlist/internal/links"
	"guestlist/internal/logger"
	"guestlist/internal/models"
	"guestlist/internal/utils"
)

type Handler struct {
	Links        *links.Service
	Resolver     *auth.Resolver
	Logger       *logger.Logger
	PublicOrigin string
	CutoffHour   int
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/links", func(r chi.Router) {
		r.Get("/", h.ListLinks)
		r.Post("/", h.CreateLink)
		r.Get("/{linkID}", h.GetLink)
		r.Get("/{linkID}/qr", h.GetLinkQR)
		r.Post("/{linkID}/deactivate", h.DeactivateLink)
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

// linkResponse decorates a link with its shareable URL. The raw token is
// only exposed here, to staff who own the link.
type linkResponse struct {
	models.GuestLink
	Token     string `json:"token"`
	PublicURL string `json:"public_url"`
}

func (h *Handler) respond(link *models.GuestLink) linkResponse {
	return linkResponse{
		GuestLink: *link,
		Token:     link.Token,
		PublicURL: links.PublicURL(h.PublicOrigin, link.Token),
	}
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		VenueID    string     `json:"venue_id"`
		DJName     string     `json:"dj_name"`
		EventName  string     `json:"event_name"`
		TargetDate string     `json:"target_date"`
		MaxGuests  int        `json:"max_guests"`
		ExpiresAt  *time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.VenueID == "" {
		req.VenueID = identity.VenueID
	}

	link, err := h.Links.CreateLink(identity, links.CreateParams{
		VenueID:    req.VenueID,
		DJName:     req.DJName,
		EventName:  req.EventName,
		TargetDate: req.TargetDate,
		MaxGuests:  req.MaxGuests,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.LogLink("CREATE", link.ID, "dj="+link.DJName+" date="+link.TargetDate)
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Link created", h.respond(link)))
}

func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	link, err := h.Links.GetLink(identity, chi.URLParam(r, "linkID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Link fetched", h.respond(link)))
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	venueID := r.URL.Query().Get("venue")
	if venueID == "" {
		venueID = identity.VenueID
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = busdate.Today(h.CutoffHour)
	}

	linkList, err := h.Links.ListLinks(identity, venueID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]linkResponse, len(linkList))
	for i := range linkList {
		out[i] = h.respond(&linkList[i])
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Links fetched", out))
}

// GetLinkQR returns a PNG QR code of the public registration URL.
func (h *Handler) GetLinkQR(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	png, err := h.Links.QRCode(identity, chi.URLParam(r, "linkID"), h.PublicOrigin)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) DeactivateLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	linkID := chi.URLParam(r, "linkID")
	if err := h.Links.Deactivate(identity, linkID); err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.LogLink("DEACTIVATE", linkID, "by "+identity.UserID)
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Link deactivated", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, ledger.HTTPStatus(err), utils.ErrorResponse("Link operation failed", err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
