package user_api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/auth"
	"guestlist/internal/ledger"
	"guestlist/internal/logger"
	"guestlist/internal/models"
	"guestlist/internal/users"
	"guestlist/internal/utils"
)

type Handler struct {
	Users    *users.Service
	Resolver *auth.Resolver
	Logger   *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.InviteUser)
		r.Get("/me", h.GetMe)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/quota", h.UpdateQuota)
		r.Post("/{userID}/activate", h.ActivateUser)
		r.Post("/{userID}/deactivate", h.DeactivateUser)
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

func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
		VenueID     string `json:"venue_id"`
		GuestQuota  int    `json:"guest_quota"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.VenueID == "" {
		req.VenueID = identity.VenueID
	}

	user, err := h.Users.InviteUser(identity, users.InviteParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		VenueID:     req.VenueID,
		GuestQuota:  req.GuestQuota,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.Info("USER", "invited "+user.Email+" as "+user.Role+" by "+identity.UserID)
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("User invited", user))
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUser(identity, identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("User fetched", user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUser(identity, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("User fetched", user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	venueID := r.URL.Query().Get("venue")
	if venueID == "" {
		venueID = identity.VenueID
	}

	userList, err := h.Users.ListUsers(identity, venueID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Users fetched", userList))
}

func (h *Handler) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		GuestQuota int `json:"guest_quota"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	userID := chi.URLParam(r, "userID")
	user, err := h.Users.UpdateQuota(identity, userID, req.GuestQuota)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Quota is cached on the identity; drop the stale entry
	h.Resolver.Invalidate(r.Context(), userID)
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Quota updated", user))
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.Users.SetActive(identity, userID, active); err != nil {
		h.writeError(w, err)
		return
	}

	h.Resolver.Invalidate(r.Context(), userID)
	h.Logger.LogSecurity("USER", userID+" active="+boolString(active)+" by "+identity.UserID)
	writeJSON(w, http.StatusOK, utils.SuccessResponse("User updated", nil))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, ledger.HTTPStatus(err), utils.ErrorResponse("User operation failed", err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
