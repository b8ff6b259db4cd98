package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/analytics"
	"guestlist/internal/auth"
	"guestlist/internal/busdate"
	"guestlist/internal/ledger"
	"guestlist/internal/logger"
	"guestlist/internal/utils"
)

type Handler struct {
	Analytics  *analytics.Service
	Resolver   *auth.Resolver
	Logger     *logger.Logger
	CutoffHour int
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/analytics/night", h.GetNightStats)
}

// GetNightStats returns the dashboard summary for one venue night:
// status counts, per-link usage and per-staff attribution.
func (h *Handler) GetNightStats(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Resolver.Resolve(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
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
	if !utils.ValidDate(date) {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date", "expected YYYY-MM-DD"))
		return
	}

	stats, err := h.Analytics.GetNightStats(r.Context(), identity, venueID, date)
	if err != nil {
		status := ledger.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.Logger.Error("ANALYTICS", fmt.Sprintf("night stats for %s/%s: %v", venueID, date, err))
		}
		writeJSON(w, status, utils.ErrorResponse("Analytics query failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Night stats fetched", stats))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
