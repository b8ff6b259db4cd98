package guest_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/auth"
	"guestlist/internal/busdate"
	"guestlist/internal/cache"
	"guestlist/internal/ledger"
	"guestlist/internal/locks"
	"guestlist/internal/logger"
	"guestlist/internal/models"
	"guestlist/internal/utils"
)

// Handler serves the staff-side guest endpoints: creation, listing and
// the check-in state machine.
type Handler struct {
	Ledger     *ledger.Service
	Resolver   *auth.Resolver
	Locker     *locks.Locker
	Snapshots  *cache.SnapshotCache
	Logger     *logger.Logger
	CutoffHour int
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/guests", func(r chi.Router) {
		r.Get("/", h.ListGuests)
		r.Post("/", h.CreateGuest)
		r.Post("/{guestID}/checkin", h.CheckinGuest)
		r.Post("/{guestID}/uncheckin", h.UncheckinGuest)
		r.Delete("/{guestID}", h.DeleteGuest)
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

// ListGuests returns the venue's guests for a date. Polling clients hit
// this every few seconds; when the store fails we fall back to the last
// known good snapshot rather than erroring a background refresh.
func (h *Handler) ListGuests(w http.ResponseWriter, r *http.Request) {
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
	filter := ledger.ParseAttributionFilter(r.URL.Query().Get("filter"))
	order := ledger.ParseSortOrder(r.URL.Query().Get("sort"))

	guests, err := h.Ledger.ListGuests(identity, venueID, date, filter, order)
	if err != nil {
		if ledger.HTTPStatus(err) == http.StatusInternalServerError {
			// Store down: serve the snapshot if we have one
			if snap, found := h.Snapshots.Get(r.Context(), venueID, date); found {
				guests := filter.Apply(snap.Guests)
				ledger.SortGuests(guests, order)
				writeJSON(w, http.StatusOK, utils.StaleResponse("Serving cached guest list", guests))
				return
			}
		}
		h.writeError(w, "LIST", err)
		return
	}

	h.Snapshots.Put(r.Context(), venueID, date, guests)
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Guests fetched", guests))
}

func (h *Handler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		VenueID string `json:"venue_id"`
		Name    string `json:"name"`
		Date    string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.VenueID == "" {
		req.VenueID = identity.VenueID
	}
	if req.Date == "" {
		req.Date = busdate.Today(h.CutoffHour)
	}

	guest, err := h.Ledger.AddGuest(identity, req.VenueID, req.Name, req.Date)
	if err != nil {
		h.writeError(w, "CREATE", err)
		return
	}

	h.Snapshots.Invalidate(r.Context(), guest.VenueID, guest.TargetDate)
	h.Logger.LogGuest("CREATE", guest.ID, fmt.Sprintf("created by %s", identity.UserID))
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Guest created", guest))
}

func (h *Handler) CheckinGuest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "checkin", func(identity models.Identity, guestID string) (*models.Guest, error) {
		return h.Ledger.CheckIn(identity, guestID)
	})
}

func (h *Handler) UncheckinGuest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "uncheckin", func(identity models.Identity, guestID string) (*models.Guest, error) {
		return h.Ledger.UndoCheckIn(identity, guestID)
	})
}

func (h *Handler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "delete", func(identity models.Identity, guestID string) (*models.Guest, error) {
		return h.Ledger.DeleteGuest(identity, guestID)
	})
}

// transition runs one status change behind a per-record action lock so a
// double-tap cannot fire the same mutation twice while the first request
// is still in flight. Unrelated records are unaffected.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(models.Identity, string) (*models.Guest, error)) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	guestID := chi.URLParam(r, "guestID")

	acquired, err := h.Locker.Acquire(guestID, action, identity.UserID)
	if err != nil {
		// Lock layer down: proceed without duplicate suppression
		h.Logger.Warn("LOCKS", fmt.Sprintf("lock acquire failed for %s/%s: %v", guestID, action, err))
	} else if !acquired {
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Action already in flight", "duplicate request"))
		return
	} else {
		defer func() {
			if err := h.Locker.Release(guestID, action, identity.UserID); err != nil {
				h.Logger.Warn("LOCKS", fmt.Sprintf("lock release failed for %s/%s: %v", guestID, action, err))
			}
		}()
	}

	guest, err := fn(identity, guestID)
	if err != nil {
		h.writeError(w, action, err)
		return
	}

	h.Snapshots.Invalidate(r.Context(), guest.VenueID, guest.TargetDate)
	h.Logger.LogGuest(action, guest.ID, fmt.Sprintf("status=%s by %s", guest.Status, identity.UserID))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Guest updated", guest))
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	status := ledger.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("GUEST", fmt.Sprintf("[%s] %v", action, err))
	}
	writeJSON(w, status, utils.ErrorResponse("Guest operation failed", err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
