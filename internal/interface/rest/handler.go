// internal/interface/rest/handler.go
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/internal/usecase"
	"github.com/spirittours/travelcore/pkg/logger"
)

// Handler exposes the travel service over HTTP
type Handler struct {
	service *usecase.TravelService
	logger  logger.Logger
}

// NewHandler creates a new REST handler
func NewHandler(service *usecase.TravelService, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: provider.KindOf(err)})
}

// bookingStatusCode distinguishes caller errors from provider-side outages
func bookingStatusCode(err error) int {
	switch {
	case errors.Is(err, provider.ErrProviderNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrAvailabilityChanged):
		return http.StatusConflict
	case errors.Is(err, provider.ErrBookingRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, provider.ErrProviderAuthFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseParty(q map[string][]string) entity.Party {
	get := func(key string, def int) int {
		if vals, ok := q[key]; ok && len(vals) > 0 {
			if n, err := strconv.Atoi(vals[0]); err == nil {
				return n
			}
		}
		return def
	}
	return entity.Party{
		Adults:   get("adults", 1),
		Children: get("children", 0),
		Infants:  get("infants", 0),
		Rooms:    get("rooms", 1),
	}
}

func parseProviders(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SearchFlights handles GET /api/v1/flights/search
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	depart, err := parseDate(q.Get("depart"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid depart date, expected YYYY-MM-DD"})
		return
	}
	var returnDate time.Time
	if v := q.Get("return"); v != "" {
		if returnDate, err = parseDate(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid return date, expected YYYY-MM-DD"})
			return
		}
	}

	out, err := h.service.SearchFlights(r.Context(), q.Get("origin"), q.Get("destination"),
		depart, returnDate, parseParty(q), parseProviders(q.Get("providers")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SearchHotels handles GET /api/v1/hotels/search
func (h *Handler) SearchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	checkIn, err := parseDate(q.Get("checkin"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid checkin date, expected YYYY-MM-DD"})
		return
	}
	checkOut, err := parseDate(q.Get("checkout"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid checkout date, expected YYYY-MM-DD"})
		return
	}

	out, err := h.service.SearchHotels(r.Context(), q.Get("destination"),
		checkIn, checkOut, parseParty(q), parseProviders(q.Get("providers")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SearchCars handles GET /api/v1/cars/search
func (h *Handler) SearchCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pickup, err := parseDate(q.Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid from date, expected YYYY-MM-DD"})
		return
	}
	var dropoff time.Time
	if v := q.Get("to"); v != "" {
		if dropoff, err = parseDate(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid to date, expected YYYY-MM-DD"})
			return
		}
	}

	out, err := h.service.SearchCars(r.Context(), q.Get("location"),
		pickup, dropoff, parseParty(q), parseProviders(q.Get("providers")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type bookRequest struct {
	Provider string `json:"provider"`
	ItemID   string `json:"item_id"`
	AgencyID string `json:"agency_id,omitempty"`
	Party    struct {
		Passengers     []entity.Passenger `json:"passengers"`
		ContactEmail   string             `json:"contact_email"`
		ContactPhone   string             `json:"contact_phone"`
		IdempotencyKey string             `json:"idempotency_key"`
	} `json:"party"`
}

// Book handles POST /api/v1/bookings
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Provider == "" || req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "provider and item_id are required"})
		return
	}

	party := provider.PartyInfo{
		Passengers:     req.Party.Passengers,
		ContactEmail:   req.Party.ContactEmail,
		ContactPhone:   req.Party.ContactPhone,
		IdempotencyKey: req.Party.IdempotencyKey,
	}
	booking, err := h.service.BookService(r.Context(), req.Provider, req.ItemID, party, req.AgencyID)
	if err != nil {
		h.logger.Warn("booking dispatch failed", "provider", req.Provider, "error", err)
		writeError(w, bookingStatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// Cancel handles POST /api/v1/bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	booking, err := h.service.CancelBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ItemDetails handles GET /api/v1/providers/{provider}/items/{id}
func (h *Handler) ItemDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ItemDetails(r.Context(), chi.URLParam(r, "provider"), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotConfigured) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
