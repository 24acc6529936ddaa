// Package adminapi exposes the lending state to operators over HTTP.
package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"stufflending/internal/calendar"
	"stufflending/internal/circulation"
	"stufflending/internal/journal"
	"stufflending/internal/membership"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const defaultEventLimit = 100

// EventStreamer reads the event journal in insertion order.
type EventStreamer interface {
	StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]journal.Event, error)
}

type Handler struct {
	directory *membership.Directory
	engine    circulation.Service
	events    EventStreamer
	mu        sync.Locker
}

// NewHandler serializes every request through mu, which must be the same
// locker the console holds.
func NewHandler(directory *membership.Directory, engine circulation.Service, events EventStreamer, mu sync.Locker) *Handler {
	return &Handler{directory: directory, engine: engine, events: events, mu: mu}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.serialize)
		r.Get("/members", h.handleMembers)
		r.Get("/items", h.handleItems)
		r.Get("/contracts", h.handleContracts)
		r.Get("/events", h.handleEvents)
		r.Post("/clock/advance", h.handleAdvance)
		r.Delete("/items/{itemID}/contracts/{contractID}", h.handleDeleteContract)
	})
	return r
}

func (h *Handler) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type memberView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Credits  int    `json:"credits"`
	Items    int    `json:"items"`
	Borrowed int    `json:"borrowed"`
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	members := h.directory.Members()
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{
			ID:       m.ID(),
			Username: m.Username(),
			Email:    m.Email(),
			Phone:    m.Phone(),
			Credits:  m.Credits(),
			Items:    m.NumberOfItems(),
			Borrowed: len(m.BorrowedItems()),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	h.engine.Refresh()
	items := h.directory.AllItems()
	if r.URL.Query().Get("available") == "true" {
		items = h.engine.AvailableItems()
	}
	if items == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleContracts(w http.ResponseWriter, r *http.Request) {
	contracts := h.directory.AllContracts()
	if contracts == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, contracts)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	from, limit := int64(0), defaultEventLimit
	if s := r.URL.Query().Get("from"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = n
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.events.StreamEvents(r.Context(), from, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []journal.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Days int `json:"days"`
	}{Days: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	today, err := h.engine.AdvanceDay(r.Context(), req.Days)
	if errors.Is(err, circulation.ErrInvalidAdvance) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Today calendar.Date `json:"today"`
	}{today})
}

func (h *Handler) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		http.Error(w, "invalid contract ID", http.StatusBadRequest)
		return
	}
	item, ok := h.directory.ItemByID(chi.URLParam(r, "itemID"))
	if !ok {
		http.Error(w, circulation.ErrItemNotFound.Error(), http.StatusNotFound)
		return
	}

	err = h.engine.DeleteContract(r.Context(), item, contractID)
	if errors.Is(err, circulation.ErrContractNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
