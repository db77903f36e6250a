package stats

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ntroshkin/explore-with-me/internal/model"
)

// Handler serves the stats HTTP contract: POST /hit and GET /stats.
type Handler struct {
	storage *Storage
}

// NewHandler constructs a Handler.
func NewHandler(storage *Storage) *Handler {
	return &Handler{storage: storage}
}

// Router builds the stats service route table.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Post("/hit", h.SaveHit)
	r.Get("/stats", h.GetStats)
	return r
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// SaveHit handles POST /hit
func (h *Handler) SaveHit(w http.ResponseWriter, r *http.Request) {
	var hit model.EndpointHit
	if err := json.NewDecoder(r.Body).Decode(&hit); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if hit.App == "" || hit.URI == "" || hit.IP == "" {
		respondError(w, http.StatusBadRequest, "app, uri and ip are required")
		return
	}
	if hit.Timestamp.IsZero() {
		hit.Timestamp = model.NewDateTime(time.Now())
	}
	if err := h.storage.SaveHit(r.Context(), hit); err != nil {
		log.Printf("save hit: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save hit")
		return
	}
	respond(w, http.StatusCreated, map[string]string{"status": "saved"})
}

// GetStats handles GET /stats?start&end&uris&unique
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := model.ParseDateTime(q.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start is required in format "+model.DateTimeLayout)
		return
	}
	end, err := model.ParseDateTime(q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "end is required in format "+model.DateTimeLayout)
		return
	}
	if start.After(end.Time) {
		respondError(w, http.StatusBadRequest, "start must not be after end")
		return
	}

	var uris []string
	for _, raw := range q["uris"] {
		for _, uri := range strings.Split(raw, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				uris = append(uris, uri)
			}
		}
	}
	unique := false
	if raw := q.Get("unique"); raw != "" {
		if unique, err = strconv.ParseBool(raw); err != nil {
			respondError(w, http.StatusBadRequest, "unique must be a boolean")
			return
		}
	}

	stats, err := h.storage.GetStats(r.Context(), start.Time, end.Time, uris, unique)
	if err != nil {
		log.Printf("get stats: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if stats == nil {
		stats = []model.ViewStats{}
	}
	respond(w, http.StatusOK, stats)
}
