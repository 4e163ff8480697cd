package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/notespace-app/notespace/internal/store"
	"github.com/notespace-app/notespace/internal/uploads"
	"github.com/notespace-app/notespace/internal/views"
)

// defaultPerPage is the dashboard page size.
const defaultPerPage = 9

type Handlers struct {
	store    *store.Store
	views    *views.Counter
	uploader *uploads.Uploader // nil when uploads are not configured
	ai       *openai.Client    // nil when no API key is configured
	log      zerolog.Logger
}

func New(st *store.Store, vc *views.Counter, up *uploads.Uploader, ai *openai.Client, log zerolog.Logger) *Handlers {
	return &Handlers{
		store:    st,
		views:    vc,
		uploader: up,
		ai:       ai,
		log:      log,
	}
}

func (h *Handlers) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) error(w http.ResponseWriter, message string, status int) {
	h.respond(w, map[string]string{"error": message}, status)
}

// serverError logs the underlying cause and returns a generic 500 with no
// internal detail leaked.
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	h.error(w, "Internal server error", http.StatusInternalServerError)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// pageParam parses a 1-based page number. Anything invalid falls back to
// page 1, never an error.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func perPageParam(r *http.Request, fallback int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("perPage"))
	if err != nil || perPage < 1 || perPage > 100 {
		return fallback
	}
	return perPage
}

func totalPages(total, pinned, perPage int) int {
	remaining := total - pinned
	if remaining < 0 {
		remaining = 0
	}
	return (remaining + perPage - 1) / perPage
}
