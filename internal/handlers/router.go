package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/notespace-app/notespace/internal/auth"
)

// NewRouter wires every route. The session is resolved once for the whole
// /api tree; routes that need an authenticated caller sit behind
// RequireAuth.
func NewRouter(h *Handlers, a *AuthHandlers, jwtService *auth.JWTService) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.SessionMiddleware(jwtService))

	// Public surface. GetNote does its own visibility check so public
	// notes stay readable without a session.
	api.HandleFunc("/auth/register", a.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", a.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", a.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", a.Session).Methods(http.MethodGet)
	api.HandleFunc("/notes/public", h.PublicNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id:[0-9]+}", h.GetNote).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	// Authenticated surface.
	s := api.NewRoute().Subrouter()
	s.Use(auth.RequireAuth)

	s.HandleFunc("/notes", h.ListNotes).Methods(http.MethodGet)
	s.HandleFunc("/notes", h.CreateNote).Methods(http.MethodPost)
	s.HandleFunc("/notes/{id:[0-9]+}", h.UpdateNote).Methods(http.MethodPut, http.MethodPatch)
	s.HandleFunc("/notes/{id:[0-9]+}", h.DeleteNote).Methods(http.MethodDelete)
	s.HandleFunc("/notes/{id:[0-9]+}/toggle-public", h.ToggleNotePublic).Methods(http.MethodPatch)
	s.HandleFunc("/notes/{id:[0-9]+}/toggle-pinned", h.ToggleNotePinned).Methods(http.MethodPatch)
	s.HandleFunc("/notes/{id:[0-9]+}/enhance", h.EnhanceNote).Methods(http.MethodPost)

	s.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	s.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	s.HandleFunc("/categories/{id:[0-9]+}", h.GetCategory).Methods(http.MethodGet)
	s.HandleFunc("/categories/{id:[0-9]+}", h.UpdateCategory).Methods(http.MethodPut, http.MethodPatch)
	s.HandleFunc("/categories/{id:[0-9]+}", h.DeleteCategory).Methods(http.MethodDelete)

	s.HandleFunc("/upload", h.UploadImage).Methods(http.MethodPost)

	return r
}
