package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/notespace-app/notespace/internal/auth"
	"github.com/notespace-app/notespace/internal/models"
	"github.com/notespace-app/notespace/internal/store"
)

// ListNotes serves the dashboard listing: the requester's notes filtered by
// search text, category and flags, split into an unbounded pinned section
// and a paginated unpinned section.
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	query := r.URL.Query()

	filter := store.NoteFilter{
		UserID: &userID,
		Search: query.Get("q"),
	}
	if v := query.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			// Unparseable category ids match nothing.
			h.respond(w, emptyPage(pageParam(r), perPageParam(r, defaultPerPage)), http.StatusOK)
			return
		}
		filter.CategoryID = &id
	}
	if v := query.Get("isPublic"); v == "true" || v == "false" {
		b := v == "true"
		filter.IsPublic = &b
	}
	if v := query.Get("isPinned"); v == "true" || v == "false" {
		b := v == "true"
		filter.IsPinned = &b
	}

	page := pageParam(r)
	perPage := perPageParam(r, defaultPerPage)

	result, err := h.store.ListNotes(r.Context(), filter, page, perPage)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, map[string]interface{}{
		"notes":       result.Notes,
		"pinnedNotes": result.PinnedNotes,
		"total":       result.Total,
		"page":        page,
		"perPage":     perPage,
		"totalPages":  totalPages(result.Total, len(result.PinnedNotes), perPage),
	}, http.StatusOK)
}

func emptyPage(page, perPage int) map[string]interface{} {
	return map[string]interface{}{
		"notes":       []models.Note{},
		"pinnedNotes": []models.Note{},
		"total":       0,
		"page":        page,
		"perPage":     perPage,
		"totalPages":  0,
	}
}

// PublicNotes serves the unauthenticated community listing: public notes
// only, never scoped to an owner.
func (h *Handlers) PublicNotes(w http.ResponseWriter, r *http.Request) {
	isPublic := true
	filter := store.NoteFilter{
		IsPublic: &isPublic,
		Search:   r.URL.Query().Get("q"),
	}

	page := pageParam(r)
	perPage := perPageParam(r, defaultPerPage)

	notes, total, err := h.store.ListNotesFlat(r.Context(), filter, page, perPage)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, map[string]interface{}{
		"notes":      notes,
		"total":      total,
		"page":       page,
		"perPage":    perPage,
		"totalPages": (total + perPage - 1) / perPage,
	}, http.StatusOK)
}

type createNoteRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsPublic   bool   `json:"isPublic"`
	IsPinned   bool   `json:"isPinned"`
	CategoryID *int64 `json:"categoryId"`
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		h.error(w, "Content is required", http.StatusBadRequest)
		return
	}
	if req.CategoryID != nil && !h.ownsCategory(w, r, userID, *req.CategoryID) {
		return
	}

	note, err := h.store.CreateNote(r.Context(), userID, store.CreateNoteParams{
		Title:      req.Title,
		Content:    req.Content,
		IsPublic:   req.IsPublic,
		IsPinned:   req.IsPinned,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, note, http.StatusCreated)
}

// ownsCategory writes an error response and returns false unless the
// category exists and belongs to the user.
func (h *Handlers) ownsCategory(w http.ResponseWriter, r *http.Request, userID, categoryID int64) bool {
	category, err := h.store.GetCategory(r.Context(), categoryID)
	if err == store.ErrNotFound {
		h.error(w, "Category not found", http.StatusBadRequest)
		return false
	}
	if err != nil {
		h.serverError(w, r, err)
		return false
	}
	if category.UserID != userID {
		h.error(w, "Category not found", http.StatusBadRequest)
		return false
	}
	return true
}

// GetNote returns a single note. Private notes are visible to their owner
// only; for everyone else they are indistinguishable from missing notes.
func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.error(w, "Invalid note ID", http.StatusBadRequest)
		return
	}

	note, err := h.store.GetNote(r.Context(), id)
	if err == store.ErrNotFound {
		h.error(w, "Note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())
	if !note.IsPublic && note.UserID != userID {
		// Deliberately the same answer as a missing note, so the
		// existence of private notes is not leaked.
		h.error(w, "Note not found", http.StatusNotFound)
		return
	}

	if note.IsPublic {
		if note.UserID != userID {
			h.views.Record(r.Context(), note.ID)
		}
		note.Views = h.views.Count(r.Context(), note.ID)
	}

	h.respond(w, note, http.StatusOK)
}

type updateNoteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPublic *bool   `json:"isPublic"`
	IsPinned *bool   `json:"isPinned"`
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.requireOwnNote(w, r)
	if !ok {
		return
	}
	userID := auth.GetUserIDFromContext(r.Context())

	// Decode twice: the struct for the typed fields, the raw map to tell
	// "categoryId": null (detach) apart from an absent key.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var req updateNoteRequest
	for field, target := range map[string]interface{}{
		"title": &req.Title, "content": &req.Content,
		"isPublic": &req.IsPublic, "isPinned": &req.IsPinned,
	} {
		if v, okField := raw[field]; okField {
			if err := json.Unmarshal(v, target); err != nil {
				h.error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		h.error(w, "Title is required", http.StatusBadRequest)
		return
	}

	upd := store.NoteUpdate{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		IsPinned: req.IsPinned,
	}
	if rawCat, okField := raw["categoryId"]; okField {
		upd.SetCategory = true
		if string(rawCat) != "null" {
			var catID int64
			if err := json.Unmarshal(rawCat, &catID); err != nil {
				h.error(w, "Invalid category ID", http.StatusBadRequest)
				return
			}
			if !h.ownsCategory(w, r, userID, catID) {
				return
			}
			upd.CategoryID = &catID
		}
	}

	updated, err := h.store.UpdateNote(r.Context(), note.ID, upd)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, updated, http.StatusOK)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.requireOwnNote(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteNote(r.Context(), note.ID); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *Handlers) ToggleNotePublic(w http.ResponseWriter, r *http.Request) {
	note, ok := h.requireOwnNote(w, r)
	if !ok {
		return
	}

	updated, err := h.store.ToggleNotePublic(r.Context(), note.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.respond(w, updated, http.StatusOK)
}

func (h *Handlers) ToggleNotePinned(w http.ResponseWriter, r *http.Request) {
	note, ok := h.requireOwnNote(w, r)
	if !ok {
		return
	}

	updated, err := h.store.ToggleNotePinned(r.Context(), note.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.respond(w, updated, http.StatusOK)
}

// requireOwnNote loads the note addressed by the route and enforces the
// ownership guard every mutation shares: a missing note is 404, someone
// else's note is 403. The two must stay distinct outcomes.
func (h *Handlers) requireOwnNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, err := pathID(r)
	if err != nil {
		h.error(w, "Invalid note ID", http.StatusBadRequest)
		return nil, false
	}

	note, err := h.store.GetNote(r.Context(), id)
	if err == store.ErrNotFound {
		h.error(w, "Note not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}

	if note.UserID != auth.GetUserIDFromContext(r.Context()) {
		h.error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return note, true
}
