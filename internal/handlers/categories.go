package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notespace-app/notespace/internal/auth"
	"github.com/notespace-app/notespace/internal/models"
	"github.com/notespace-app/notespace/internal/store"
)

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	categories, err := h.store.ListCategories(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.respond(w, map[string]interface{}{"categories": categories}, http.StatusOK)
}

type createCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.error(w, "Name is required", http.StatusBadRequest)
		return
	}

	category, err := h.store.CreateCategory(r.Context(), userID, req.Name, req.Description, req.Color)
	if err == store.ErrDuplicate {
		h.error(w, "A category with this name already exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, category, http.StatusCreated)
}

// GetCategory returns one category together with a page of its notes.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := h.requireOwnCategory(w, r)
	if !ok {
		return
	}
	userID := auth.GetUserIDFromContext(r.Context())

	page := pageParam(r)
	perPage := perPageParam(r, defaultPerPage)

	filter := store.NoteFilter{
		UserID:     &userID,
		CategoryID: &category.ID,
		Search:     r.URL.Query().Get("q"),
	}
	notes, total, err := h.store.ListNotesFlat(r.Context(), filter, page, perPage)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, map[string]interface{}{
		"category":   category,
		"notes":      notes,
		"total":      total,
		"page":       page,
		"perPage":    perPage,
		"totalPages": (total + perPage - 1) / perPage,
	}, http.StatusOK)
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := h.requireOwnCategory(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var upd store.CategoryUpdate
	if v, okField := raw["name"]; okField {
		var name string
		if err := json.Unmarshal(v, &name); err != nil || strings.TrimSpace(name) == "" {
			h.error(w, "Name is required", http.StatusBadRequest)
			return
		}
		upd.Name = &name
	}
	if v, okField := raw["description"]; okField {
		upd.SetDescription = true
		if string(v) != "null" {
			var desc string
			if err := json.Unmarshal(v, &desc); err != nil {
				h.error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			upd.Description = &desc
		}
	}
	if v, okField := raw["color"]; okField {
		upd.SetColor = true
		if string(v) != "null" {
			var color string
			if err := json.Unmarshal(v, &color); err != nil {
				h.error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			upd.Color = &color
		}
	}

	updated, err := h.store.UpdateCategory(r.Context(), category.ID, upd)
	if err == store.ErrDuplicate {
		h.error(w, "A category with this name already exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, updated, http.StatusOK)
}

// DeleteCategory removes the category; its notes survive with their
// category reference cleared.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := h.requireOwnCategory(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(r.Context(), category.ID); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.respond(w, map[string]bool{"success": true}, http.StatusOK)
}

// requireOwnCategory mirrors requireOwnNote: 404 for missing, 403 for
// foreign-owned.
func (h *Handlers) requireOwnCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, err := pathID(r)
	if err != nil {
		h.error(w, "Invalid category ID", http.StatusBadRequest)
		return nil, false
	}

	category, err := h.store.GetCategory(r.Context(), id)
	if err == store.ErrNotFound {
		h.error(w, "Category not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}

	if category.UserID != auth.GetUserIDFromContext(r.Context()) {
		h.error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return category, true
}
