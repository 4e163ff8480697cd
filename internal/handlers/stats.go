package handlers

import "net/http"

// Stats returns instance-wide counters for the landing page.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.respond(w, stats, http.StatusOK)
}
