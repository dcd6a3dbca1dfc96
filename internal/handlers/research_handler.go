package handlers

import (
	"log"
	"net/http"

	"rrstudy/internal/export"
	"rrstudy/internal/service"
	"rrstudy/internal/storage"
)

// ResearchHandler serves the researcher API over stored sessions
type ResearchHandler struct {
	store   storage.Store
	exports *service.ExportService
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(store storage.Store, exports *service.ExportService) *ResearchHandler {
	return &ResearchHandler{store: store, exports: exports}
}

// ListSessions lists every stored session
func (h *ResearchHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error listing sessions", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// ExportSession downloads one stored session as CSV
func (h *ResearchHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	sessionID := r.PathValue("id")
	saved, found, err := h.store.LoadProgress(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error loading session", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
		return
	}

	result, ok, err := h.exports.Render(kind, saved.Completed)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error exporting session", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrNoData, "", nil)
		return
	}
	writeCSV(w, result)
}

// DeliverSession sends one stored session to the configured export destinations
func (h *ResearchHandler) DeliverSession(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	sessionID := r.PathValue("id")
	result, found, err := h.exports.DeliverSession(r.Context(), kind, sessionID)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to deliver export", "Error delivering export", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
		return
	}
	if result.Filename == "" {
		respondWithError(w, http.StatusNotFound, ErrNoData, "", nil)
		return
	}

	log.Printf("Delivered %s export of session %s", kind, sessionID)
	respondWithJSON(w, http.StatusOK, result)
}

// DeleteSession removes a stored session
func (h *ResearchHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.store.ClearProgress(r.Context(), sessionID); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error deleting session", err)
		return
	}
	log.Printf("Deleted stored session %s", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
