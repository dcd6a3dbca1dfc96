package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"rrstudy/internal/catalog"
	"rrstudy/internal/export"
	"rrstudy/internal/models"
	"rrstudy/internal/security"
	"rrstudy/internal/selection"
	"rrstudy/internal/service"
	"rrstudy/internal/session"
)

// StudyHandler serves the participant API
type StudyHandler struct {
	studies  *service.StudyService
	exports  *service.ExportService
	registry *Registry
	tokens   *security.TokenIssuer
	csrf     *security.CSRFGenerator
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studies *service.StudyService, exports *service.ExportService, registry *Registry, tokens *security.TokenIssuer, csrf *security.CSRFGenerator) *StudyHandler {
	return &StudyHandler{
		studies:  studies,
		exports:  exports,
		registry: registry,
		tokens:   tokens,
		csrf:     csrf,
	}
}

type studyResponse struct {
	service.View
	CSRFToken  string                `json:"csrf_token,omitempty"`
	Events     []session.Topic       `json:"events,omitempty"`
	Transition *selection.Transition `json:"transition,omitempty"`
	Finish     *service.FinishResult `json:"finish,omitempty"`
	Warning    string                `json:"warning,omitempty"`
}

type selectRequest struct {
	ChoiceID string `json:"choice_id"`
	Slot     *int   `json:"slot"`
}

type commitRequest struct {
	Token string `json:"token"`
}

type switchRequest struct {
	GameType string `json:"game_type"`
}

type gameTypeSummary struct {
	Type models.GameType `json:"type"`
	catalog.GameTypeInfo
	Count int `json:"count"`
}

// Catalog describes the problem set
func (h *StudyHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.studies.Catalog()
	types := make([]gameTypeSummary, 0, len(models.GameTypes))
	for _, t := range models.GameTypes {
		info, _ := catalog.Info(t)
		types = append(types, gameTypeSummary{Type: t, GameTypeInfo: info, Count: len(cat.ByType(t))})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"problems":   cat.Len(),
		"game_types": types,
	})
}

// Start begins a new study for the caller, keeping their participant ID
// when the cookie is still valid
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	participantID := ""
	if cookie, err := r.Cookie(security.ParticipantCookieName); err == nil {
		if claims, err := h.tokens.Parse(cookie.Value); err == nil {
			participantID = claims.Subject
		}
	}
	if participantID == "" {
		participantID = security.NewParticipantID()
	}

	entry := h.registry.Open(participantID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	study := h.studies.NewStudy()
	entry.attach(study)
	if err := study.Start(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error starting study", err)
		return
	}

	if err := h.setCookie(w, r, entry); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing participant token", err)
		return
	}

	log.Printf("Participant %s started session %s", participantID, study.SessionID())
	h.respond(w, http.StatusCreated, entry, studyResponse{})
}

// Show returns the current view of the study
func (h *StudyHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, entryFromContext(r.Context()), studyResponse{})
}

// Select applies a pick
func (h *StudyHandler) Select(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChoiceID == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	slot := -1
	if req.Slot != nil {
		slot = *req.Slot
	}

	t, err := entry.study.Select(req.ChoiceID, slot)
	if err != nil {
		respondWithStudyError(w, err)
		return
	}
	h.respondTransition(w, entry, t)
}

// Commit finalizes a pending transition once its animation has finished
func (h *StudyHandler) Commit(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	t, err := entry.study.Commit(req.Token)
	if err != nil {
		respondWithStudyError(w, err)
		return
	}
	h.respondTransition(w, entry, t)
}

// Unstage returns the staged choice to its slot
func (h *StudyHandler) Unstage(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	t, err := entry.study.Unstage()
	if err != nil {
		respondWithStudyError(w, err)
		return
	}
	h.respondTransition(w, entry, t)
}

// Next finishes the current problem and moves on
func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	result, err := entry.study.FinishProblem(r.Context())
	if err != nil {
		respondWithStudyError(w, err)
		return
	}

	resp := studyResponse{Finish: &result}
	if !result.Persisted {
		resp.Warning = "Progress could not be saved; continuing without storage"
	}
	h.respond(w, http.StatusOK, entry, resp)
}

// Switch jumps to the next problem of a game type
func (h *StudyHandler) Switch(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	gameType, err := models.ParseGameType(req.GameType)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	if err := entry.study.SwitchToGameType(r.Context(), gameType); err != nil {
		respondWithStudyError(w, err)
		return
	}
	h.respond(w, http.StatusOK, entry, studyResponse{})
}

// Restart discards the study and its stored progress
func (h *StudyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	resp := studyResponse{}
	if err := entry.study.Restart(r.Context()); err != nil {
		resp.Warning = "Stored progress could not be cleared"
	}
	if err := h.setCookie(w, r, entry); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing participant token", err)
		return
	}
	h.respond(w, http.StatusOK, entry, resp)
}

// Report returns the end-of-study summary
func (h *StudyHandler) Report(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	rep, ok := entry.study.Report()
	if !ok {
		respondWithError(w, http.StatusNotFound, "No data for report", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, rep)
}

// Export downloads the participant's data as CSV
func (h *StudyHandler) Export(w http.ResponseWriter, r *http.Request) {
	entry := entryFromContext(r.Context())

	kind, err := export.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	result, ok, err := h.exports.Render(kind, entry.study.State().Completed())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error exporting study", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, ErrNoData, "", nil)
		return
	}
	writeCSV(w, result)
}

func (h *StudyHandler) setCookie(w http.ResponseWriter, r *http.Request, entry *studyEntry) error {
	token, expires, err := h.tokens.Issue(entry.participantID, entry.study.SessionID())
	if err != nil {
		return err
	}
	http.SetCookie(w, security.CreateParticipantCookie(r, token, expires))
	return nil
}

func (h *StudyHandler) respondTransition(w http.ResponseWriter, entry *studyEntry, t selection.Transition) {
	resp := studyResponse{Transition: &t}
	if t.Warning != nil {
		resp.Warning = t.Warning.Error()
	}
	h.respond(w, http.StatusOK, entry, resp)
}

func (h *StudyHandler) respond(w http.ResponseWriter, status int, entry *studyEntry, resp studyResponse) {
	resp.View = entry.study.View()
	resp.Events = entry.drainEvents()
	if token, err := h.csrf.GenerateToken(entry.participantID); err == nil {
		resp.CSRFToken = token
	}
	respondWithJSON(w, status, resp)
}

func writeCSV(w http.ResponseWriter, result service.ExportResult) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		log.Printf("Error writing export: %v", err)
	}
}
