package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"rrstudy/internal/selection"
	"rrstudy/internal/service"
	"rrstudy/internal/session"
	"rrstudy/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

func respondWithJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondWithStudyError maps a rejected participant action to a status. The
// session is unchanged by every rejection, so they are not logged as errors.
func respondWithStudyError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnknownChoice):
		status = http.StatusBadRequest
	case errors.Is(err, selection.ErrUnknownTransition):
		status = http.StatusNotFound
	case errors.Is(err, selection.ErrStaleTransition):
		status = http.StatusGone
	case errors.Is(err, selection.ErrDebounced),
		errors.Is(err, selection.ErrTransitionInFlight),
		errors.Is(err, selection.ErrAlreadyStaged),
		errors.Is(err, selection.ErrNothingStaged),
		errors.Is(err, session.ErrNoActiveProblem),
		errors.Is(err, session.ErrInvalidIndex),
		errors.Is(err, service.ErrNextDisabled),
		errors.Is(err, service.ErrExperimentComplete),
		errors.Is(err, service.ErrNoProblemsOfType):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "", err)
		return
	}

	if status == http.StatusInternalServerError {
		respondWithError(w, status, ErrInternalServerError, "Error handling study action", err)
		return
	}
	respondWithJSON(w, status, errorResponse{Error: err.Error()})
}
