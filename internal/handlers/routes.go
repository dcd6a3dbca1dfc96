package handlers

import (
	"net/http"

	"rrstudy/internal/security"
	"rrstudy/internal/service"
)

// Dependencies are the services the HTTP layer is built from
type Dependencies struct {
	Studies    *service.StudyService
	Exports    *service.ExportService
	Tokens     *security.TokenIssuer
	CSRF       *security.CSRFGenerator
	Limiter    *security.RateLimiter
	Researcher *security.ResearcherAuth
}

// NewRouter registers every route and returns the handler together with the
// registry of running studies
func NewRouter(deps Dependencies) (http.Handler, *Registry) {
	registry := NewRegistry(deps.Studies)
	middleware := NewMiddleware(registry, deps.Tokens, deps.CSRF, deps.Limiter, deps.Researcher)
	studyHandler := NewStudyHandler(deps.Studies, deps.Exports, registry, deps.Tokens, deps.CSRF)
	researchHandler := NewResearchHandler(deps.Studies.Store(), deps.Exports)

	participant := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireParticipant(middleware.CSRFProtect(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/catalog", studyHandler.Catalog)
	mux.HandleFunc("POST /api/study/start", studyHandler.Start)
	mux.HandleFunc("GET /api/study", participant(studyHandler.Show))
	mux.HandleFunc("POST /api/study/select", participant(studyHandler.Select))
	mux.HandleFunc("POST /api/study/commit", participant(studyHandler.Commit))
	mux.HandleFunc("POST /api/study/unstage", participant(studyHandler.Unstage))
	mux.HandleFunc("POST /api/study/next", participant(studyHandler.Next))
	mux.HandleFunc("POST /api/study/switch", participant(studyHandler.Switch))
	mux.HandleFunc("POST /api/study/restart", participant(studyHandler.Restart))
	mux.HandleFunc("GET /api/study/report", participant(studyHandler.Report))
	mux.HandleFunc("GET /api/study/export", participant(studyHandler.Export))

	mux.HandleFunc("GET /api/research/sessions", middleware.RequireResearcher(researchHandler.ListSessions))
	mux.HandleFunc("GET /api/research/sessions/{id}/export", middleware.RequireResearcher(researchHandler.ExportSession))
	mux.HandleFunc("POST /api/research/sessions/{id}/deliver", middleware.RequireResearcher(researchHandler.DeliverSession))
	mux.HandleFunc("DELETE /api/research/sessions/{id}", middleware.RequireResearcher(researchHandler.DeleteSession))

	return Logging(middleware.RateLimit(mux)), registry
}
