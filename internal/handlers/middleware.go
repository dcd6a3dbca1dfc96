package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"rrstudy/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ParticipantContextKey ContextKey = "participant"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	registry   *Registry
	tokens     *security.TokenIssuer
	csrf       *security.CSRFGenerator
	limiter    *security.RateLimiter
	researcher *security.ResearcherAuth
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(registry *Registry, tokens *security.TokenIssuer, csrf *security.CSRFGenerator, limiter *security.RateLimiter, researcher *security.ResearcherAuth) *Middleware {
	return &Middleware{
		registry:   registry,
		tokens:     tokens,
		csrf:       csrf,
		limiter:    limiter,
		researcher: researcher,
	}
}

// RequireParticipant resolves the participant's study from the signed
// cookie and holds the study's lock while next runs
func (m *Middleware) RequireParticipant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.ParticipantCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrNoStudy, "", nil)
			return
		}

		claims, err := m.tokens.Parse(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r))
			respondWithError(w, http.StatusUnauthorized, ErrStudyExpired, "Rejected participant token", err)
			return
		}

		entry, err := m.registry.Load(r.Context(), claims.Subject, claims.SessionID)
		if errors.Is(err, errNoStudy) {
			respondWithError(w, http.StatusUnauthorized, ErrNoStudy, "", nil)
			return
		}
		if err != nil {
			respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error resuming study", err)
			return
		}

		entry.mu.Lock()
		defer entry.mu.Unlock()
		if entry.study == nil {
			respondWithError(w, http.StatusUnauthorized, ErrNoStudy, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ParticipantContextKey, entry)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect rejects state-changing requests without the participant's
// CSRF token. It must run inside RequireParticipant.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}

		entry := entryFromContext(r.Context())
		if entry == nil || !m.csrf.ValidateToken(entry.participantID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next(w, r)
	}
}

// RequireResearcher checks HTTP basic credentials against the researcher hash
func (m *Middleware) RequireResearcher(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.researcher.Enabled() {
			respondWithError(w, http.StatusServiceUnavailable, ErrResearcherUnavailable, "", nil)
			return
		}

		user, password, ok := r.BasicAuth()
		if !ok || !m.researcher.Check(user, password) {
			log.Printf("Warning: rejected researcher credentials from %s", security.GetClientIP(r))
			w.Header().Set("WWW-Authenticate", `Basic realm="rrstudy"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the configured request rate
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// entryFromContext retrieves the participant's study entry from the request context
func entryFromContext(ctx context.Context) *studyEntry {
	entry, ok := ctx.Value(ParticipantContextKey).(*studyEntry)
	if !ok {
		return nil
	}
	return entry
}
