package handlers

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"rrstudy/internal/service"
	"rrstudy/internal/session"
)

var errNoStudy = errors.New("no study for participant")

// studyEntry is one participant's study. Its mutex serializes every request
// that touches the study.
type studyEntry struct {
	mu            sync.Mutex
	participantID string
	study         *service.Study
	lastSeen      time.Time

	events      []session.Topic
	unsubscribe func()
}

// attach replaces the entry's study and starts collecting its events
func (e *studyEntry) attach(study *service.Study) {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	e.study = study
	e.events = nil
	e.unsubscribe = study.State().Subscribe(session.TopicAll, func(ev session.Event) error {
		e.events = append(e.events, ev.Topic)
		return nil
	})
}

// drainEvents returns the topics published since the last call
func (e *studyEntry) drainEvents() []session.Topic {
	events := e.events
	e.events = nil
	return events
}

// Registry holds the running studies keyed by participant
type Registry struct {
	mu      sync.Mutex
	entries map[string]*studyEntry
	studies *service.StudyService
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(studies *service.StudyService) *Registry {
	return &Registry{
		entries: make(map[string]*studyEntry),
		studies: studies,
		now:     time.Now,
	}
}

// Open returns the participant's entry, creating an empty one if needed
func (r *Registry) Open(participantID string) *studyEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[participantID]
	if !ok {
		e = &studyEntry{participantID: participantID}
		r.entries[participantID] = e
	}
	e.lastSeen = r.now()
	return e
}

// Load returns the participant's entry. A participant unknown to this
// process is resumed from the store using sessionID.
func (r *Registry) Load(ctx context.Context, participantID, sessionID string) (*studyEntry, error) {
	r.mu.Lock()
	e, ok := r.entries[participantID]
	if ok {
		e.lastSeen = r.now()
	}
	r.mu.Unlock()
	if ok {
		return e, nil
	}

	if sessionID == "" {
		return nil, errNoStudy
	}
	study, found, err := r.studies.ResumeStudy(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNoStudy
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have resumed the same participant meanwhile.
	if existing, ok := r.entries[participantID]; ok {
		existing.lastSeen = r.now()
		return existing, nil
	}
	e = &studyEntry{participantID: participantID, lastSeen: r.now()}
	e.attach(study)
	r.entries[participantID] = e
	return e, nil
}

// Prune drops entries idle for longer than maxIdle. Their progress remains
// in the store.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(r.entries, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Pruned %d idle studies", removed)
	}
	return removed
}

// Len returns the number of studies held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
