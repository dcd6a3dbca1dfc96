package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rrstudy/internal/catalog"
	"rrstudy/internal/models"
	"rrstudy/internal/report"
	"rrstudy/internal/selection"
	"rrstudy/internal/session"
	"rrstudy/internal/storage"
)

var (
	// ErrNextDisabled is returned when finishing a problem before any selection
	ErrNextDisabled = errors.New("next is disabled until a selection is made")
	// ErrUnknownChoice is returned for a choice ID the current problem does not offer
	ErrUnknownChoice = errors.New("choice is not selectable in the current problem")
	// ErrExperimentComplete is returned when no problems remain
	ErrExperimentComplete = errors.New("every problem has been completed")
	// ErrNoProblemsOfType is returned when switching to a game type with no problems ahead
	ErrNoProblemsOfType = errors.New("no remaining problems of that game type")
)

// StudyService creates participant studies over a shared catalog and store
type StudyService struct {
	catalog   *catalog.Catalog
	store     storage.Store
	clock     session.Clock
	selection selection.Config
	debug     bool
}

// NewStudyService creates a new study service
func NewStudyService(cat *catalog.Catalog, store storage.Store, clock session.Clock, cfg selection.Config, debug bool) *StudyService {
	if clock == nil {
		clock = session.SystemClock
	}
	return &StudyService{
		catalog:   cat,
		store:     store,
		clock:     clock,
		selection: cfg,
		debug:     debug,
	}
}

// Catalog returns the problem set studies run over
func (s *StudyService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Store returns the progress store
func (s *StudyService) Store() storage.Store {
	return s.store
}

// NewStudy creates a study on the welcome screen
func (s *StudyService) NewStudy() *Study {
	state := session.New(session.WithClock(s.clock), session.WithBus(session.NewBus(s.debug)))
	study := &Study{
		service:     s,
		state:       state,
		coordinator: selection.NewCoordinator(state, s.clock, s.selection),
	}
	if s.debug {
		state.Subscribe(session.TopicProblemCompleted, func(e session.Event) error {
			if r, ok := e.Value.(models.ProblemRunRecord); ok {
				log.Printf("[DEBUG] Problem completed: %s %s correct=%v selections=%d", r.Type, r.Label, r.IsCorrect, r.SelectionCount)
			}
			return nil
		})
	}
	return study
}

// ResumeStudy restores a stored session and loads its next problem. found is
// false when the store has no such session.
func (s *StudyService) ResumeStudy(ctx context.Context, sessionID string) (study *Study, found bool, err error) {
	saved, found, err := s.store.LoadProgress(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if !found {
		return nil, false, nil
	}

	study = s.NewStudy()
	study.state.InitSession(s.catalog.Problems())
	study.state.RestoreCompleted(saved)

	if err := study.LoadProblem(); err != nil && !errors.Is(err, ErrExperimentComplete) {
		return nil, false, err
	}
	log.Printf("Resumed session %s at problem %d of %d", saved.SessionID, saved.ResumeIndex()+1, s.catalog.Len())
	return study, true, nil
}

// Study is one participant's run through the problem set. It is not safe for
// concurrent use; callers serialize access.
type Study struct {
	service     *StudyService
	state       *session.State
	coordinator *selection.Coordinator

	// memoryOnly is set once the store has failed; progress still
	// accumulates in the session
	memoryOnly bool
}

// State exposes the underlying session for observation
func (st *Study) State() *session.State {
	return st.state
}

// SessionID returns the current session identifier
func (st *Study) SessionID() string {
	return st.state.SessionID()
}

// MemoryOnly reports whether saving progress has failed during this study
func (st *Study) MemoryOnly() bool {
	return st.memoryOnly
}

// Start begins a new session over the whole catalog and loads the first problem
func (st *Study) Start() error {
	log.Printf("Starting experiment with %d problems", st.service.catalog.Len())

	st.coordinator.Reset()
	st.state.InitSession(st.service.catalog.Problems())
	return st.LoadProblem()
}

// LoadProblem starts the problem at the current index. When every problem
// has been completed the report screen is shown and ErrExperimentComplete
// returned.
func (st *Study) LoadProblem() error {
	st.coordinator.Reset()

	def, ok := st.service.catalog.At(st.state.Index())
	if !ok {
		st.state.SetScreen(models.ScreenReport)
		return ErrExperimentComplete
	}

	st.state.SetScreen(models.ScreenGame)
	st.state.StartProblem(def)
	return nil
}

// Select applies a pick of choiceID at slot. A negative slot means the
// choice's position within its section.
func (st *Study) Select(choiceID string, slot int) (selection.Transition, error) {
	problem, ok := st.state.CurrentProblem()
	if !ok {
		return selection.Transition{}, session.ErrNoActiveProblem
	}

	choice, ok := problem.FindChoice(choiceID)
	if !ok {
		return selection.Transition{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choiceID)
	}
	if slot < 0 {
		slot = slotOf(problem.ProblemDefinition, choiceID)
	}

	return st.coordinator.Apply(selection.ModeFor(problem.Type), choice, slot)
}

// Commit finalizes the transition identified by token
func (st *Study) Commit(token string) (selection.Transition, error) {
	return st.coordinator.Commit(token)
}

// Unstage begins returning the staged choice to its original slot
func (st *Study) Unstage() (selection.Transition, error) {
	return st.coordinator.Unstage()
}

// FinishResult reports the outcome of finishing a problem
type FinishResult struct {
	Record    models.ProblemRunRecord `json:"record"`
	Persisted bool                    `json:"persisted"`
	Complete  bool                    `json:"complete"`
}

// FinishProblem scores the current problem, saves progress and loads the
// next problem, or the report once none remain
func (st *Study) FinishProblem(ctx context.Context) (FinishResult, error) {
	if err := st.coordinator.Settle(); err != nil {
		log.Printf("Warning: pending transition dropped before finishing: %v", err)
	}

	if !st.state.UI().NextEnabled {
		return FinishResult{}, ErrNextDisabled
	}

	record, err := st.state.CompleteProblem()
	if err != nil {
		return FinishResult{}, err
	}
	log.Printf("Problem completed: %s %s correct=%v", record.Type, record.Label, record.IsCorrect)

	result := FinishResult{Record: record, Persisted: st.save(ctx)}
	st.state.SetUI(session.FlagNextEnabled, false)

	if err := st.LoadProblem(); err != nil {
		if !errors.Is(err, ErrExperimentComplete) {
			return result, err
		}
		result.Complete = true
	}
	return result, nil
}

// save writes the completed log to the store, falling back to memory-only
// operation when the store is unavailable
func (st *Study) save(ctx context.Context) bool {
	if err := st.service.store.SaveProgress(ctx, st.state.Saved()); err != nil {
		if !st.memoryOnly {
			log.Printf("Warning: failed to save progress for session %s, continuing in memory: %v", st.state.SessionID(), err)
		}
		st.memoryOnly = true
		return false
	}
	st.memoryOnly = false
	return true
}

// SwitchToGameType jumps to the next problem of type t, abandoning the
// current one without recording it. The new index is saved so a resumed
// study does not return to the skipped problems.
func (st *Study) SwitchToGameType(ctx context.Context, t models.GameType) error {
	index, ok := st.service.catalog.IndexOfType(t, st.state.Index())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoProblemsOfType, t)
	}

	st.coordinator.Reset()
	prev := st.state.Index()
	if err := st.state.AdvanceTo(index); err != nil {
		return err
	}
	if index != prev {
		st.save(ctx)
	}
	return st.LoadProblem()
}

// Restart discards the session and its stored progress and returns to the
// welcome screen
func (st *Study) Restart(ctx context.Context) error {
	sessionID := st.state.SessionID()

	st.coordinator.Reset()
	st.state.Reset()

	if err := st.service.store.ClearProgress(ctx, sessionID); err != nil {
		log.Printf("Warning: failed to clear stored progress for session %s: %v", sessionID, err)
		return err
	}
	return nil
}

// Report summarizes the completed problems. ok is false when none exist.
func (st *Study) Report() (Report, bool) {
	completed := st.state.Completed()
	summary, ok := report.Summarize(completed)
	if !ok {
		return Report{}, false
	}
	rows, _ := report.Results(completed)
	return Report{Headline: summary.Headline(), Summary: summary, Results: rows}, true
}

// Report is the end-of-study report
type Report struct {
	Headline string             `json:"headline"`
	Summary  report.Summary     `json:"summary"`
	Results  []report.ResultRow `json:"results"`
}

// View is what the presentation needs to render the study
type View struct {
	session.Snapshot
	Mode        string                `json:"mode,omitempty"`
	Counter     string                `json:"counter,omitempty"`
	Instruction string                `json:"instruction,omitempty"`
	Pending     *selection.Transition `json:"pending,omitempty"`
	MemoryOnly  bool                  `json:"memory_only"`
}

// View renders the study's current state
func (st *Study) View() View {
	v := View{Snapshot: st.state.Snapshot(), MemoryOnly: st.memoryOnly}
	if p := v.CurrentProblem; p != nil {
		v.Mode = selection.ModeFor(p.Type).String()
		v.Instruction = p.Instruction
		if v.Instruction == "" {
			v.Instruction = catalog.InstructionFor(p.Type)
		}
		if counter, ok := st.service.catalog.CounterAt(st.state.Index()); ok {
			v.Counter = counter.String()
		}
	}
	if t, ok := st.coordinator.Pending(); ok {
		v.Pending = &t
	}
	return v
}

// slotOf returns the position of a choice within its section
func slotOf(p models.ProblemDefinition, choiceID string) int {
	for _, section := range p.Sections {
		for i, item := range section.Items {
			if item.ID == choiceID {
				return i
			}
		}
	}
	return 0
}
