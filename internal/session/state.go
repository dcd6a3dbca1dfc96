// Package session owns the state of one participant's study session: the
// problem being played, its selection history, the staged choice and the
// log of completed problems.
package session

import (
	"math"
	"time"

	"rrstudy/internal/models"
)

// UIFlag names a boolean presentation flag
type UIFlag string

const (
	FlagAnimating   UIFlag = "isAnimating"
	FlagNextEnabled UIFlag = "nextEnabled"
	FlagScreen      UIFlag = "currentScreen"
)

// TopicProblemIndex is published when the problem index jumps forward
const TopicProblemIndex Topic = "currentProblemIndex"

// State is the single source of truth for a session. It is not safe for
// concurrent use; callers serialize access.
type State struct {
	clock Clock
	newID func() string
	bus   *Bus

	sessionID     string
	startedAt     time.Time
	index         int
	totalProblems int

	current        *models.Problem
	problemStart   time.Time
	selections     []models.Selection
	selectionCount int
	staged         *models.Choice
	origins        map[int]models.Origin

	completed []models.ProblemRunRecord
	ui        models.UIState

	// generation changes whenever the active problem is replaced so that
	// pending transitions can detect they are stale
	generation uint64
}

// New creates a state in its pristine form
func New(opts ...Option) *State {
	s := &State{
		clock: SystemClock,
		newID: NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = NewBus(false)
	}
	s.pristine()
	return s
}

func (s *State) pristine() {
	s.sessionID = s.newID()
	s.startedAt = time.Time{}
	s.index = 0
	s.totalProblems = 0
	s.current = nil
	s.problemStart = time.Time{}
	s.selections = nil
	s.selectionCount = 0
	s.staged = nil
	s.origins = make(map[int]models.Origin)
	s.completed = nil
	s.ui = models.UIState{CurrentScreen: models.ScreenWelcome}
	s.generation++
}

// Bus returns the bus events are published on
func (s *State) Bus() *Bus {
	return s.bus
}

// Subscribe is shorthand for Bus().Subscribe
func (s *State) Subscribe(topic Topic, l Listener) func() {
	return s.bus.Subscribe(topic, l)
}

// InitSession starts a new session over problems
func (s *State) InitSession(problems []models.ProblemDefinition) {
	s.sessionID = s.newID()
	s.startedAt = s.clock.Now()
	s.index = 0
	s.totalProblems = len(problems)
	s.completed = nil
	s.ui.CurrentScreen = models.ScreenGame

	s.bus.Publish(Event{Topic: TopicSession, Value: s.sessionID})
}

// StartProblem makes a copy of def the active problem and clears every
// per-problem field
func (s *State) StartProblem(def models.ProblemDefinition) {
	p := models.NewProblem(def)
	s.current = &p
	s.problemStart = s.clock.Now()
	s.selections = nil
	s.selectionCount = 0
	s.staged = nil
	s.origins = make(map[int]models.Origin)
	s.ui.NextEnabled = false
	s.ui.IsAnimating = false
	s.generation++

	s.bus.Publish(Event{Topic: TopicCurrentProblem, Value: p.Clone()})
}

// RecordSelection appends a selection timestamped now
func (s *State) RecordSelection(choice models.Choice, slotIndex int) (models.Selection, error) {
	return s.RecordSelectionAt(choice, slotIndex, s.clock.Now())
}

// RecordSelectionAt appends a selection with an explicit acceptance time
func (s *State) RecordSelectionAt(choice models.Choice, slotIndex int, ts time.Time) (models.Selection, error) {
	if s.current == nil {
		return models.Selection{}, ErrNoActiveProblem
	}

	c := choice.Clone()
	sel := models.Selection{
		ChoiceID:  c.ID,
		Animals:   c.Animals,
		Timestamp: ts,
		SlotIndex: slotIndex,
	}
	s.selections = append(s.selections, sel)
	s.selectionCount++

	s.bus.Publish(Event{Topic: TopicSelection, Value: sel.Clone()})
	s.bus.Publish(Event{Topic: TopicSelectionCount, Value: s.selectionCount, Previous: s.selectionCount - 1})
	s.SetUI(FlagNextEnabled, true)

	return sel.Clone(), nil
}

// StageChoice puts choice in the staged slot, recording slotIndex as the
// origin of each of its animals. It returns the previously staged choice.
func (s *State) StageChoice(choice models.Choice, slotIndex int) (*models.Choice, error) {
	if s.current == nil {
		return nil, ErrNoActiveProblem
	}

	prev := s.staged
	c := choice.Clone()
	s.staged = &c
	for _, id := range c.AnimalIDs() {
		s.origins[id] = models.Origin{Section: models.MainSection, SlotIndex: slotIndex}
	}

	s.publishStaged(prev)
	return prev, nil
}

// ClearStagedChoice empties the staged slot and returns what was there.
// Origin records are kept until the next problem starts.
func (s *State) ClearStagedChoice() *models.Choice {
	prev := s.staged
	s.staged = nil
	s.publishStaged(prev)
	return prev
}

func (s *State) publishStaged(prev *models.Choice) {
	e := Event{Topic: TopicStagedChoice}
	if s.staged != nil {
		e.Value = s.staged.Clone()
	}
	if prev != nil {
		e.Previous = prev.Clone()
	}
	s.bus.Publish(e)
}

// StagedChoice returns a copy of the staged choice
func (s *State) StagedChoice() (models.Choice, bool) {
	if s.staged == nil {
		return models.Choice{}, false
	}
	return s.staged.Clone(), true
}

// OriginalPosition returns where a staged animal came from
func (s *State) OriginalPosition(animalID int) (models.Origin, bool) {
	o, ok := s.origins[animalID]
	return o, ok
}

// CompleteProblem scores the active problem, appends it to the completed log
// and advances the index. The active problem and its selections are cleared,
// so a second call fails until the next StartProblem.
func (s *State) CompleteProblem() (models.ProblemRunRecord, error) {
	if s.current == nil {
		return models.ProblemRunRecord{}, ErrNoActiveProblem
	}

	end := s.clock.Now()
	total := end.Sub(s.problemStart)
	if total < 0 {
		total = 0
	}

	record := models.ProblemRunRecord{
		Problem:        s.current.Clone(),
		StartTime:      s.problemStart,
		EndTime:        end,
		TotalTime:      total,
		Selections:     make([]models.Selection, len(s.selections)),
		SelectionCount: s.selectionCount,
	}
	for i, sel := range s.selections {
		record.Selections[i] = sel.Clone()
	}
	if n := len(record.Selections); n > 0 {
		final := record.Selections[n-1].Clone()
		record.FinalSelection = &final
		record.IsCorrect = final.ChoiceID == s.current.CorrectChoiceID
	}

	s.completed = append(s.completed, record)
	s.index++
	s.current = nil
	s.staged = nil
	s.selections = nil
	s.selectionCount = 0
	s.generation++

	s.bus.Publish(Event{Topic: TopicProblemCompleted, Value: record.Clone()})
	return record.Clone(), nil
}

// Reset returns the state to its pristine form, dropping all history
func (s *State) Reset() {
	s.pristine()
	s.bus.Publish(Event{Topic: TopicReset})
}

// RestoreCompleted re-hydrates the session identity, index and completed log
// from a saved session. The index never moves backwards past problems that
// were skipped before the save.
func (s *State) RestoreCompleted(saved models.SavedSession) {
	if saved.SessionID != "" {
		s.sessionID = saved.SessionID
	}
	s.startedAt = saved.StartedAt
	if saved.TotalProblems > 0 {
		s.totalProblems = saved.TotalProblems
	}
	s.completed = models.CloneRecords(saved.Completed)
	s.index = saved.ResumeIndex()
	if s.totalProblems > 0 && s.index > s.totalProblems {
		s.index = s.totalProblems
	}
	s.current = nil
	s.staged = nil
	s.selections = nil
	s.selectionCount = 0
	s.generation++

	s.bus.Publish(Event{Topic: TopicSession, Value: s.sessionID})
}

// Saved exports the persistable part of the session
func (s *State) Saved() models.SavedSession {
	return models.SavedSession{
		SessionID:     s.sessionID,
		StartedAt:     s.startedAt,
		TotalProblems: s.totalProblems,
		NextIndex:     s.index,
		Completed:     models.CloneRecords(s.completed),
		UpdatedAt:     s.clock.Now(),
	}
}

// AdvanceTo jumps forward to index without recording the skipped problems
func (s *State) AdvanceTo(index int) error {
	if index < s.index || index > s.totalProblems {
		return ErrInvalidIndex
	}
	prev := s.index
	s.index = index
	s.current = nil
	s.staged = nil
	s.generation++

	s.bus.Publish(Event{Topic: TopicProblemIndex, Value: index, Previous: prev})
	return nil
}

// UI returns the presentation flags
func (s *State) UI() models.UIState {
	return s.ui
}

// SetUI sets a boolean presentation flag and publishes ui.<flag>
func (s *State) SetUI(flag UIFlag, value bool) {
	var old bool
	switch flag {
	case FlagAnimating:
		old = s.ui.IsAnimating
		s.ui.IsAnimating = value
	case FlagNextEnabled:
		old = s.ui.NextEnabled
		s.ui.NextEnabled = value
	default:
		return
	}
	s.bus.Publish(Event{Topic: UITopic(flag), Value: value, Previous: old})
}

// SetScreen switches the current screen and publishes ui.currentScreen
func (s *State) SetScreen(screen models.Screen) {
	old := s.ui.CurrentScreen
	s.ui.CurrentScreen = screen
	s.bus.Publish(Event{Topic: UITopic(FlagScreen), Value: screen, Previous: old})
}

// SessionID returns the current session identifier
func (s *State) SessionID() string {
	return s.sessionID
}

// Index returns the 0-based index of the next problem to play
func (s *State) Index() int {
	return s.index
}

// Generation identifies the active problem instance
func (s *State) Generation() uint64 {
	return s.generation
}

// HasActiveProblem reports whether a problem has been started and not completed
func (s *State) HasActiveProblem() bool {
	return s.current != nil
}

// CurrentProblem returns a copy of the active problem
func (s *State) CurrentProblem() (models.Problem, bool) {
	if s.current == nil {
		return models.Problem{}, false
	}
	return s.current.Clone(), true
}

// SelectionCount returns the number of selections in the active problem
func (s *State) SelectionCount() int {
	return s.selectionCount
}

// LastSelection returns the most recent selection of the active problem
func (s *State) LastSelection() (models.Selection, bool) {
	if len(s.selections) == 0 {
		return models.Selection{}, false
	}
	return s.selections[len(s.selections)-1].Clone(), true
}

// Completed returns a copy of the completed-problem log
func (s *State) Completed() []models.ProblemRunRecord {
	return models.CloneRecords(s.completed)
}

// IsComplete reports whether every problem has been played
func (s *State) IsComplete() bool {
	return s.index >= s.totalProblems
}

// Progress reports the position within the problem set
func (s *State) Progress() models.Progress {
	p := models.Progress{
		Current:   s.index,
		Total:     s.totalProblems,
		Completed: len(s.completed),
	}
	if s.totalProblems > 0 {
		p.Percentage = roundPercent(s.index, s.totalProblems)
	}
	return p
}

// Stats summarizes the completed problems
func (s *State) Stats() models.SessionStats {
	stats := models.SessionStats{
		SessionID:         s.sessionID,
		StartedAt:         s.startedAt,
		ProblemsCompleted: len(s.completed),
	}
	for _, r := range s.completed {
		if r.IsCorrect {
			stats.ProblemsCorrect++
		}
		stats.TotalTime += r.TotalTime
	}
	if n := len(s.completed); n > 0 {
		stats.Accuracy = roundPercent(stats.ProblemsCorrect, n)
		avgMs := math.Round(float64(stats.TotalTime.Milliseconds()) / float64(n))
		stats.AverageTime = time.Duration(avgMs) * time.Millisecond
	}
	return stats
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
