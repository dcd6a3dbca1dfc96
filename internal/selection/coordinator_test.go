package selection

import (
	"errors"
	"testing"
	"time"

	"rrstudy/internal/models"
	"rrstudy/internal/session"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func animalChoice(id string, animalID int) models.Choice {
	return models.Choice{ID: id, Animals: []models.Animal{{ID: animalID, Species: "dog", Size: "large", Color: "blue", Pattern: "solid"}}}
}

var (
	choiceA = animalChoice("1", 1)
	choiceB = animalChoice("2", 2)
	choiceC = animalChoice("3", 3)
)

func newTestCoordinator(t *testing.T, gameType models.GameType) (*Coordinator, *session.State, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	state := session.New(session.WithClock(clock))
	def := models.ProblemDefinition{
		Type:  gameType,
		Label: "Test",
		Sections: []models.Section{{
			Selectable: true,
			Items:      []models.Choice{choiceA, choiceB, choiceC},
		}},
		CorrectChoiceID: "3",
	}
	state.InitSession([]models.ProblemDefinition{def})
	state.StartProblem(def)
	return NewCoordinator(state, clock, Config{}), state, clock
}

func mustApply(t *testing.T, c *Coordinator, mode Mode, choice models.Choice, slot int) Transition {
	t.Helper()
	tr, err := c.Apply(mode, choice, slot)
	if err != nil {
		t.Fatalf("Apply(%s) error = %v", choice.ID, err)
	}
	return tr
}

func mustCommit(t *testing.T, c *Coordinator, tr Transition) {
	t.Helper()
	if _, err := c.Commit(tr.Token); err != nil {
		t.Fatalf("Commit(%s) error = %v", tr.Kind, err)
	}
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		gameType models.GameType
		want     Mode
	}{
		{models.GameTypeAnomaly, ModeStaging},
		{models.GameTypeAnalogy, ModeSelectOnly},
		{models.GameTypeAntithesis, ModeSelectOnly},
		{models.GameTypeAntinomy, ModeSelectOnly},
	}
	for _, tt := range tests {
		if got := ModeFor(tt.gameType); got != tt.want {
			t.Errorf("ModeFor(%s) = %v, want %v", tt.gameType, got, tt.want)
		}
	}
}

func TestSimpleMove(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	tr := mustApply(t, c, ModeStaging, choiceA, 0)
	if tr.Kind != KindMove || !tr.NeedsCommit() {
		t.Fatalf("transition = %+v, want pending move", tr)
	}
	if !state.UI().IsAnimating {
		t.Error("IsAnimating not set while transition in flight")
	}
	if state.SelectionCount() != 0 {
		t.Error("selection recorded before commit")
	}

	clock.Advance(400 * time.Millisecond)
	mustCommit(t, c, tr)

	staged, ok := state.StagedChoice()
	if !ok || staged.ID != "1" {
		t.Errorf("staged = %+v, want choice 1", staged)
	}
	ui := state.UI()
	if ui.IsAnimating || !ui.NextEnabled {
		t.Errorf("UI = %+v, want idle with next enabled", ui)
	}
	sel, _ := state.LastSelection()
	if !sel.Timestamp.Equal(tr.AcceptedAt) {
		t.Errorf("selection timestamp = %v, want acceptance time %v", sel.Timestamp, tr.AcceptedAt)
	}
}

func TestSwap(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	mustCommit(t, c, mustApply(t, c, ModeStaging, choiceA, 0))
	clock.Advance(time.Second)

	tr := mustApply(t, c, ModeStaging, choiceC, 2)
	if tr.Kind != KindSwap {
		t.Fatalf("Kind = %s, want swap", tr.Kind)
	}
	if tr.Returning == nil || tr.Returning.ID != "1" || tr.ReturnSlot != 0 {
		t.Errorf("returning = %+v to slot %d, want choice 1 to slot 0", tr.Returning, tr.ReturnSlot)
	}
	mustCommit(t, c, tr)

	staged, _ := state.StagedChoice()
	if staged.ID != "3" {
		t.Errorf("staged = %s, want 3", staged.ID)
	}
	if state.SelectionCount() != 2 {
		t.Errorf("SelectionCount() = %d, want 2", state.SelectionCount())
	}

	record, err := state.CompleteProblem()
	if err != nil {
		t.Fatal(err)
	}
	if !record.IsCorrect {
		t.Error("last pick should be scored")
	}
}

func TestOriginLookupFailureFallsBackToMove(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	// A choice with no animals cannot be traced back to an origin.
	orphan := models.Choice{ID: "orphan"}
	if _, err := state.StageChoice(orphan, 0); err != nil {
		t.Fatal(err)
	}

	tr := mustApply(t, c, ModeStaging, choiceB, 1)
	if tr.Kind != KindMove {
		t.Errorf("Kind = %s, want move", tr.Kind)
	}
	if !errors.Is(tr.Warning, ErrOriginLookupFailed) {
		t.Errorf("Warning = %v, want ErrOriginLookupFailed", tr.Warning)
	}
	if tr.ReturnSlot != 1 {
		t.Errorf("ReturnSlot = %d, want vacated slot 1", tr.ReturnSlot)
	}
	clock.Advance(time.Second)
	mustCommit(t, c, tr)

	staged, _ := state.StagedChoice()
	if staged.ID != "2" {
		t.Errorf("staged = %s, want 2", staged.ID)
	}
}

func TestGuards(t *testing.T) {
	c, _, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	tr := mustApply(t, c, ModeStaging, choiceA, 0)
	if _, err := c.Apply(ModeStaging, choiceB, 1); !errors.Is(err, ErrTransitionInFlight) {
		t.Errorf("Apply during transition error = %v, want ErrTransitionInFlight", err)
	}
	mustCommit(t, c, tr)

	clock.Advance(50 * time.Millisecond)
	if _, err := c.Apply(ModeStaging, choiceB, 1); !errors.Is(err, ErrDebounced) {
		t.Errorf("Apply inside window error = %v, want ErrDebounced", err)
	}

	clock.Advance(100 * time.Millisecond)
	if _, err := c.Apply(ModeStaging, choiceA, 0); !errors.Is(err, ErrAlreadyStaged) {
		t.Errorf("Apply of staged choice error = %v, want ErrAlreadyStaged", err)
	}

	if _, err := c.Commit("nope"); !errors.Is(err, ErrUnknownTransition) {
		t.Errorf("Commit(unknown) error = %v, want ErrUnknownTransition", err)
	}
	if _, err := c.Commit(tr.Token); !errors.Is(err, ErrUnknownTransition) {
		t.Errorf("second Commit error = %v, want ErrUnknownTransition", err)
	}
}

func TestDebounceRecordsOneSelection(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnalogy)

	mustApply(t, c, ModeSelectOnly, choiceA, 0)
	clock.Advance(10 * time.Millisecond)
	if _, err := c.Apply(ModeSelectOnly, choiceA, 0); !errors.Is(err, ErrDebounced) {
		t.Errorf("duplicate event error = %v, want ErrDebounced", err)
	}

	if state.SelectionCount() != 1 {
		t.Errorf("SelectionCount() = %d, want 1", state.SelectionCount())
	}
}

func TestSelectOnlyReplace(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAntinomy)

	first := mustApply(t, c, ModeSelectOnly, choiceA, 0)
	if first.Kind != KindReplace || first.NeedsCommit() {
		t.Fatalf("transition = %+v, want immediate replace", first)
	}
	if first.PreviousChoiceID != "" {
		t.Errorf("PreviousChoiceID = %q, want empty", first.PreviousChoiceID)
	}

	clock.Advance(time.Second)
	second := mustApply(t, c, ModeSelectOnly, choiceB, 1)
	if second.PreviousChoiceID != "1" {
		t.Errorf("PreviousChoiceID = %q, want 1", second.PreviousChoiceID)
	}

	if _, ok := state.StagedChoice(); ok {
		t.Error("select-only mode must not stage")
	}
	if state.UI().IsAnimating {
		t.Error("select-only mode must not lock")
	}
	if !state.UI().NextEnabled {
		t.Error("NextEnabled not set")
	}
	last, _ := state.LastSelection()
	if last.ChoiceID != "2" {
		t.Errorf("last selection = %s, want 2", last.ChoiceID)
	}
}

func TestUnstage(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	if _, err := c.Unstage(); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("Unstage() on empty slot error = %v, want ErrNothingStaged", err)
	}

	mustCommit(t, c, mustApply(t, c, ModeStaging, choiceB, 1))
	clock.Advance(time.Second)

	tr, err := c.Unstage()
	if err != nil {
		t.Fatalf("Unstage() error = %v", err)
	}
	if tr.Kind != KindReturn || tr.ReturnSlot != 1 {
		t.Errorf("transition = %+v, want return to slot 1", tr)
	}
	mustCommit(t, c, tr)

	if _, ok := state.StagedChoice(); ok {
		t.Error("choice still staged after return")
	}
	if state.UI().NextEnabled {
		t.Error("NextEnabled still set after return")
	}
}

func TestStaleTransition(t *testing.T) {
	c, state, _ := newTestCoordinator(t, models.GameTypeAnomaly)

	tr := mustApply(t, c, ModeStaging, choiceA, 0)
	problem, _ := state.CurrentProblem()
	state.StartProblem(problem.ProblemDefinition)

	if _, err := c.Commit(tr.Token); !errors.Is(err, ErrStaleTransition) {
		t.Errorf("Commit() error = %v, want ErrStaleTransition", err)
	}
	if state.UI().IsAnimating {
		t.Error("lock not released after stale commit")
	}
	if state.SelectionCount() != 0 {
		t.Error("stale transition recorded a selection")
	}
}

func TestExpiredTransitionIsCommitted(t *testing.T) {
	c, state, clock := newTestCoordinator(t, models.GameTypeAnomaly)

	mustApply(t, c, ModeStaging, choiceA, 0)
	clock.Advance(DefaultTransitionTimeout + time.Millisecond)

	tr, err := c.Apply(ModeStaging, choiceC, 2)
	if err != nil {
		t.Fatalf("Apply() after timeout error = %v", err)
	}
	if tr.Kind != KindSwap {
		t.Errorf("Kind = %s, want swap against the auto-committed move", tr.Kind)
	}
	if state.SelectionCount() != 1 {
		t.Errorf("SelectionCount() = %d, want 1", state.SelectionCount())
	}
}

func TestSettle(t *testing.T) {
	c, state, _ := newTestCoordinator(t, models.GameTypeAnomaly)

	if err := c.Settle(); err != nil {
		t.Errorf("Settle() with nothing pending error = %v", err)
	}
	mustApply(t, c, ModeStaging, choiceA, 0)
	if err := c.Settle(); err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if _, ok := c.Pending(); ok {
		t.Error("transition still pending after Settle")
	}
	if state.SelectionCount() != 1 {
		t.Errorf("SelectionCount() = %d, want 1", state.SelectionCount())
	}
}

func TestApplyWithoutProblem(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	state := session.New(session.WithClock(clock))
	c := NewCoordinator(state, clock, Config{})

	if _, err := c.Apply(ModeStaging, choiceA, 0); !errors.Is(err, session.ErrNoActiveProblem) {
		t.Errorf("Apply() error = %v, want ErrNoActiveProblem", err)
	}
}
