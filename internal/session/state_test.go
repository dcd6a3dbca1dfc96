package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"rrstudy/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func animal(id int) models.Animal {
	return models.Animal{ID: id, Species: "cat", Size: "small", Color: "red", Pattern: "solid"}
}

func choice(id string, animalIDs ...int) models.Choice {
	c := models.Choice{ID: id}
	for _, a := range animalIDs {
		c.Animals = append(c.Animals, animal(a))
	}
	return c
}

func testProblem(correct string) models.ProblemDefinition {
	return models.ProblemDefinition{
		Type:  models.GameTypeAnomaly,
		Label: "Test",
		Sections: []models.Section{{
			Label:      "Animals",
			Selectable: true,
			Items:      []models.Choice{choice("x", 1), choice("y", 2), choice("z", 3)},
		}},
		CorrectChoiceID: correct,
	}
}

func newTestState() (*State, *fakeClock) {
	clock := newFakeClock()
	return New(WithClock(clock), WithIDGenerator(sequentialIDs())), clock
}

func TestNewIsPristine(t *testing.T) {
	s, _ := newTestState()

	if s.SessionID() != "session-1" {
		t.Errorf("SessionID() = %q, want session-1", s.SessionID())
	}
	if s.HasActiveProblem() {
		t.Error("new state should have no active problem")
	}
	if s.UI().CurrentScreen != models.ScreenWelcome {
		t.Errorf("CurrentScreen = %q, want welcome", s.UI().CurrentScreen)
	}
	if _, err := s.CompleteProblem(); !errors.Is(err, ErrNoActiveProblem) {
		t.Errorf("CompleteProblem() error = %v, want ErrNoActiveProblem", err)
	}
}

func TestExampleScenario(t *testing.T) {
	tests := []struct {
		name        string
		correct     string
		wantCorrect bool
	}{
		{"correct answer", "x", true},
		{"wrong answer", "y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newTestState()
			problems := []models.ProblemDefinition{testProblem(tt.correct), testProblem("y")}

			s.InitSession(problems)
			s.StartProblem(problems[0])
			clock.Advance(2 * time.Second)
			if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
				t.Fatalf("RecordSelection() error = %v", err)
			}
			clock.Advance(500 * time.Millisecond)

			record, err := s.CompleteProblem()
			if err != nil {
				t.Fatalf("CompleteProblem() error = %v", err)
			}
			if record.SelectionCount != 1 {
				t.Errorf("SelectionCount = %d, want 1", record.SelectionCount)
			}
			if record.FinalSelection == nil || record.FinalSelection.ChoiceID != "x" {
				t.Fatalf("FinalSelection = %+v, want choice x", record.FinalSelection)
			}
			if record.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", record.IsCorrect, tt.wantCorrect)
			}
			if record.TotalTime != 2500*time.Millisecond {
				t.Errorf("TotalTime = %v, want 2.5s", record.TotalTime)
			}
			if s.Index() != 1 {
				t.Errorf("Index() = %d, want 1", s.Index())
			}
			if s.IsComplete() {
				t.Error("IsComplete() = true after 1 of 2 problems")
			}
		})
	}
}

func TestCompleteProblemWithoutSelection(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p})
	s.StartProblem(p)

	record, err := s.CompleteProblem()
	if err != nil {
		t.Fatalf("CompleteProblem() error = %v", err)
	}
	if record.FinalSelection != nil {
		t.Errorf("FinalSelection = %+v, want nil", record.FinalSelection)
	}
	if record.IsCorrect {
		t.Error("IsCorrect = true with no selection")
	}
}

func TestCompleteProblemTwiceFails(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p, p})
	s.StartProblem(p)

	if _, err := s.CompleteProblem(); err != nil {
		t.Fatalf("first CompleteProblem() error = %v", err)
	}
	if _, err := s.CompleteProblem(); !errors.Is(err, ErrNoActiveProblem) {
		t.Errorf("second CompleteProblem() error = %v, want ErrNoActiveProblem", err)
	}
	if got := len(s.Completed()); got != 1 {
		t.Errorf("len(Completed()) = %d, want 1", got)
	}

	s.StartProblem(p)
	s.Reset()
	if _, err := s.CompleteProblem(); !errors.Is(err, ErrNoActiveProblem) {
		t.Errorf("CompleteProblem() after Reset error = %v, want ErrNoActiveProblem", err)
	}
}

func TestStartProblemClearsPerProblemState(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p})
	s.StartProblem(p)

	if _, err := s.StageChoice(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}
	s.SetUI(FlagAnimating, true)

	s.StartProblem(p)

	snap := s.Snapshot()
	if snap.SelectionCount != 0 || len(snap.Selections) != 0 {
		t.Errorf("selections not cleared: %d, %d", snap.SelectionCount, len(snap.Selections))
	}
	if snap.StagedChoice != nil {
		t.Errorf("StagedChoice = %+v, want nil", snap.StagedChoice)
	}
	if len(snap.Origins) != 0 {
		t.Errorf("Origins = %v, want empty", snap.Origins)
	}
	if snap.UI.NextEnabled || snap.UI.IsAnimating {
		t.Errorf("UI = %+v, want flags cleared", snap.UI)
	}
}

func TestStartProblemStoresCopy(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.StartProblem(p)

	p.Sections[0].Items[0].ID = "mutated"
	p.CorrectChoiceID = "mutated"

	current, ok := s.CurrentProblem()
	if !ok {
		t.Fatal("no current problem")
	}
	if current.CorrectChoiceID != "x" || current.Sections[0].Items[0].ID != "x" {
		t.Errorf("current problem changed with caller's copy: %+v", current.ProblemDefinition)
	}
	if len(current.Animals) != 3 {
		t.Errorf("len(Animals) = %d, want 3", len(current.Animals))
	}
}

func TestRecordSelectionRequiresProblem(t *testing.T) {
	s, _ := newTestState()
	if _, err := s.RecordSelection(choice("x", 1), 0); !errors.Is(err, ErrNoActiveProblem) {
		t.Errorf("RecordSelection() error = %v, want ErrNoActiveProblem", err)
	}
	if _, err := s.StageChoice(choice("x", 1), 0); !errors.Is(err, ErrNoActiveProblem) {
		t.Errorf("StageChoice() error = %v, want ErrNoActiveProblem", err)
	}
}

func TestStageChoice(t *testing.T) {
	s, _ := newTestState()
	s.StartProblem(testProblem("x"))

	prev, err := s.StageChoice(choice("group-1", 4, 5), 2)
	if err != nil {
		t.Fatal(err)
	}
	if prev != nil {
		t.Errorf("previous = %+v, want nil", prev)
	}

	for _, id := range []int{4, 5} {
		origin, ok := s.OriginalPosition(id)
		if !ok {
			t.Fatalf("OriginalPosition(%d) not found", id)
		}
		if origin != (models.Origin{Section: models.MainSection, SlotIndex: 2}) {
			t.Errorf("OriginalPosition(%d) = %+v", id, origin)
		}
	}

	prev, err = s.StageChoice(choice("x", 1), 0)
	if err != nil {
		t.Fatal(err)
	}
	if prev == nil || prev.ID != "group-1" {
		t.Errorf("previous = %+v, want group-1", prev)
	}

	cleared := s.ClearStagedChoice()
	if cleared == nil || cleared.ID != "x" {
		t.Errorf("ClearStagedChoice() = %+v, want x", cleared)
	}
	if _, ok := s.StagedChoice(); ok {
		t.Error("staged choice still set after clear")
	}
	if _, ok := s.OriginalPosition(1); !ok {
		t.Error("origin dropped by ClearStagedChoice")
	}
	if _, ok := s.OriginalPosition(99); ok {
		t.Error("OriginalPosition(99) found for unstaged animal")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s, _ := newTestState()
	s.StartProblem(testProblem("x"))
	if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	snap.Selections[0].ChoiceID = "mutated"
	snap.Selections[0].Animals[0].ID = 999
	snap.CurrentProblem.CorrectChoiceID = "mutated"

	again := s.Snapshot()
	if again.Selections[0].ChoiceID != "x" || again.Selections[0].Animals[0].ID != 1 {
		t.Errorf("selection changed through snapshot: %+v", again.Selections[0])
	}
	if again.CurrentProblem.CorrectChoiceID != "x" {
		t.Error("problem changed through snapshot")
	}
}

func TestProgressAndStats(t *testing.T) {
	s, clock := newTestState()
	problems := []models.ProblemDefinition{testProblem("x"), testProblem("x"), testProblem("x"), testProblem("x")}
	s.InitSession(problems)

	answers := []struct {
		choiceID string
		took     time.Duration
	}{
		{"x", 1000 * time.Millisecond},
		{"y", 2000 * time.Millisecond},
		{"x", 1500 * time.Millisecond},
	}
	for _, a := range answers {
		s.StartProblem(problems[s.Index()])
		clock.Advance(a.took)
		if _, err := s.RecordSelection(choice(a.choiceID, 1), 0); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CompleteProblem(); err != nil {
			t.Fatal(err)
		}
	}

	progress := s.Progress()
	want := models.Progress{Current: 3, Total: 4, Completed: 3, Percentage: 75}
	if progress != want {
		t.Errorf("Progress() = %+v, want %+v", progress, want)
	}

	stats := s.Stats()
	if stats.ProblemsCompleted != 3 || stats.ProblemsCorrect != 2 {
		t.Errorf("Stats() completed/correct = %d/%d, want 3/2", stats.ProblemsCompleted, stats.ProblemsCorrect)
	}
	if stats.Accuracy != 67 {
		t.Errorf("Stats().Accuracy = %d, want 67", stats.Accuracy)
	}
	if stats.TotalTime != 4500*time.Millisecond {
		t.Errorf("Stats().TotalTime = %v, want 4.5s", stats.TotalTime)
	}
	if stats.AverageTime != 1500*time.Millisecond {
		t.Errorf("Stats().AverageTime = %v, want 1.5s", stats.AverageTime)
	}
}

func TestAdvanceTo(t *testing.T) {
	s, _ := newTestState()
	problems := []models.ProblemDefinition{testProblem("x"), testProblem("x"), testProblem("x")}
	s.InitSession(problems)
	s.StartProblem(problems[0])

	if err := s.AdvanceTo(2); err != nil {
		t.Fatalf("AdvanceTo(2) error = %v", err)
	}
	if s.Index() != 2 || s.HasActiveProblem() {
		t.Errorf("Index() = %d, active = %v", s.Index(), s.HasActiveProblem())
	}

	tests := []int{1, 4, -1}
	for _, index := range tests {
		if err := s.AdvanceTo(index); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("AdvanceTo(%d) error = %v, want ErrInvalidIndex", index, err)
		}
	}
}

func TestRestoreCompleted(t *testing.T) {
	s, clock := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p, p, p})
	s.StartProblem(p)
	if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CompleteProblem(); err != nil {
		t.Fatal(err)
	}
	saved := s.Saved()

	restored := New(WithClock(clock), WithIDGenerator(sequentialIDs()))
	restored.InitSession([]models.ProblemDefinition{p, p, p})
	restored.RestoreCompleted(saved)

	if restored.SessionID() != saved.SessionID {
		t.Errorf("SessionID() = %q, want %q", restored.SessionID(), saved.SessionID)
	}
	if restored.Index() != 1 {
		t.Errorf("Index() = %d, want 1", restored.Index())
	}
	if got := restored.Stats().ProblemsCorrect; got != 1 {
		t.Errorf("ProblemsCorrect = %d, want 1", got)
	}
	if restored.HasActiveProblem() {
		t.Error("restore must not bring back mid-problem state")
	}
}

func TestRestoreCompletedAfterSkip(t *testing.T) {
	p := testProblem("x")
	problems := []models.ProblemDefinition{p, p, p, p}

	tests := []struct {
		name      string
		nextIndex int
		want      int
	}{
		{"index saved after skipping", 3, 3},
		{"record without an index", 0, 1},
		{"index past the problem set", 9, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newTestState()
			s.InitSession(problems)
			if err := s.AdvanceTo(2); err != nil {
				t.Fatal(err)
			}
			s.StartProblem(p)
			if _, err := s.CompleteProblem(); err != nil {
				t.Fatal(err)
			}
			saved := s.Saved()
			if saved.NextIndex != 3 {
				t.Fatalf("Saved().NextIndex = %d, want 3", saved.NextIndex)
			}
			saved.NextIndex = tt.nextIndex

			restored := New(WithClock(clock), WithIDGenerator(sequentialIDs()))
			restored.InitSession(problems)
			restored.RestoreCompleted(saved)

			if restored.Index() != tt.want {
				t.Errorf("Index() = %d, want %d", restored.Index(), tt.want)
			}
			if len(restored.Completed()) != 1 {
				t.Errorf("len(Completed()) = %d, want 1", len(restored.Completed()))
			}
		})
	}
}

func TestCompleteProblemClearsSelections(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p})
	s.StartProblem(p)
	if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}

	record, err := s.CompleteProblem()
	if err != nil {
		t.Fatal(err)
	}
	if record.SelectionCount != 1 {
		t.Errorf("record SelectionCount = %d, want 1", record.SelectionCount)
	}

	snap := s.Snapshot()
	if snap.SelectionCount != 0 || len(snap.Selections) != 0 {
		t.Errorf("selections after completion: %d, %d", snap.SelectionCount, len(snap.Selections))
	}
	if _, ok := s.LastSelection(); ok {
		t.Error("LastSelection() still returns the finished problem's pick")
	}
}

func TestResetPublishesAndClears(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")
	s.InitSession([]models.ProblemDefinition{p})
	s.StartProblem(p)
	if _, err := s.CompleteProblem(); err != nil {
		t.Fatal(err)
	}

	var resets int
	s.Subscribe(TopicReset, func(Event) error {
		resets++
		return nil
	})
	s.Reset()

	if resets != 1 {
		t.Errorf("reset events = %d, want 1", resets)
	}
	if len(s.Completed()) != 0 {
		t.Error("completed log survived Reset")
	}
	if s.SessionID() == "session-2" {
		t.Error("Reset should generate a new session ID")
	}
}

func TestGenerationChanges(t *testing.T) {
	s, _ := newTestState()
	p := testProblem("x")

	g0 := s.Generation()
	s.StartProblem(p)
	g1 := s.Generation()
	if g1 == g0 {
		t.Error("StartProblem did not change generation")
	}
	if _, err := s.RecordSelection(choice("x", 1), 0); err != nil {
		t.Fatal(err)
	}
	if s.Generation() != g1 {
		t.Error("RecordSelection changed generation")
	}
	s.Reset()
	if s.Generation() == g1 {
		t.Error("Reset did not change generation")
	}
}
