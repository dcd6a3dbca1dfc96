// Package selection applies participant picks to a session, enforcing the
// staging and swap protocol and allowing one visual transition at a time.
package selection

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rrstudy/internal/models"
	"rrstudy/internal/session"
)

var (
	// ErrDebounced is returned for events inside the quiet period after an accepted event
	ErrDebounced = errors.New("selection ignored: inside debounce window")
	// ErrTransitionInFlight is returned while another transition awaits its commit
	ErrTransitionInFlight = errors.New("selection ignored: transition in flight")
	// ErrStaleTransition is returned when committing a transition whose problem has been replaced
	ErrStaleTransition = errors.New("transition belongs to a previous problem")
	// ErrUnknownTransition is returned for a token that is not pending
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrNothingStaged is returned when unstaging an empty slot
	ErrNothingStaged = errors.New("nothing staged")
	// ErrAlreadyStaged is returned when picking the choice that is already staged
	ErrAlreadyStaged = errors.New("choice is already staged")
	// ErrOriginLookupFailed is attached as a warning when a staged choice has no recorded origin
	ErrOriginLookupFailed = errors.New("origin lookup failed")
)

const (
	DefaultDebounce          = 100 * time.Millisecond
	DefaultTransitionTimeout = 2 * time.Second
)

// Mode selects how picks are applied for a game type
type Mode int

const (
	// ModeStaging moves the picked choice into the staged slot, swapping out
	// whatever was there
	ModeStaging Mode = iota
	// ModeSelectOnly records the pick and replaces the visual selection
	ModeSelectOnly
)

func (m Mode) String() string {
	if m == ModeStaging {
		return "staging"
	}
	return "select-only"
}

// ModeFor returns the mode used by a game type
func ModeFor(t models.GameType) Mode {
	if t == models.GameTypeAnomaly {
		return ModeStaging
	}
	return ModeSelectOnly
}

// Kind describes what a transition does
type Kind string

const (
	KindMove    Kind = "move"
	KindSwap    Kind = "swap"
	KindReplace Kind = "replace"
	KindReturn  Kind = "return"
)

// Transition describes one accepted event. Move, swap and return transitions
// must be committed with their token once the presentation has finished;
// replace transitions are applied immediately and carry no token.
type Transition struct {
	Token      string        `json:"token,omitempty"`
	Kind       Kind          `json:"kind"`
	Choice     models.Choice `json:"choice"`
	Slot       int           `json:"slot"`
	AcceptedAt time.Time     `json:"accepted_at"`

	// Returning is the choice leaving the staged slot and ReturnSlot where it goes
	Returning  *models.Choice `json:"returning,omitempty"`
	ReturnSlot int            `json:"return_slot"`

	// PreviousChoiceID is the choice to unmark for replace transitions
	PreviousChoiceID string `json:"previous_choice_id,omitempty"`

	// Warning carries a recovered failure such as ErrOriginLookupFailed
	Warning error `json:"-"`
}

// NeedsCommit reports whether the transition holds the animation lock
func (t Transition) NeedsCommit() bool {
	return t.Token != ""
}

// Config holds coordinator timings
type Config struct {
	// Debounce is the quiet period after an accepted event
	Debounce time.Duration
	// TransitionTimeout is how long a transition may wait for its commit
	// before the next event commits it
	TransitionTimeout time.Duration
}

type pending struct {
	transition Transition
	generation uint64
	begun      time.Time
}

// Coordinator turns picks into transitions on a session.State. Like the
// state it drives, it is not safe for concurrent use.
type Coordinator struct {
	state  *session.State
	clock  session.Clock
	config Config

	lastAccepted time.Time
	inFlight     *pending
}

// NewCoordinator creates a coordinator. Zero config values take the defaults.
func NewCoordinator(state *session.State, clock session.Clock, config Config) *Coordinator {
	if clock == nil {
		clock = session.SystemClock
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.TransitionTimeout <= 0 {
		config.TransitionTimeout = DefaultTransitionTimeout
	}
	return &Coordinator{state: state, clock: clock, config: config}
}

// Apply accepts a pick of choice at slot
func (c *Coordinator) Apply(mode Mode, choice models.Choice, slot int) (Transition, error) {
	now, err := c.accept()
	if err != nil {
		return Transition{}, err
	}

	if mode == ModeSelectOnly {
		return c.replace(choice, slot, now)
	}

	t := Transition{Kind: KindMove, Choice: choice.Clone(), Slot: slot, AcceptedAt: now}

	staged, ok := c.state.StagedChoice()
	if ok {
		if staged.ID == choice.ID {
			return Transition{}, ErrAlreadyStaged
		}
		t.Returning = &staged
		if origin, found := c.originOf(staged); found {
			t.Kind = KindSwap
			t.ReturnSlot = origin.SlotIndex
		} else {
			// The staged choice takes the slot vacated by the pick.
			t.Warning = fmt.Errorf("%w for choice %s", ErrOriginLookupFailed, staged.ID)
			t.ReturnSlot = slot
			log.Printf("Warning: %v, falling back to move", t.Warning)
		}
	}

	c.lastAccepted = now
	return c.begin(t, now), nil
}

// Unstage begins returning the staged choice to its origin
func (c *Coordinator) Unstage() (Transition, error) {
	now, err := c.accept()
	if err != nil {
		return Transition{}, err
	}

	staged, ok := c.state.StagedChoice()
	if !ok {
		return Transition{}, ErrNothingStaged
	}

	t := Transition{Kind: KindReturn, Choice: staged, Returning: &staged, AcceptedAt: now}
	if origin, found := c.originOf(staged); found {
		t.Slot = origin.SlotIndex
		t.ReturnSlot = origin.SlotIndex
	} else {
		t.Warning = fmt.Errorf("%w for choice %s", ErrOriginLookupFailed, staged.ID)
		log.Printf("Warning: %v, returning to first slot", t.Warning)
	}

	c.lastAccepted = now
	return c.begin(t, now), nil
}

// Commit finalizes the pending transition identified by token
func (c *Coordinator) Commit(token string) (Transition, error) {
	if c.inFlight == nil || token == "" || c.inFlight.transition.Token != token {
		return Transition{}, ErrUnknownTransition
	}
	return c.finish()
}

// Settle commits any pending transition. It is used before leaving a problem.
func (c *Coordinator) Settle() error {
	if c.inFlight == nil {
		return nil
	}
	_, err := c.finish()
	return err
}

// Pending returns the transition awaiting commit
func (c *Coordinator) Pending() (Transition, bool) {
	if c.inFlight == nil {
		return Transition{}, false
	}
	return c.inFlight.transition, true
}

// Reset drops any pending transition and the debounce history
func (c *Coordinator) Reset() {
	if c.inFlight != nil {
		c.inFlight = nil
		c.state.SetUI(session.FlagAnimating, false)
	}
	c.lastAccepted = time.Time{}
}

// accept runs the guards shared by every event and returns its acceptance time
func (c *Coordinator) accept() (time.Time, error) {
	now := c.clock.Now()

	if c.inFlight != nil && now.Sub(c.inFlight.begun) >= c.config.TransitionTimeout {
		log.Printf("Warning: transition %s not committed after %v, committing", c.inFlight.transition.Token, c.config.TransitionTimeout)
		if _, err := c.finish(); err != nil {
			log.Printf("Warning: expired transition dropped: %v", err)
		}
	}

	if !c.state.HasActiveProblem() {
		return time.Time{}, session.ErrNoActiveProblem
	}
	if c.inFlight != nil {
		return time.Time{}, ErrTransitionInFlight
	}
	if !c.lastAccepted.IsZero() && now.Sub(c.lastAccepted) < c.config.Debounce {
		return time.Time{}, ErrDebounced
	}
	return now, nil
}

func (c *Coordinator) replace(choice models.Choice, slot int, now time.Time) (Transition, error) {
	t := Transition{Kind: KindReplace, Choice: choice.Clone(), Slot: slot, AcceptedAt: now}
	if prev, ok := c.state.LastSelection(); ok {
		t.PreviousChoiceID = prev.ChoiceID
	}
	if _, err := c.state.RecordSelectionAt(choice, slot, now); err != nil {
		return Transition{}, err
	}
	c.lastAccepted = now
	return t, nil
}

func (c *Coordinator) begin(t Transition, now time.Time) Transition {
	t.Token = uuid.New().String()
	c.inFlight = &pending{transition: t, generation: c.state.Generation(), begun: now}
	c.state.SetUI(session.FlagAnimating, true)
	return t
}

// finish applies the pending transition to the state and releases the lock
func (c *Coordinator) finish() (Transition, error) {
	p := c.inFlight
	c.inFlight = nil
	defer c.state.SetUI(session.FlagAnimating, false)

	if p.generation != c.state.Generation() {
		return Transition{}, ErrStaleTransition
	}

	t := p.transition
	switch t.Kind {
	case KindMove, KindSwap:
		if _, err := c.state.StageChoice(t.Choice, t.Slot); err != nil {
			return Transition{}, err
		}
		if _, err := c.state.RecordSelectionAt(t.Choice, t.Slot, t.AcceptedAt); err != nil {
			return Transition{}, err
		}
	case KindReturn:
		c.state.ClearStagedChoice()
		c.state.SetUI(session.FlagNextEnabled, false)
	}
	return t, nil
}

func (c *Coordinator) originOf(choice models.Choice) (models.Origin, bool) {
	id, ok := choice.PrimaryAnimalID()
	if !ok {
		return models.Origin{}, false
	}
	return c.state.OriginalPosition(id)
}
