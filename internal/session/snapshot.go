package session

import (
	"time"

	"rrstudy/internal/models"
)

// Snapshot is an immutable copy of the full state. Mutating it has no
// effect on the State it was taken from.
type Snapshot struct {
	SessionID        string                    `json:"session_id"`
	StartedAt        time.Time                 `json:"started_at"`
	CurrentIndex     int                       `json:"current_problem_index"`
	TotalProblems    int                       `json:"total_problems"`
	CurrentProblem   *models.Problem           `json:"current_problem,omitempty"`
	ProblemStartTime time.Time                 `json:"problem_start_time"`
	Selections       []models.Selection        `json:"selections"`
	SelectionCount   int                       `json:"selection_count"`
	StagedChoice     *models.Choice            `json:"staged_choice,omitempty"`
	Origins          map[int]models.Origin     `json:"origins"`
	Completed        []models.ProblemRunRecord `json:"completed"`
	UI               models.UIState            `json:"ui"`
	Progress         models.Progress           `json:"progress"`
}

// Snapshot copies the state
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:        s.sessionID,
		StartedAt:        s.startedAt,
		CurrentIndex:     s.index,
		TotalProblems:    s.totalProblems,
		ProblemStartTime: s.problemStart,
		Selections:       make([]models.Selection, len(s.selections)),
		SelectionCount:   s.selectionCount,
		Origins:          make(map[int]models.Origin, len(s.origins)),
		Completed:        models.CloneRecords(s.completed),
		UI:               s.ui,
		Progress:         s.Progress(),
	}
	if s.current != nil {
		p := s.current.Clone()
		snap.CurrentProblem = &p
	}
	for i, sel := range s.selections {
		snap.Selections[i] = sel.Clone()
	}
	if s.staged != nil {
		c := s.staged.Clone()
		snap.StagedChoice = &c
	}
	for id, o := range s.origins {
		snap.Origins[id] = o
	}
	return snap
}
