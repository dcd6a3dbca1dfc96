package models

import "time"

// Screen is the top-level view the participant is on
type Screen string

const (
	ScreenWelcome Screen = "welcome"
	ScreenGame    Screen = "game"
	ScreenReport  Screen = "report"
)

// UIState holds the presentation flags owned by the session
type UIState struct {
	IsAnimating   bool   `json:"is_animating"`
	NextEnabled   bool   `json:"next_enabled"`
	CurrentScreen Screen `json:"current_screen"`
}

// Progress describes how far through the problem set a session is
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// SessionStats summarizes the completed problems of a running session
type SessionStats struct {
	SessionID         string        `json:"session_id"`
	StartedAt         time.Time     `json:"started_at"`
	ProblemsCompleted int           `json:"problems_completed"`
	ProblemsCorrect   int           `json:"problems_correct"`
	Accuracy          int           `json:"accuracy"`
	TotalTime         time.Duration `json:"total_time"`
	AverageTime       time.Duration `json:"average_time"`
}

// StoredSession describes a persisted session in the progress store
type StoredSession struct {
	SessionID    string    `json:"session_id"`
	ProblemCount int       `json:"problem_count"`
	CorrectCount int       `json:"correct_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavedSession is the persisted form of a session: its identity, the index
// of the next problem and the completed-problem log. Mid-problem state is
// never saved.
type SavedSession struct {
	SessionID     string    `json:"session_id"`
	StartedAt     time.Time `json:"started_at"`
	TotalProblems int       `json:"total_problems"`
	// NextIndex runs ahead of len(Completed) once problems have been skipped
	NextIndex int                `json:"next_index"`
	Completed []ProblemRunRecord `json:"completed"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ResumeIndex returns the index a restored session continues from. Records
// saved without a next index resume after the last completed problem.
func (s SavedSession) ResumeIndex() int {
	if s.NextIndex < len(s.Completed) {
		return len(s.Completed)
	}
	return s.NextIndex
}

// CorrectCount returns how many completed problems were answered correctly
func (s SavedSession) CorrectCount() int {
	n := 0
	for _, r := range s.Completed {
		if r.IsCorrect {
			n++
		}
	}
	return n
}

// Summary describes the saved session for listings
func (s SavedSession) Summary() StoredSession {
	return StoredSession{
		SessionID:    s.SessionID,
		ProblemCount: len(s.Completed),
		CorrectCount: s.CorrectCount(),
		UpdatedAt:    s.UpdatedAt,
	}
}
