package models

import "time"

// Selection records one accepted pick within a problem
type Selection struct {
	ChoiceID  string    `json:"choice_id"`
	Animals   []Animal  `json:"animals"`
	Timestamp time.Time `json:"timestamp"`
	SlotIndex int       `json:"slot_index"`
}

// Clone returns a copy that shares no memory with s
func (s Selection) Clone() Selection {
	animals := make([]Animal, len(s.Animals))
	copy(animals, s.Animals)
	s.Animals = animals
	return s
}

// Origin is where a staged animal came from
type Origin struct {
	Section   string `json:"section"`
	SlotIndex int    `json:"slot_index"`
}

// MainSection is the only section choices are staged from
const MainSection = "main"

// ProblemRunRecord is the scored log entry for one completed problem
type ProblemRunRecord struct {
	Problem
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	TotalTime      time.Duration `json:"total_time"`
	Selections     []Selection   `json:"selections"`
	SelectionCount int           `json:"selection_count"`
	FinalSelection *Selection    `json:"final_selection,omitempty"`
	IsCorrect      bool          `json:"is_correct"`
}

// TotalTimeMs returns the time spent on the problem in milliseconds
func (r ProblemRunRecord) TotalTimeMs() int64 {
	return r.TotalTime.Milliseconds()
}

// Clone returns a deep copy of the record
func (r ProblemRunRecord) Clone() ProblemRunRecord {
	out := r
	out.Problem = r.Problem.Clone()
	out.Selections = make([]Selection, len(r.Selections))
	for i, s := range r.Selections {
		out.Selections[i] = s.Clone()
	}
	if r.FinalSelection != nil {
		final := r.FinalSelection.Clone()
		out.FinalSelection = &final
	}
	return out
}

// CloneRecords deep copies a completed-problem log
func CloneRecords(records []ProblemRunRecord) []ProblemRunRecord {
	out := make([]ProblemRunRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
