// Package report derives summaries and export rows from a completed-problem
// log. Every function is pure: the log is never modified.
package report

import (
	"math"

	"rrstudy/internal/models"
)

// Totals are the figures reported for a group of problems
type Totals struct {
	Total         int   `json:"total"`
	Correct       int   `json:"correct"`
	Accuracy      int   `json:"accuracy"`
	TotalTimeMs   int64 `json:"total_time_ms"`
	AverageTimeMs int64 `json:"average_time_ms"`
}

func (t *Totals) add(r models.ProblemRunRecord) {
	t.Total++
	if r.IsCorrect {
		t.Correct++
	}
	t.TotalTimeMs += r.TotalTimeMs()
}

func (t *Totals) finish() {
	if t.Total == 0 {
		return
	}
	t.Accuracy = int(math.Round(float64(t.Correct) / float64(t.Total) * 100))
	t.AverageTimeMs = int64(math.Round(float64(t.TotalTimeMs) / float64(t.Total)))
}

// TypeTotals are the totals of one game type
type TypeTotals struct {
	Type models.GameType `json:"type"`
	Totals
}

// Summary is the report shown at the end of a session
type Summary struct {
	Overall Totals       `json:"overall"`
	ByType  []TypeTotals `json:"by_type"`
}

// Headline renders the participant-facing sentence for the summary
func (s Summary) Headline() string {
	return headline(s.Overall)
}

// Summarize computes overall and per-type totals. ok is false when the log
// is empty, in which case there is nothing to report.
func Summarize(log []models.ProblemRunRecord) (Summary, bool) {
	if len(log) == 0 {
		return Summary{}, false
	}

	var s Summary
	index := make(map[models.GameType]int)
	for _, r := range log {
		s.Overall.add(r)

		i, ok := index[r.Type]
		if !ok {
			i = len(s.ByType)
			index[r.Type] = i
			s.ByType = append(s.ByType, TypeTotals{Type: r.Type})
		}
		s.ByType[i].add(r)
	}

	s.Overall.finish()
	for i := range s.ByType {
		s.ByType[i].finish()
	}
	return s, true
}

// ResultRow is one line of the results table on the report screen
type ResultRow struct {
	Number      int     `json:"number"`
	Problem     string  `json:"problem"`
	TimeSeconds float64 `json:"time_seconds"`
	Correct     bool    `json:"correct"`
}

// Results lists each completed problem for the report screen
func Results(log []models.ProblemRunRecord) ([]ResultRow, bool) {
	if len(log) == 0 {
		return nil, false
	}
	rows := make([]ResultRow, len(log))
	for i, r := range log {
		rows[i] = ResultRow{
			Number:      i + 1,
			Problem:     string(r.Type) + " - " + r.Label,
			TimeSeconds: math.Round(float64(r.TotalTimeMs())/10) / 100,
			Correct:     r.IsCorrect,
		}
	}
	return rows, true
}
