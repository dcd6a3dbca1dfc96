package report

import (
	"fmt"
	"time"

	"rrstudy/internal/catalog"
	"rrstudy/internal/models"
)

// AggregateRow is one completed problem in the aggregate dataset
type AggregateRow struct {
	ProblemNumber      int
	GameType           models.GameType
	Label              string
	Instruction        string
	CorrectChoiceID    string
	PresentedAnimalIDs []int
	StartTime          time.Time
	TotalTimeMs        int64
	TotalSelections    int
	FinalChoiceID      string
	FinalSpecies       []string
	FinalColors        []string
	FinalPatterns      []string
	FinalSizes         []string
	FinalImages        []string
	IsCorrect          bool
}

// DetailedRow is one animal of one selection in the detailed dataset
type DetailedRow struct {
	ProblemNumber   int
	GameType        models.GameType
	Label           string
	SelectionNumber int
	// SelectionTimeMs is measured from the start of the problem
	SelectionTimeMs int64
	Timestamp       time.Time
	ChoiceID        string
	SlotIndex       int
	Species         string
	Color           string
	Pattern         string
	Size            string
	IsFinal         bool
	IsCorrect       bool
}

// AggregateRows returns one row per completed problem. ok is false for an empty log.
func AggregateRows(log []models.ProblemRunRecord) ([]AggregateRow, bool) {
	if len(log) == 0 {
		return nil, false
	}

	rows := make([]AggregateRow, 0, len(log))
	for i, r := range log {
		instruction := r.Instruction
		if instruction == "" {
			instruction = catalog.InstructionFor(r.Type)
		}

		row := AggregateRow{
			ProblemNumber:      i + 1,
			GameType:           r.Type,
			Label:              r.Label,
			Instruction:        instruction,
			CorrectChoiceID:    r.CorrectChoiceID,
			PresentedAnimalIDs: animalIDs(r.Animals),
			StartTime:          r.StartTime,
			TotalTimeMs:        r.TotalTimeMs(),
			TotalSelections:    r.SelectionCount,
			IsCorrect:          r.IsCorrect,
		}
		if final := r.FinalSelection; final != nil {
			row.FinalChoiceID = final.ChoiceID
			for _, a := range final.Animals {
				row.FinalSpecies = append(row.FinalSpecies, a.Species)
				row.FinalColors = append(row.FinalColors, a.Color)
				row.FinalPatterns = append(row.FinalPatterns, a.Pattern)
				row.FinalSizes = append(row.FinalSizes, a.Size)
				row.FinalImages = append(row.FinalImages, a.Image)
			}
		}
		rows = append(rows, row)
	}
	return rows, true
}

// DetailedRows flattens every selection into one row per selected animal.
// The last selection of each problem is marked final and only a final
// selection can be correct. ok is false for an empty log.
func DetailedRows(log []models.ProblemRunRecord) ([]DetailedRow, bool) {
	if len(log) == 0 {
		return nil, false
	}

	var rows []DetailedRow
	for i, r := range log {
		for j, sel := range r.Selections {
			isFinal := j == len(r.Selections)-1
			for _, a := range sel.Animals {
				rows = append(rows, DetailedRow{
					ProblemNumber:   i + 1,
					GameType:        r.Type,
					Label:           r.Label,
					SelectionNumber: j + 1,
					SelectionTimeMs: sel.Timestamp.Sub(r.StartTime).Milliseconds(),
					Timestamp:       sel.Timestamp,
					ChoiceID:        sel.ChoiceID,
					SlotIndex:       sel.SlotIndex,
					Species:         a.Species,
					Color:           a.Color,
					Pattern:         a.Pattern,
					Size:            a.Size,
					IsFinal:         isFinal,
					IsCorrect:       isFinal && r.IsCorrect,
				})
			}
		}
	}
	return rows, true
}

func animalIDs(animals []models.Animal) []int {
	ids := make([]int, len(animals))
	for i, a := range animals {
		ids[i] = a.ID
	}
	return ids
}

func headline(t Totals) string {
	return fmt.Sprintf("You got %d out of %d correct (%d%%)!", t.Correct, t.Total, t.Accuracy)
}
