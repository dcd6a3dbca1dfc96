// Package export writes the study datasets as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"rrstudy/internal/models"
	"rrstudy/internal/report"
)

// Kind selects a dataset
type Kind string

const (
	// KindAggregate has one row per completed problem
	KindAggregate Kind = "aggregate"
	// KindDetailed has one row per animal per selection
	KindDetailed Kind = "detailed"
)

// ParseKind validates a dataset name
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindAggregate:
		return KindAggregate, nil
	case KindDetailed:
		return KindDetailed, nil
	}
	return "", fmt.Errorf("unknown export kind: %q", s)
}

// timestampLayout matches ISO-8601 with milliseconds in UTC
const timestampLayout = "2006-01-02T15:04:05.000Z"

var aggregateHeader = []string{
	"Problem Number",
	"Game Type",
	"Problem Label",
	"Instruction",
	"Correct Answer ID",
	"Presented Animal IDs",
	"Problem Start Time",
	"Total Time (ms)",
	"Total Selections",
	"Final Selection ID",
	"Final Selection Species",
	"Final Selection Colors",
	"Final Selection Patterns",
	"Final Selection Sizes",
	"Final Selection Images",
	"Is Correct",
}

var detailedHeader = []string{
	"Problem Number",
	"Game Type",
	"Problem Label",
	"Selection Number",
	"Selection Time (ms)",
	"Selection Timestamp",
	"Selected Choice ID",
	"Selected Slot Index",
	"Selected Animal Species",
	"Selected Animal Color",
	"Selected Animal Pattern",
	"Selected Animal Size",
	"Is Final Selection",
	"Is Correct",
}

// WriteAggregate writes the aggregate dataset to w
func WriteAggregate(w io.Writer, rows []report.AggregateRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(aggregateHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.ProblemNumber),
			string(r.GameType),
			r.Label,
			r.Instruction,
			r.CorrectChoiceID,
			joinInts(r.PresentedAnimalIDs),
			r.StartTime.UTC().Format(timestampLayout),
			strconv.FormatInt(r.TotalTimeMs, 10),
			strconv.Itoa(r.TotalSelections),
			r.FinalChoiceID,
			strings.Join(r.FinalSpecies, ";"),
			strings.Join(r.FinalColors, ";"),
			strings.Join(r.FinalPatterns, ";"),
			strings.Join(r.FinalSizes, ";"),
			strings.Join(r.FinalImages, ";"),
			boolString(r.IsCorrect),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write problem %d: %w", r.ProblemNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailed writes the detailed dataset to w
func WriteDetailed(w io.Writer, rows []report.DetailedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.ProblemNumber),
			string(r.GameType),
			r.Label,
			strconv.Itoa(r.SelectionNumber),
			strconv.FormatInt(r.SelectionTimeMs, 10),
			r.Timestamp.UTC().Format(timestampLayout),
			r.ChoiceID,
			strconv.Itoa(r.SlotIndex),
			r.Species,
			r.Color,
			r.Pattern,
			r.Size,
			boolString(r.IsFinal),
			boolString(r.IsCorrect),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write problem %d selection %d: %w", r.ProblemNumber, r.SelectionNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Generate renders the chosen dataset for a completed log. ok is false when
// the log is empty and there is nothing to export.
func Generate(kind Kind, log []models.ProblemRunRecord) (data []byte, ok bool, err error) {
	var buf bytes.Buffer
	switch kind {
	case KindAggregate:
		rows, ok := report.AggregateRows(log)
		if !ok {
			return nil, false, nil
		}
		err = WriteAggregate(&buf, rows)
	case KindDetailed:
		rows, ok := report.DetailedRows(log)
		if !ok {
			return nil, false, nil
		}
		err = WriteDetailed(&buf, rows)
	default:
		return nil, false, fmt.Errorf("unknown export kind: %q", kind)
	}
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

// Filename names an export file after its kind and creation time,
// e.g. rr_experiment_data_2024-03-01_10-00-00.csv
func Filename(kind Kind, t time.Time) string {
	prefix := "rr_experiment_data"
	if kind == KindDetailed {
		prefix = "rr_detailed_data"
	}
	return fmt.Sprintf("%s_%s.csv", prefix, t.Format("2006-01-02_15-04-05"))
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ";")
}

func boolString(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
