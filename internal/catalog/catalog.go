// Package catalog supplies the ordered problem set for a study session.
package catalog

import (
	"fmt"
	"strings"

	"rrstudy/internal/models"
)

// GameTypeInfo holds display metadata for a game type
type GameTypeInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
}

var gameTypes = map[models.GameType]GameTypeInfo{
	models.GameTypeAnomaly: {
		Name:        "Anomaly",
		Title:       `"What Does Not Belong?"`,
		Instruction: "Find the animal that does not belong!",
	},
	models.GameTypeAnalogy: {
		Name:        "Analogy",
		Title:       `"Complete the Pattern"`,
		Instruction: "Choose the answer choice that completes the pattern.",
	},
	models.GameTypeAntithesis: {
		Name:        "Antithesis",
		Title:       `"Find the Middle"`,
		Instruction: "Choose the option that goes in the middle.",
	},
	models.GameTypeAntinomy: {
		Name:        "Antinomy",
		Title:       "What Goes Game",
		Instruction: "Choose the option that matches the green box rule.",
	},
}

const defaultInstruction = "Choose the best answer."

// Info returns the display metadata for a game type
func Info(t models.GameType) (GameTypeInfo, bool) {
	info, ok := gameTypes[t]
	return info, ok
}

// InstructionFor returns the participant instruction for a game type
func InstructionFor(t models.GameType) string {
	if info, ok := gameTypes[t]; ok {
		return info.Instruction
	}
	return defaultInstruction
}

// Catalog is an immutable, ordered problem set
type Catalog struct {
	problems []models.ProblemDefinition
}

// New wraps a problem list. The list is copied.
func New(problems []models.ProblemDefinition) *Catalog {
	c := &Catalog{problems: make([]models.ProblemDefinition, len(problems))}
	for i, p := range problems {
		c.problems[i] = p.Clone()
	}
	return c
}

// Default returns the built-in problem set
func Default() *Catalog {
	problems, err := Build(defaultProblems)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in problem set is invalid: %v", err))
	}
	return &Catalog{problems: problems}
}

// Len returns the number of problems
func (c *Catalog) Len() int {
	return len(c.problems)
}

// Problems returns a copy of every problem in order
func (c *Catalog) Problems() []models.ProblemDefinition {
	out := make([]models.ProblemDefinition, len(c.problems))
	for i, p := range c.problems {
		out[i] = p.Clone()
	}
	return out
}

// At returns the problem at index i
func (c *Catalog) At(i int) (models.ProblemDefinition, bool) {
	if i < 0 || i >= len(c.problems) {
		return models.ProblemDefinition{}, false
	}
	return c.problems[i].Clone(), true
}

// ByType returns the problems of a single game type
func (c *Catalog) ByType(t models.GameType) []models.ProblemDefinition {
	var out []models.ProblemDefinition
	for _, p := range c.problems {
		if p.Type == t {
			out = append(out, p.Clone())
		}
	}
	return out
}

// IndexOfType returns the first index at or after from whose problem has type t
func (c *Catalog) IndexOfType(t models.GameType, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(c.problems); i++ {
		if c.problems[i].Type == t {
			return i, true
		}
	}
	return -1, false
}

// Counter is the "n of m" position of a problem within its game type
type Counter struct {
	Type   models.GameType `json:"type"`
	Label  string          `json:"label"`
	Number int             `json:"number"`
	Total  int             `json:"total"`
}

// String renders the counter as shown to participants, e.g. "Anomaly - Question 1 (2 of 7)"
func (c Counter) String() string {
	var b strings.Builder
	b.WriteString(string(c.Type))
	if c.Label != "" {
		b.WriteString(" - ")
		b.WriteString(c.Label)
	}
	fmt.Fprintf(&b, " (%d of %d)", c.Number, c.Total)
	return b.String()
}

// CounterAt computes the per-type counter for the problem at index i
func (c *Catalog) CounterAt(i int) (Counter, bool) {
	if i < 0 || i >= len(c.problems) {
		return Counter{}, false
	}
	p := c.problems[i]
	counter := Counter{Type: p.Type, Label: p.Label}
	for j, other := range c.problems {
		if other.Type != p.Type {
			continue
		}
		counter.Total++
		if j <= i {
			counter.Number++
		}
	}
	return counter, true
}
