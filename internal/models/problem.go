package models

import (
	"fmt"
	"strings"
)

// GameType identifies one of the four relational reasoning games
type GameType string

const (
	GameTypeAnomaly    GameType = "Anomaly"
	GameTypeAnalogy    GameType = "Analogy"
	GameTypeAntithesis GameType = "Antithesis"
	GameTypeAntinomy   GameType = "Antinomy"
)

// GameTypes lists every game type in presentation order
var GameTypes = []GameType{GameTypeAnomaly, GameTypeAnalogy, GameTypeAntithesis, GameTypeAntinomy}

// ParseGameType matches a game type name case-insensitively
func ParseGameType(s string) (GameType, error) {
	for _, t := range GameTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown game type: %q", s)
}

// Section is an ordered group of items within a problem
type Section struct {
	Label      string   `json:"label,omitempty"`
	Selectable bool     `json:"selectable"`
	Items      []Choice `json:"items"`
}

// ProblemDefinition represents one puzzle as supplied by the catalog
type ProblemDefinition struct {
	Type            GameType  `json:"type"`
	Label           string    `json:"label"`
	Instruction     string    `json:"instruction,omitempty"`
	Sections        []Section `json:"sections"`
	CorrectChoiceID string    `json:"correct_choice_id"`
}

// Clone returns a deep copy of the definition
func (p ProblemDefinition) Clone() ProblemDefinition {
	out := p
	out.Sections = make([]Section, len(p.Sections))
	for i, s := range p.Sections {
		items := make([]Choice, len(s.Items))
		for j, item := range s.Items {
			items[j] = item.Clone()
		}
		out.Sections[i] = Section{Label: s.Label, Selectable: s.Selectable, Items: items}
	}
	return out
}

// Animals flattens every animal of every section, in section order
func (p ProblemDefinition) Animals() []Animal {
	var animals []Animal
	for _, s := range p.Sections {
		for _, item := range s.Items {
			animals = append(animals, item.Animals...)
		}
	}
	return animals
}

// Choices returns the selectable choices in display order
func (p ProblemDefinition) Choices() []Choice {
	var choices []Choice
	for _, s := range p.Sections {
		if !s.Selectable {
			continue
		}
		choices = append(choices, s.Items...)
	}
	return choices
}

// FindChoice looks up a selectable choice by ID
func (p ProblemDefinition) FindChoice(id string) (Choice, bool) {
	if id == "" {
		return Choice{}, false
	}
	for _, c := range p.Choices() {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return Choice{}, false
}

// Problem is the definition currently being played plus its flat animal list
type Problem struct {
	ProblemDefinition
	Animals []Animal `json:"animals"`
}

// NewProblem derives the flat animal list from a defensive copy of def
func NewProblem(def ProblemDefinition) Problem {
	c := def.Clone()
	return Problem{ProblemDefinition: c, Animals: c.Animals()}
}

// Clone returns a deep copy of the problem
func (p Problem) Clone() Problem {
	animals := make([]Animal, len(p.Animals))
	copy(animals, p.Animals)
	return Problem{ProblemDefinition: p.ProblemDefinition.Clone(), Animals: animals}
}
