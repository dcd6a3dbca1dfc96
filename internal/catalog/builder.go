package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rrstudy/internal/models"
)

// ImageBase is the root of the animal image tree
const ImageBase = "images/website_selection_clean"

var (
	species = []string{"cat", "cow", "dog", "horse", "pig", "sheep"}
	sizes   = []string{"small", "medium", "large"}
	colors  = []string{"blue", "green", "red", "yellow"}

	sizeFolders = map[string]map[string]string{
		"small":  {"solid": "00_no_stripe_small", "striped": "00_stripe_small"},
		"medium": {"solid": "01_no_stripe_medium", "striped": "01_stripe_medium"},
		"large":  {"solid": "02_no_stripe_large", "striped": "02_stripe_large"},
	}

	defaultChoicesLabels = map[models.GameType]string{
		models.GameTypeAnomaly:    "Animals",
		models.GameTypeAnalogy:    "Answer Choices",
		models.GameTypeAntithesis: "Options Box",
		models.GameTypeAntinomy:   "Choices Box",
	}
)

// ProblemSpec is the compact, declarative form of a problem. Animals are
// written as "species size color [striped]".
type ProblemSpec struct {
	Type         string        `yaml:"type"`
	Label        string        `yaml:"label"`
	Instruction  string        `yaml:"instruction,omitempty"`
	Fixed        []SectionSpec `yaml:"fixed,omitempty"`
	ChoicesLabel string        `yaml:"choices_label,omitempty"`
	Choices      [][]string    `yaml:"choices"`
	Correct      int           `yaml:"correct"`
}

// SectionSpec is a display-only section; each item is a group of animals
type SectionSpec struct {
	Label string     `yaml:"label"`
	Items [][]string `yaml:"items"`
}

// builder assigns animal and group IDs in creation order
type builder struct {
	nextAnimalID int
	nextGroupID  int
}

func newBuilder() *builder {
	return &builder{nextAnimalID: 1, nextGroupID: 1}
}

// Build turns specs into problem definitions. IDs restart at 1 on every call.
func Build(specs []ProblemSpec) ([]models.ProblemDefinition, error) {
	b := newBuilder()
	problems := make([]models.ProblemDefinition, 0, len(specs))
	for i, spec := range specs {
		p, err := b.problem(spec)
		if err != nil {
			return nil, fmt.Errorf("problem %d (%s %s): %w", i+1, spec.Type, spec.Label, err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func (b *builder) problem(spec ProblemSpec) (models.ProblemDefinition, error) {
	gameType, err := models.ParseGameType(spec.Type)
	if err != nil {
		return models.ProblemDefinition{}, err
	}
	if len(spec.Choices) == 0 {
		return models.ProblemDefinition{}, errors.New("no choices")
	}
	if spec.Correct < 0 || spec.Correct >= len(spec.Choices) {
		return models.ProblemDefinition{}, fmt.Errorf("correct index %d out of range", spec.Correct)
	}

	// Choices are built before the display sections so their IDs come first.
	choices := make([]models.Choice, 0, len(spec.Choices))
	for _, group := range spec.Choices {
		c, err := b.choice(group)
		if err != nil {
			return models.ProblemDefinition{}, err
		}
		choices = append(choices, c)
	}

	var sections []models.Section
	for _, fixed := range spec.Fixed {
		section := models.Section{Label: fixed.Label}
		for _, group := range fixed.Items {
			animals, err := b.animals(group)
			if err != nil {
				return models.ProblemDefinition{}, err
			}
			section.Items = append(section.Items, models.Choice{Animals: animals})
		}
		sections = append(sections, section)
	}

	label := spec.ChoicesLabel
	if label == "" {
		label = defaultChoicesLabels[gameType]
	}
	sections = append(sections, models.Section{Label: label, Selectable: true, Items: choices})

	return models.ProblemDefinition{
		Type:            gameType,
		Label:           spec.Label,
		Instruction:     spec.Instruction,
		Sections:        sections,
		CorrectChoiceID: choices[spec.Correct].ID,
	}, nil
}

func (b *builder) choice(group []string) (models.Choice, error) {
	animals, err := b.animals(group)
	if err != nil {
		return models.Choice{}, err
	}
	if len(animals) == 1 {
		return models.Choice{ID: strconv.Itoa(animals[0].ID), Animals: animals}, nil
	}
	id := fmt.Sprintf("group-%d", b.nextGroupID)
	b.nextGroupID++
	return models.Choice{ID: id, Animals: animals}, nil
}

func (b *builder) animals(group []string) ([]models.Animal, error) {
	if len(group) == 0 {
		return nil, errors.New("empty animal group")
	}
	animals := make([]models.Animal, 0, len(group))
	for _, s := range group {
		a, err := b.animal(s)
		if err != nil {
			return nil, err
		}
		animals = append(animals, a)
	}
	return animals, nil
}

func (b *builder) animal(s string) (models.Animal, error) {
	a, err := ParseAnimal(s)
	if err != nil {
		return models.Animal{}, err
	}
	a.ID = b.nextAnimalID
	b.nextAnimalID++
	return a, nil
}

// ParseAnimal parses "species size color [pattern]" without assigning an ID
func ParseAnimal(s string) (models.Animal, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) < 3 || len(fields) > 4 {
		return models.Animal{}, fmt.Errorf("invalid animal %q: want \"species size color [pattern]\"", s)
	}
	a := models.Animal{Species: fields[0], Size: fields[1], Color: fields[2], Pattern: "solid"}
	if len(fields) == 4 && fields[3] == "striped" {
		a.Pattern = "striped"
	}
	if !contains(species, a.Species) {
		return models.Animal{}, fmt.Errorf("invalid animal %q: unknown species %q", s, a.Species)
	}
	if !contains(sizes, a.Size) {
		return models.Animal{}, fmt.Errorf("invalid animal %q: unknown size %q", s, a.Size)
	}
	if !contains(colors, a.Color) {
		return models.Animal{}, fmt.Errorf("invalid animal %q: unknown color %q", s, a.Color)
	}
	a.Image = imagePath(a)
	return a, nil
}

func imagePath(a models.Animal) string {
	folder, ok := sizeFolders[a.Size][a.Pattern]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s.svg", ImageBase, a.Species, folder, a.Color)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
