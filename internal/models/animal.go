package models

import "fmt"

// Animal represents a single picture in a problem
type Animal struct {
	ID      int    `json:"id" yaml:"id"`
	Species string `json:"species" yaml:"species"`
	Size    string `json:"size" yaml:"size"`
	Color   string `json:"color" yaml:"color"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Image   string `json:"image" yaml:"image"`
}

// Label returns a human readable description such as "small striped red cat"
func (a Animal) Label() string {
	if a.Pattern == "striped" {
		return fmt.Sprintf("%s striped %s %s", a.Size, a.Color, a.Species)
	}
	return fmt.Sprintf("%s %s %s", a.Size, a.Color, a.Species)
}

// Choice is one selectable unit of a problem. Grouped choices share one ID.
// Display-only items carry an empty ID.
type Choice struct {
	ID      string   `json:"id"`
	Animals []Animal `json:"animals"`
}

// Clone returns a copy that shares no memory with c
func (c Choice) Clone() Choice {
	animals := make([]Animal, len(c.Animals))
	copy(animals, c.Animals)
	return Choice{ID: c.ID, Animals: animals}
}

// AnimalIDs returns the IDs of every animal in the choice
func (c Choice) AnimalIDs() []int {
	ids := make([]int, len(c.Animals))
	for i, a := range c.Animals {
		ids[i] = a.ID
	}
	return ids
}

// PrimaryAnimalID returns the ID used to look up the choice's origin
func (c Choice) PrimaryAnimalID() (int, bool) {
	if len(c.Animals) == 0 {
		return 0, false
	}
	return c.Animals[0].ID, true
}
