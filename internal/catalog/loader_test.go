package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalog = `
problems:
  - type: Anomaly
    label: Sample
    choices:
      - ["sheep small yellow"]
      - ["pig medium yellow"]
      - ["cat small yellow striped"]
    correct: 2
  - type: Analogy
    label: Sample
    fixed:
      - label: Question Box
        items:
          - ["pig large green"]
          - ["pig small green"]
    choices:
      - ["sheep medium yellow"]
      - ["sheep small yellow"]
    correct: 1
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	first, _ := c.At(0)
	if first.CorrectChoiceID != "3" {
		t.Errorf("first CorrectChoiceID = %q, want 3", first.CorrectChoiceID)
	}

	second, _ := c.At(1)
	if len(second.Sections) != 2 {
		t.Fatalf("second problem has %d sections, want 2", len(second.Sections))
	}
	if second.Sections[0].Label != "Question Box" || second.Sections[0].Selectable {
		t.Errorf("first section = %+v", second.Sections[0])
	}
	// IDs continue across problems: 3 anomaly animals, then 2 choices, then 2 display animals.
	if second.CorrectChoiceID != "5" {
		t.Errorf("second CorrectChoiceID = %q, want 5", second.CorrectChoiceID)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "problems: [this is: not valid"},
		{"empty", "problems: []"},
		{"bad problem", "problems:\n  - type: Anomaly\n    choices: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\") error = %v", err)
	}
	if c.Len() != 28 {
		t.Errorf("default Len() = %d, want 28", c.Len())
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault(path) error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("file Len() = %d, want 2", c.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
