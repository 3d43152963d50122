// Package bank holds the question catalog and the per-tier scoring table.
package bank

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/mockinterview/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Bank is an immutable question catalog with its scoring table.
type Bank struct {
	questions map[model.Difficulty][]model.Question
	bands     map[model.Difficulty][]model.ScoringBand
	byID      map[string]model.Question
}

// catalogFile is the on-disk YAML layout of a catalog.
type catalogFile struct {
	Questions map[string][]questionImport `yaml:"questions"`
	Scoring   map[string][]bandImport     `yaml:"scoring"`
}

type questionImport struct {
	ID               string   `yaml:"id"`
	Text             string   `yaml:"text"`
	TimeLimit        int      `yaml:"time_limit"`
	Category         string   `yaml:"category"`
	Tags             []string `yaml:"tags"`
	ExpectedKeywords []string `yaml:"expected_keywords"`
}

type bandImport struct {
	Band     string `yaml:"band"`
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	Feedback string `yaml:"feedback"`
}

// Default returns the built-in catalog.
func Default() (*Bank, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Bank, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	b := &Bank{
		questions: make(map[model.Difficulty][]model.Question),
		bands:     make(map[model.Difficulty][]model.ScoringBand),
		byID:      make(map[string]model.Question),
	}
	for tier, qs := range cf.Questions {
		d := model.Difficulty(tier)
		if !d.Valid() {
			return nil, fmt.Errorf("unknown tier %q in questions", tier)
		}
		for _, qi := range qs {
			q := model.Question{
				ID:               qi.ID,
				Text:             qi.Text,
				Difficulty:       d,
				TimeLimit:        qi.TimeLimit,
				Category:         qi.Category,
				Tags:             qi.Tags,
				ExpectedKeywords: qi.ExpectedKeywords,
			}
			if _, dup := b.byID[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			b.questions[d] = append(b.questions[d], q)
			b.byID[q.ID] = q
		}
	}
	for tier, bands := range cf.Scoring {
		d := model.Difficulty(tier)
		if !d.Valid() {
			return nil, fmt.Errorf("unknown tier %q in scoring", tier)
		}
		for _, bi := range bands {
			b.bands[d] = append(b.bands[d], model.ScoringBand{
				Name:     model.BandName(bi.Band),
				Min:      bi.Min,
				Max:      bi.Max,
				Feedback: bi.Feedback,
			})
		}
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return b, nil
}

// Validate checks the catalog invariants: every tier has questions with
// unique IDs and positive time limits, and every tier's bands partition
// [0,100] without gaps or overlaps.
func (b *Bank) Validate() error {
	for _, d := range model.Tiers {
		qs := b.questions[d]
		if len(qs) == 0 {
			return fmt.Errorf("tier %s has no questions", d)
		}
		for _, q := range qs {
			if q.ID == "" {
				return fmt.Errorf("tier %s: question without id", d)
			}
			if q.Text == "" {
				return fmt.Errorf("question %s: empty text", q.ID)
			}
			if q.TimeLimit <= 0 {
				return fmt.Errorf("question %s: time limit must be positive, got %d", q.ID, q.TimeLimit)
			}
		}
		if err := ValidateBands(b.bands[d]); err != nil {
			return fmt.Errorf("tier %s: %w", d, err)
		}
	}
	return nil
}

// ValidateBands checks that bands name each of excellent, good, average and
// poor exactly once and that their inclusive ranges tile [0,100].
func ValidateBands(bands []model.ScoringBand) error {
	if len(bands) != len(model.BandNames) {
		return fmt.Errorf("expected %d scoring bands, got %d", len(model.BandNames), len(bands))
	}
	seen := make(map[model.BandName]model.ScoringBand, len(bands))
	for _, band := range bands {
		if !slices.Contains(model.BandNames, band.Name) {
			return fmt.Errorf("unknown band %q", band.Name)
		}
		if _, dup := seen[band.Name]; dup {
			return fmt.Errorf("band %q defined twice", band.Name)
		}
		if band.Min > band.Max {
			return fmt.Errorf("band %q: min %d > max %d", band.Name, band.Min, band.Max)
		}
		seen[band.Name] = band
	}
	if seen[model.BandPoor].Min != 0 {
		return fmt.Errorf("poor band must start at 0, got %d", seen[model.BandPoor].Min)
	}
	if seen[model.BandExcellent].Max != 100 {
		return fmt.Errorf("excellent band must end at 100, got %d", seen[model.BandExcellent].Max)
	}

	sorted := slices.Clone(bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	if sorted[0].Min != 0 {
		return fmt.Errorf("bands start at %d, not 0", sorted[0].Min)
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		switch {
		case cur.Min <= prev.Max:
			return fmt.Errorf("bands %q and %q overlap", prev.Name, cur.Name)
		case cur.Min > prev.Max+1:
			return fmt.Errorf("gap between bands %q and %q", prev.Name, cur.Name)
		}
	}
	if last := sorted[len(sorted)-1]; last.Max != 100 {
		return fmt.Errorf("bands end at %d, not 100", last.Max)
	}
	return nil
}

// QuestionsForTier returns the tier's questions in catalog order.
func (b *Bank) QuestionsForTier(d model.Difficulty) []model.Question {
	return slices.Clone(b.questions[d])
}

// Bands returns a copy of the tier's scoring bands in table order.
func (b *Bank) Bands(d model.Difficulty) []model.ScoringBand {
	return slices.Clone(b.bands[d])
}

// Lookup finds a question by ID.
func (b *Bank) Lookup(id string) (model.Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Len returns the total number of questions in the catalog.
func (b *Bank) Len() int {
	return len(b.byID)
}
