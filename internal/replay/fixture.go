package replay

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/haqei/situation-engine/internal/catalog"
)

//go:embed calibration.json
var embeddedFixture []byte

// #region fixture-types

// Fixture is the top-level JSON structure for a calibration fixture.
type Fixture struct {
	Description string `json:"description"`
	Matrix      Matrix `json:"matrix"`
	Labeled     []Case `json:"labeled"`
}

// Matrix generates unlabeled distribution cases: each archetype phrase is
// crossed with every combination of framings, one framing per axis. An
// empty framing leaves the axis out.
type Matrix struct {
	Phrases  map[catalog.Archetype][]string `json:"phrases"`
	Framings [][]string                     `json:"framings"`
}

// Case is one calibration input. Expected is set for labeled cases only;
// Target records the archetype a matrix phrase was written for.
type Case struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Expected catalog.Archetype `json:"expected,omitempty"`
	Target   catalog.Archetype `json:"target,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes and validates fixture JSON.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for a := range f.Matrix.Phrases {
		if !a.Valid() {
			return nil, fmt.Errorf("matrix: unknown archetype %q", a)
		}
	}
	for _, c := range f.Labeled {
		if !c.Expected.Valid() {
			return nil, fmt.Errorf("case %s: unknown expected archetype %q", c.ID, c.Expected)
		}
	}
	return &f, nil
}

// DefaultFixture returns the bundled calibration corpus.
func DefaultFixture() *Fixture {
	f, err := ParseFixture(embeddedFixture)
	if err != nil {
		panic(fmt.Sprintf("embedded fixture: %v", err))
	}
	return f
}

// #endregion fixture-loader

// #region expand

// Expand lists the matrix cases in archetype declaration order, phrase by
// phrase, with the last framing axis varying fastest.
func (m Matrix) Expand() []Case {
	var out []Case
	for _, a := range catalog.Archetypes {
		for _, phrase := range m.Phrases[a] {
			combos := [][]string{{phrase + "."}}
			for _, axis := range m.Framings {
				next := make([][]string, 0, len(combos)*len(axis))
				for _, c := range combos {
					for _, framing := range axis {
						row := append(append([]string(nil), c...), framing)
						next = append(next, row)
					}
				}
				combos = next
			}
			for _, c := range combos {
				out = append(out, Case{
					ID:     fmt.Sprintf("matrix-%03d", len(out)+1),
					Text:   joinNonEmpty(c),
					Target: a,
				})
			}
		}
	}
	return out
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// #endregion expand
