package situation

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/haqei/situation-engine/internal/catalog"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// #region normalize

// Normalize folds text to NFKC, lower-cases it and collapses punctuation,
// symbols and whitespace into single spaces.
func Normalize(text string) string {
	folded := strings.ToLower(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimRight(b.String(), " ")
}

// #endregion normalize

// #region markers

// marker is a normalized lexicon entry. ASCII markers only match whole words.
type marker struct {
	text  string
	words bool
}

type markerSet []marker

func compileMarkers(raw []string) markerSet {
	out := make(markerSet, 0, len(raw))
	for _, m := range raw {
		n := Normalize(m)
		if n == "" {
			continue
		}
		out = append(out, marker{text: n, words: isASCII(n)})
	}
	return out
}

// count returns how many distinct markers occur in normalized text.
func (s markerSet) count(text string) int {
	padded := " " + text + " "
	n := 0
	for _, m := range s {
		if m.words {
			if strings.Contains(padded, " "+m.text+" ") {
				n++
			}
			continue
		}
		if strings.Contains(text, m.text) {
			n++
		}
	}
	return n
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// #endregion markers

// #region lexicon

type archetypeMarkers struct {
	Temporal   []string `yaml:"temporal"`
	Emotional  []string `yaml:"emotional"`
	Contextual []string `yaml:"contextual"`
}

type lexiconFile struct {
	Archetypes map[catalog.Archetype]archetypeMarkers `yaml:"archetypes"`
	Forces     struct {
		DrivingInternal   []string `yaml:"driving_internal"`
		DrivingExternal   []string `yaml:"driving_external"`
		ResistingInternal []string `yaml:"resisting_internal"`
		ResistingExternal []string `yaml:"resisting_external"`
		Balancing         []string `yaml:"balancing"`
	} `yaml:"forces"`
	Relations struct {
		Self    []string `yaml:"self"`
		Others  []string `yaml:"others"`
		Society []string `yaml:"society"`
	} `yaml:"relations"`
	Tenses struct {
		Past    []string `yaml:"past"`
		Present []string `yaml:"present"`
		Future  []string `yaml:"future"`
	} `yaml:"tenses"`
	Emotions struct {
		Positive     []string `yaml:"positive"`
		Negative     []string `yaml:"negative"`
		Intensifiers []string `yaml:"intensifiers"`
	} `yaml:"emotions"`
}

type archetypeSets struct {
	temporal, emotional, contextual markerSet
}

// Lexicon is a compiled marker vocabulary. It is read-only after parsing
// and safe for concurrent use.
type Lexicon struct {
	archetypes map[catalog.Archetype]archetypeSets

	drivingInternal, drivingExternal     markerSet
	resistingInternal, resistingExternal markerSet
	balancing                            markerSet

	self, others, society markerSet
	past, present, future markerSet

	positive, negative, intensifiers markerSet
}

// ParseLexicon compiles a YAML lexicon document. Every archetype needs at
// least one marker.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	lex := &Lexicon{archetypes: make(map[catalog.Archetype]archetypeSets, len(catalog.Archetypes))}
	for _, a := range catalog.Archetypes {
		m, ok := f.Archetypes[a]
		if !ok || len(m.Temporal)+len(m.Emotional)+len(m.Contextual) == 0 {
			return nil, fmt.Errorf("parse lexicon: no markers for archetype %s", a)
		}
		lex.archetypes[a] = archetypeSets{
			temporal:   compileMarkers(m.Temporal),
			emotional:  compileMarkers(m.Emotional),
			contextual: compileMarkers(m.Contextual),
		}
	}
	for a := range f.Archetypes {
		if !a.Valid() {
			return nil, fmt.Errorf("parse lexicon: unknown archetype %q", a)
		}
	}

	lex.drivingInternal = compileMarkers(f.Forces.DrivingInternal)
	lex.drivingExternal = compileMarkers(f.Forces.DrivingExternal)
	lex.resistingInternal = compileMarkers(f.Forces.ResistingInternal)
	lex.resistingExternal = compileMarkers(f.Forces.ResistingExternal)
	lex.balancing = compileMarkers(f.Forces.Balancing)
	lex.self = compileMarkers(f.Relations.Self)
	lex.others = compileMarkers(f.Relations.Others)
	lex.society = compileMarkers(f.Relations.Society)
	lex.past = compileMarkers(f.Tenses.Past)
	lex.present = compileMarkers(f.Tenses.Present)
	lex.future = compileMarkers(f.Tenses.Future)
	lex.positive = compileMarkers(f.Emotions.Positive)
	lex.negative = compileMarkers(f.Emotions.Negative)
	lex.intensifiers = compileMarkers(f.Emotions.Intensifiers)
	return lex, nil
}

var builtinLexicon = mustParseLexicon(defaultLexiconYAML)

func mustParseLexicon(data []byte) *Lexicon {
	lex, err := ParseLexicon(data)
	if err != nil {
		panic(err)
	}
	return lex
}

// DefaultLexicon returns the built-in bilingual (ja/en) lexicon.
func DefaultLexicon() *Lexicon { return builtinLexicon }

// archetypeMarkerTexts lists the normalized markers of one archetype.
func (l *Lexicon) archetypeMarkerTexts(a catalog.Archetype) []marker {
	s := l.archetypes[a]
	out := make([]marker, 0, len(s.temporal)+len(s.emotional)+len(s.contextual))
	out = append(out, s.temporal...)
	out = append(out, s.emotional...)
	return append(out, s.contextual...)
}

// #endregion lexicon
