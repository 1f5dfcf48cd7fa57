package situation

import (
	"math"

	"github.com/haqei/situation-engine/internal/catalog"
)

// #region weights

// Archetype marker weights. Emotional markers weigh most; temporal markers
// weigh least so that transitional phrasing alone cannot tip a text into
// transformation.
const (
	temporalWeight   = 1.2
	emotionalWeight  = 1.8
	contextualWeight = 1.5
)

// Confidence factor weights.
const (
	temporalClarityWeight  = 0.2
	dynamicsPresenceWeight = 0.3
	emotionPresenceWeight  = 0.2
)

// #endregion weights

// #region classifier

// Classifier turns narrative text into a Signal. It holds no mutable state.
type Classifier struct {
	lex *Lexicon
}

// NewClassifier creates a classifier over lex. A nil lexicon selects the
// built-in one.
func NewClassifier(lex *Lexicon) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Classifier{lex: lex}
}

// Classify analyzes text. It never fails: empty or degenerate text yields a
// zero signal with low confidence and the first archetype as primary.
func (c *Classifier) Classify(text string) Signal {
	t := Normalize(text)
	lex := c.lex

	var sig Signal
	sig.Temporal = analyzeTemporal(lex, t)
	sig.Dynamics = analyzeDynamics(lex, t)
	sig.Relationships = analyzeRelationships(lex, t)
	sig.Emotions = analyzeEmotions(lex, t)
	sig.Archetype = scoreArchetypes(lex, t)
	sig.Confidence = computeConfidence(sig)
	sig.Essence = deriveEssence(sig)
	return sig
}

// #endregion classifier

// #region analysis

func analyzeTemporal(lex *Lexicon, t string) Temporal {
	out := Temporal{
		Past:    lex.past.count(t),
		Present: lex.present.count(t),
		Future:  lex.future.count(t),
	}
	out.IsTransitional = out.Past > 0 && out.Future > 0
	return out
}

func analyzeDynamics(lex *Lexicon, t string) Dynamics {
	d := Dynamics{
		DrivingInternal:   lex.drivingInternal.count(t),
		DrivingExternal:   lex.drivingExternal.count(t),
		ResistingInternal: lex.resistingInternal.count(t),
		ResistingExternal: lex.resistingExternal.count(t),
		Balance:           lex.balancing.count(t),
	}
	driving, resisting := d.Driving(), d.Resisting()
	if total := driving + resisting; total > 0 {
		d.Tension = math.Abs(float64(driving-resisting)) / float64(total)
	}
	return d
}

func analyzeRelationships(lex *Lexicon, t string) Relationships {
	r := Relationships{
		Self:    lex.self.count(t),
		Others:  lex.others.count(t),
		Society: lex.society.count(t),
	}
	outward := r.Others + r.Society
	if r.Self > outward*2 {
		r.IsolationScore = float64(r.Self-outward) / float64(r.Self)
	} else {
		r.ConnectionScore = float64(outward) / float64(r.Self+outward+1)
	}
	return r
}

func analyzeEmotions(lex *Lexicon, t string) Emotions {
	e := Emotions{
		Positive:  lex.positive.count(t),
		Negative:  lex.negative.count(t),
		Intensity: lex.intensifiers.count(t),
	}
	if e.Positive > 0 && e.Negative > 0 {
		lo, hi := e.Positive, e.Negative
		if lo > hi {
			lo, hi = hi, lo
		}
		e.Complexity = float64(lo) / float64(hi)
	}
	return e
}

func scoreArchetypes(lex *Lexicon, t string) Archetype {
	out := Archetype{Distribution: make([]ArchetypeScore, 0, len(catalog.Archetypes))}
	for i, a := range catalog.Archetypes {
		sets := lex.archetypes[a]
		score := 0.0
		score += float64(sets.temporal.count(t)) * temporalWeight
		score += float64(sets.emotional.count(t)) * emotionalWeight
		score += float64(sets.contextual.count(t)) * contextualWeight
		out.Distribution = append(out.Distribution, ArchetypeScore{Archetype: a, Score: score})
		if i == 0 || score > out.Score {
			out.Primary = a
			out.Score = score
		}
	}
	return out
}

// #endregion analysis

// #region confidence

func archetypeCertaintyWeight(score float64) float64 {
	switch {
	case score > 5:
		return 0.3
	case score > 2:
		return 0.2
	default:
		return 0.1
	}
}

func computeConfidence(sig Signal) Confidence {
	tm := sig.Temporal
	peak := max(tm.Past, tm.Present, tm.Future)
	clarity := float64(peak) / float64(tm.Past+tm.Present+tm.Future+1)

	dynamicsFound := sig.Dynamics.Driving() > 0 || sig.Dynamics.Resisting() > 0
	emotionFound := sig.Emotions.Positive > 0 || sig.Emotions.Negative > 0
	certainty := archetypeCertaintyWeight(sig.Archetype.Score)

	factors := []Factor{
		{
			Name:      "temporal",
			Weight:    temporalClarityWeight,
			Score:     clarity,
			Rationale: temporalRationale(tm),
		},
		{
			Name:      "dynamics",
			Weight:    dynamicsPresenceWeight,
			Score:     boolScore(dynamicsFound),
			Rationale: dynamicsRationale(dynamicsFound),
		},
		{
			Name:      "archetype",
			Weight:    certainty,
			Score:     1,
			Rationale: archetypeRationale(sig.Archetype),
		},
		{
			Name:      "emotional",
			Weight:    emotionPresenceWeight,
			Score:     boolScore(emotionFound),
			Rationale: emotionRationale(emotionFound),
		},
	}

	value := 0.0
	for i := range factors {
		factors[i].Contribution = factors[i].Score * factors[i].Weight
		value += factors[i].Contribution
	}
	value = math.Min(1, math.Max(0, value))

	return Confidence{
		Value:       value,
		Breakdown:   factors,
		Explanation: explain(value, tm, dynamicsFound, emotionFound),
	}
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion confidence
