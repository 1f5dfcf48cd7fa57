package situation

import (
	"math"

	"github.com/haqei/situation-engine/internal/catalog"
)

// #region essence

func deriveEssence(sig Signal) Essence {
	return Essence{
		TemporalState:   temporalState(sig.Temporal),
		DynamicBalance:  dynamicBalance(sig.Dynamics),
		RelationalFocus: relationalFocus(sig.Relationships),
		From: FromState{
			Struggling: sig.Emotions.Negative > sig.Emotions.Positive,
			Aware:      sig.Temporal.Present > 0,
			Connected:  sig.Relationships.ConnectionScore > 0.5,
		},
		To: ToState{
			Aspiration:     sig.Temporal.Future > 0 && sig.Emotions.Positive > 0,
			Transformation: sig.Archetype.Primary == catalog.Transformation,
			Growth:         sig.Dynamics.DrivingInternal > sig.Dynamics.ResistingInternal,
		},
		Obstacles:  obstacles(sig),
		Resources:  resources(sig),
		Complexity: complexity(sig),
		Urgency:    urgency(sig),
	}
}

func temporalState(t Temporal) catalog.Temporal {
	switch {
	case t.IsTransitional:
		return catalog.Transitional
	case t.Future > t.Past && t.Future > t.Present:
		return catalog.FutureOriented
	case t.Past > t.Future && t.Past > t.Present:
		return catalog.PastOriented
	default:
		return catalog.PresentFocused
	}
}

func dynamicBalance(d Dynamics) DynamicBalance {
	driving, resisting := d.Driving(), d.Resisting()
	switch {
	case driving > resisting*2:
		return StrongDrive
	case resisting > driving*2:
		return StrongResistance
	case d.Balance > 0:
		return SeekingBalance
	default:
		return Neutral
	}
}

func relationalFocus(r Relationships) RelationalFocus {
	switch {
	case r.Self == 0 && r.Others == 0 && r.Society == 0:
		return Balanced
	case r.Self >= r.Others && r.Self >= r.Society:
		return SelfFocused
	case r.Others >= r.Society:
		return OthersFocused
	default:
		return SocietyFocused
	}
}

func obstacles(sig Signal) []string {
	out := []string{}
	if sig.Dynamics.ResistingInternal > 0 {
		out = append(out, SourceInternal)
	}
	if sig.Dynamics.ResistingExternal > 0 {
		out = append(out, SourceExternal)
	}
	if sig.Relationships.IsolationScore > 0.5 {
		out = append(out, SourceRelational)
	}
	return out
}

func resources(sig Signal) []string {
	out := []string{}
	if sig.Dynamics.DrivingInternal > 0 {
		out = append(out, SourceInternal)
	}
	if sig.Dynamics.DrivingExternal > 0 {
		out = append(out, SourceExternal)
	}
	if sig.Relationships.ConnectionScore > 0.5 {
		out = append(out, SourceRelational)
	}
	return out
}

func complexity(sig Signal) float64 {
	c := 0.0
	if sig.Temporal.IsTransitional {
		c += 0.3
	}
	if sig.Dynamics.Tension > 0.5 {
		c += 0.3
	}
	if sig.Emotions.Complexity > 0.5 {
		c += 0.2
	}
	r := sig.Relationships
	if r.Self+r.Others+r.Society > 3 {
		c += 0.2
	}
	return c
}

func urgency(sig Signal) float64 {
	u := 0.0
	e := sig.Emotions
	if e.Negative > e.Positive*2 {
		u += 0.4
	}
	if e.Intensity > 2 {
		u += 0.2
	}
	if sig.Temporal.Future > sig.Temporal.Present {
		u += 0.2
	}
	if sig.Dynamics.Tension > 0.7 {
		u += 0.2
	}
	return math.Min(1, u)
}

// #endregion essence
