package situation

import (
	"fmt"
	"strings"
)

// #region rationale

func temporalRationale(t Temporal) string {
	switch {
	case t.Past+t.Present+t.Future == 0:
		return "No time references were found."
	case t.IsTransitional:
		return "The text moves between past and future."
	case t.Future >= t.Present && t.Future >= t.Past:
		return "Time references point mostly to the future."
	case t.Past >= t.Present:
		return "Time references point mostly to the past."
	default:
		return "Time references point mostly to the present."
	}
}

func dynamicsRationale(found bool) string {
	if found {
		return "Forces that push forward or hold back were described."
	}
	return "No pushing or holding-back forces were described."
}

func archetypeRationale(a Archetype) string {
	switch {
	case a.Score > 5:
		return fmt.Sprintf("Strong, consistent signs of a %s phase.", a.Primary)
	case a.Score > 2:
		return fmt.Sprintf("Some signs of a %s phase.", a.Primary)
	case a.Score > 0:
		return fmt.Sprintf("Faint signs of a %s phase.", a.Primary)
	default:
		return "No clear phase markers were found."
	}
}

func emotionRationale(found bool) string {
	if found {
		return "Feelings about the situation were expressed."
	}
	return "No feelings about the situation were expressed."
}

// #endregion rationale

// #region explanation

const maxExplanationLen = 300

// explain writes the plain-language confidence summary shown to users.
func explain(value float64, t Temporal, dynamicsFound, emotionFound bool) string {
	var lead string
	switch {
	case value > 0.8:
		lead = "Your description paints a clear picture, so this reading should fit your situation closely."
	case value > 0.6:
		lead = "Your description gives a fairly clear picture of your situation."
	default:
		lead = "This reading is a first impression based on a short description."
	}

	var hints []string
	if !emotionFound {
		hints = append(hints, "Sharing how you feel about it")
	}
	if !dynamicsFound {
		hints = append(hints, "mentioning what draws you forward or holds you back")
	}
	if t.Past+t.Present+t.Future == 0 && len(hints) < 2 {
		hints = append(hints, "saying whether this is about now or what lies ahead")
	}
	if len(hints) == 0 || value > 0.8 {
		return lead
	}

	hint := strings.Join(hints, " and ")
	hint = strings.ToUpper(hint[:1]) + hint[1:]
	out := lead + " " + hint + " would make it more precise."
	if len(out) > maxExplanationLen {
		return lead
	}
	return out
}

// #endregion explanation
