package ranker

import "github.com/haqei/situation-engine/internal/catalog"

// #region lines

// positionWeights are the base weights of lines 1 through 6.
var positionWeights = [6]float64{0.8, 0.9, 1.0, 0.9, 1.1, 0.8}

const (
	favoredFactor   = 1.3
	unfavoredFactor = 0.8
	urgentBoost     = 1.2
	urgentDamp      = 0.9
)

// archetypeFavors reports whether archetype a favors line position pos,
// and whether a has any preference at all.
func archetypeFavors(a catalog.Archetype, pos int) (favored, applies bool) {
	switch a {
	case catalog.Creation:
		return pos <= 2, true
	case catalog.Transformation:
		return pos == 3 || pos == 4, true
	case catalog.Maturity:
		return pos >= 5, true
	}
	return false, false
}

// selectLine returns the 1-based position with the highest weighted score.
// Ties go to the lower position.
func selectLine(a catalog.Archetype, urgency, urgencyThreshold float64) (pos int, base, score float64) {
	for i, w := range positionWeights {
		p := i + 1
		s := w
		if favored, applies := archetypeFavors(a, p); applies {
			if favored {
				s *= favoredFactor
			} else {
				s *= unfavoredFactor
			}
		}
		if urgency > urgencyThreshold {
			if p == 3 || p == 4 {
				s *= urgentBoost
			} else {
				s *= urgentDamp
			}
		}
		if pos == 0 || s > score {
			pos, base, score = p, w, s
		}
	}
	return pos, base, score
}

// #endregion lines
