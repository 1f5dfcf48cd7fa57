package ranker

import (
	"strings"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/situation"
)

// #region dominant

// dominantDynamic names the template key suffix for a dynamic balance.
func dominantDynamic(b situation.DynamicBalance) string {
	switch b {
	case situation.StrongDrive:
		return "drive"
	case situation.StrongResistance:
		return "struggle"
	case situation.SeekingBalance:
		return "balance"
	default:
		return "neutral"
	}
}

// headwindResistance is the record resistance at which a steadiness
// warning is added.
const headwindResistance = 7

// #endregion dominant

// #region interpret

func fill(tpl string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(tpl)
}

func recordText(locale string, rec catalog.Record) (label, essence string) {
	if locale == LocaleJA {
		return rec.Name, rec.Essence
	}
	return rec.Label, rec.EssenceEN
}

// interpret assembles the reading from template tables. Identical inputs
// always produce identical text.
func interpret(t *Templates, locale string, sig situation.Signal, rec catalog.Record, line LinePosition, urgencyThreshold float64) Interpretation {
	ess := sig.Essence
	label, essence := recordText(locale, rec)

	key := string(sig.Archetype.Primary) + "-" + dominantDynamic(ess.DynamicBalance)
	tpl, ok := t.Situations[key]
	if !ok {
		tpl = t.DefaultSituation
	}

	out := Interpretation{
		SituationText: fill(tpl, "{label}", label, "{essence}", essence),
		Guidance:      []string{fill(t.LineGuidance, "{line}", line.Name, "{meaning}", line.Meaning)},
		Warnings:      []string{},
		Opportunities: []string{},
	}
	if s, ok := t.BalanceAdvice[ess.DynamicBalance]; ok {
		out.Guidance = append(out.Guidance, s)
	}
	if s, ok := t.RelationalAdvice[ess.RelationalFocus]; ok {
		out.Guidance = append(out.Guidance, s)
	}

	for _, o := range ess.Obstacles {
		if s, ok := t.ObstacleWarnings[o]; ok {
			out.Warnings = append(out.Warnings, s)
		}
	}
	if rec.Movement == "struggling" || rec.Dynamics.Resistance >= headwindResistance {
		out.Warnings = append(out.Warnings, t.HeadwindWarning)
	}

	for _, r := range ess.Resources {
		if s, ok := t.ResourceOutlooks[r]; ok {
			out.Opportunities = append(out.Opportunities, s)
		}
	}
	if rec.Quality == "creative" {
		out.Opportunities = append(out.Opportunities, t.CreativeOutlook)
	}

	kind := timingKind(ess.Urgency, urgencyThreshold, rec, line.Index)
	out.Timing = Timing{Kind: kind, Advice: t.Timing[kind]}
	return out
}

func timingKind(urgency, urgencyThreshold float64, rec catalog.Record, line int) TimingKind {
	switch {
	case urgency > urgencyThreshold && line <= 3:
		return TimingImmediate
	case rec.Movement == "waiting":
		return TimingWait
	case line == 5:
		return TimingLead
	default:
		return TimingSteady
	}
}

func linePosition(t *Templates, sig situation.Signal, cfg Config) LinePosition {
	pos, base, score := selectLine(sig.Archetype.Primary, sig.Essence.Urgency, cfg.UrgencyThreshold)
	return LinePosition{
		Index:   pos,
		Name:    t.LineNames[pos-1],
		Meaning: t.LineMeanings[pos-1],
		Weight:  base,
		Score:   score,
	}
}

func fallbackInfo(t *Templates, state DegradationState, level int, catalogFallback bool) FallbackInfo {
	return FallbackInfo{
		IsActive:      state.Active || catalogFallback || level < Levels[0],
		Level:         level,
		QualityLevel:  QualityLevel(level),
		QualityImpact: t.FallbackImpact[level],
	}
}

// #endregion interpret
