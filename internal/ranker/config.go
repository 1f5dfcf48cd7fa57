package ranker

import (
	"errors"
	"fmt"
)

// #region weights

// Scoring term weights on the 100-point scale.
const (
	archetypeMatchPoints = 20
	temporalMatchPoints  = 10
	dynamicsPoints       = 30
	transformationPoints = 20
	adjustmentPoints     = 10
)

// #endregion weights

// #region config

// RarityTier grants Bonus to records used at most MaxCount times.
type RarityTier struct {
	MaxCount int     `yaml:"max_count" json:"maxCount"`
	Bonus    float64 `yaml:"bonus" json:"bonus"`
}

// Config holds the tunable ranking parameters.
type Config struct {
	RarityTiers []RarityTier `yaml:"rarity_tiers"`

	ComplexityThreshold float64 `yaml:"complexity_threshold"`
	BalancedSpread      int     `yaml:"balanced_spread"` // |yang-yin| below this counts as balanced
	BalancedBoost       float64 `yaml:"balanced_boost"`
	UnbalancedFactor    float64 `yaml:"unbalanced_factor"`

	UrgencyThreshold  float64  `yaml:"urgency_threshold"`
	HighMovementBoost float64  `yaml:"high_movement_boost"`
	LowMovementFactor float64  `yaml:"low_movement_factor"`
	HighMovement      []string `yaml:"high_movement"`

	Locale string `yaml:"locale"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		RarityTiers: []RarityTier{
			{MaxCount: 0, Bonus: 30},
			{MaxCount: 2, Bonus: 20},
			{MaxCount: 5, Bonus: 12},
			{MaxCount: 10, Bonus: 4},
		},
		ComplexityThreshold: 0.7,
		BalancedSpread:      2,
		BalancedBoost:       1.2,
		UnbalancedFactor:    0.8,
		UrgencyThreshold:    0.7,
		HighMovementBoost:   1.1,
		LowMovementFactor:   0.9,
		HighMovement: []string{
			"ascending", "revolution", "shocking", "breakthrough",
			"progressing", "increasing", "great-power", "enthusiasm",
		},
		Locale: LocaleEN,
	}
}

// Validate checks that rarity tiers have strictly increasing limits and
// strictly decreasing positive bonuses, and that the locale is known.
func (c Config) Validate() error {
	if len(c.RarityTiers) == 0 {
		return errors.New("validate ranker config: no rarity tiers")
	}
	for i, t := range c.RarityTiers {
		if t.Bonus <= 0 {
			return fmt.Errorf("validate ranker config: tier %d bonus must be positive", i)
		}
		if i == 0 {
			if t.MaxCount < 0 {
				return fmt.Errorf("validate ranker config: tier 0 max count negative")
			}
			continue
		}
		prev := c.RarityTiers[i-1]
		if t.MaxCount <= prev.MaxCount || t.Bonus >= prev.Bonus {
			return fmt.Errorf("validate ranker config: tier %d not monotonic", i)
		}
	}
	if _, ok := templateSets[c.Locale]; !ok {
		return fmt.Errorf("validate ranker config: unknown locale %q", c.Locale)
	}
	return nil
}

// RarityBonus returns the bonus for a record used count times.
func (c Config) RarityBonus(count int) float64 {
	for _, t := range c.RarityTiers {
		if count <= t.MaxCount {
			return t.Bonus
		}
	}
	return 0
}

func (c Config) isHighMovement(movement string) bool {
	for _, m := range c.HighMovement {
		if m == movement {
			return true
		}
	}
	return false
}

// #endregion config
