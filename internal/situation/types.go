package situation

import "github.com/haqei/situation-engine/internal/catalog"

// #region signal
// Signal is the immutable result of classifying one narrative text.
type Signal struct {
	Temporal      Temporal      `json:"temporal"`
	Dynamics      Dynamics      `json:"dynamics"`
	Relationships Relationships `json:"relationships"`
	Emotions      Emotions      `json:"emotions"`
	Archetype     Archetype     `json:"archetype"`
	Confidence    Confidence    `json:"confidence"`
	Essence       Essence       `json:"essence"`
}

// Temporal holds counts of distinct past/present/future markers.
type Temporal struct {
	Past           int  `json:"past"`
	Present        int  `json:"present"`
	Future         int  `json:"future"`
	IsTransitional bool `json:"isTransitional"`
}

// Dynamics holds counts of driving, resisting and balancing markers.
type Dynamics struct {
	DrivingInternal   int     `json:"drivingInternal"`
	DrivingExternal   int     `json:"drivingExternal"`
	ResistingInternal int     `json:"resistingInternal"`
	ResistingExternal int     `json:"resistingExternal"`
	Balance           int     `json:"balance"`
	Tension           float64 `json:"tension"`
}

// Driving is the total of internal and external driving markers.
func (d Dynamics) Driving() int { return d.DrivingInternal + d.DrivingExternal }

// Resisting is the total of internal and external resisting markers.
func (d Dynamics) Resisting() int { return d.ResistingInternal + d.ResistingExternal }

// Relationships holds relational marker counts and the derived scores.
// At most one of IsolationScore and ConnectionScore is non-zero.
type Relationships struct {
	Self            int     `json:"self"`
	Others          int     `json:"others"`
	Society         int     `json:"society"`
	IsolationScore  float64 `json:"isolationScore"`
	ConnectionScore float64 `json:"connectionScore"`
}

// Emotions holds emotional marker counts.
type Emotions struct {
	Positive   int     `json:"positive"`
	Negative   int     `json:"negative"`
	Intensity  int     `json:"intensity"`
	Complexity float64 `json:"complexity"`
}

// ArchetypeScore is one entry of the archetype distribution.
type ArchetypeScore struct {
	Archetype catalog.Archetype `json:"archetype"`
	Score     float64           `json:"score"`
}

// Archetype is the classification outcome. Distribution always holds the
// four archetypes in declaration order with their raw scores.
type Archetype struct {
	Primary      catalog.Archetype `json:"primary"`
	Score        float64           `json:"score"`
	Distribution []ArchetypeScore  `json:"distribution"`
}

// Factor is one component of the confidence breakdown.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Score        float64 `json:"score"`
	Contribution float64 `json:"contribution"`
	Rationale    string  `json:"rationale"`
}

// Confidence is the clamped confidence value with its breakdown and a
// plain-language explanation.
type Confidence struct {
	Value       float64  `json:"value"`
	Breakdown   []Factor `json:"breakdown"`
	Explanation string   `json:"explanation"`
}

// #endregion signal

// #region essence
// DynamicBalance classifies the balance of driving and resisting forces.
type DynamicBalance string

const (
	StrongDrive      DynamicBalance = "strong-drive"
	StrongResistance DynamicBalance = "strong-resistance"
	SeekingBalance   DynamicBalance = "seeking-balance"
	Neutral          DynamicBalance = "neutral"
)

// RelationalFocus names the dominant relational sphere.
type RelationalFocus string

const (
	SelfFocused    RelationalFocus = "self-focused"
	OthersFocused  RelationalFocus = "others-focused"
	SocietyFocused RelationalFocus = "society-focused"
	Balanced       RelationalFocus = "balanced"
)

// Obstacle and resource sources.
const (
	SourceInternal   = "internal"
	SourceExternal   = "external"
	SourceRelational = "relational"
)

// FromState describes where the person stands now.
type FromState struct {
	Struggling bool `json:"struggling"`
	Aware      bool `json:"aware"`
	Connected  bool `json:"connected"`
}

// ToState describes where the person is heading.
type ToState struct {
	Aspiration     bool `json:"aspiration"`
	Transformation bool `json:"transformation"`
	Growth         bool `json:"growth"`
}

// Essence is the condensed view of a signal the ranker scores against.
type Essence struct {
	TemporalState   catalog.Temporal `json:"temporalState"`
	DynamicBalance  DynamicBalance   `json:"dynamicBalance"`
	RelationalFocus RelationalFocus  `json:"relationalFocus"`
	From            FromState        `json:"from"`
	To              ToState          `json:"to"`
	Obstacles       []string         `json:"obstacles"`
	Resources       []string         `json:"resources"`
	Complexity      float64          `json:"complexity"`
	Urgency         float64          `json:"urgency"`
}

// #endregion essence
