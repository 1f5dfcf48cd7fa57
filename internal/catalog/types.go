package catalog

// #region archetype
// Archetype is one of the four coarse situational phases shared by signals
// and catalog records.
type Archetype string

const (
	Creation       Archetype = "creation"
	Development    Archetype = "development"
	Transformation Archetype = "transformation"
	Maturity       Archetype = "maturity"
)

// Archetypes lists every archetype in declaration order. Ties are broken by
// this order everywhere.
var Archetypes = []Archetype{Creation, Development, Transformation, Maturity}

// Valid reports whether a is one of the four known archetypes.
func (a Archetype) Valid() bool {
	switch a {
	case Creation, Development, Transformation, Maturity:
		return true
	}
	return false
}

// #endregion archetype

// #region temporal
// Temporal is the temporal orientation tag carried by records and signals.
type Temporal string

const (
	PastOriented   Temporal = "past-oriented"
	PresentFocused Temporal = "present-focused"
	FutureOriented Temporal = "future-oriented"
	Transitional   Temporal = "transitional"
)

// #endregion temporal

// #region record
// Dynamics is a record's 3-axis force vector on a 0-10 scale.
type Dynamics struct {
	Drive      float64 `yaml:"drive" json:"drive"`
	Resistance float64 `yaml:"resistance" json:"resistance"`
	Balance    float64 `yaml:"balance" json:"balance"`
}

// Record is one immutable hexagram entry of the reference catalog.
type Record struct {
	ID        int       `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Label     string    `yaml:"label" json:"label"`
	Essence   string    `yaml:"essence" json:"essence"`
	EssenceEN string    `yaml:"essence_en" json:"essenceEn"`
	Archetype Archetype `yaml:"archetype" json:"archetype"`
	Temporal  Temporal  `yaml:"temporal" json:"temporal"`
	Dynamics  Dynamics  `yaml:"dynamics" json:"dynamics"`
	Yang      int       `yaml:"yang" json:"yang"`
	Yin       int       `yaml:"yin" json:"yin"`
	Movement  string    `yaml:"movement" json:"movement"`
	Element   string    `yaml:"element" json:"element"`
	Quality   string    `yaml:"quality" json:"quality"`
}

// #endregion record

// #region file
// file is the on-disk YAML layout of a catalog.
type file struct {
	Records []Record `yaml:"records"`
}

// #endregion file
