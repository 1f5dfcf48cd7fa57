package catalog

import "fmt"

// #region fallback

// FallbackIDs are the records kept when reference data is unavailable. They
// cover all four archetypes.
var FallbackIDs = [...]int{1, 2, 3, 4, 5, 49, 63, 64}

// defaultRecordID identifies the record synthesized when nothing else scores.
const defaultRecordID = 4

// fallbackRecords is compiled in so the fallback never depends on parsing.
var fallbackRecords = []Record{
	{
		ID: 1, Name: "乾為天", Label: "The Creative",
		Essence: "純粋な創造力、強いリーダーシップ", EssenceEN: "pure creative force and strong leadership",
		Archetype: Creation, Temporal: FutureOriented,
		Dynamics: Dynamics{Drive: 10, Resistance: 0, Balance: 2},
		Yang: 6, Yin: 0, Movement: "ascending", Element: "heaven", Quality: "creative",
	},
	{
		ID: 2, Name: "坤為地", Label: "The Receptive",
		Essence: "受容性、育む力、基盤", EssenceEN: "receptivity, nurturing strength and a firm foundation",
		Archetype: Creation, Temporal: PresentFocused,
		Dynamics: Dynamics{Drive: 2, Resistance: 0, Balance: 8},
		Yang: 0, Yin: 6, Movement: "grounding", Element: "earth", Quality: "receptive",
	},
	{
		ID: 3, Name: "水雷屯", Label: "Difficulty at the Beginning",
		Essence: "困難な始まり、生みの苦しみ", EssenceEN: "a difficult beginning and the pains of birth",
		Archetype: Creation, Temporal: Transitional,
		Dynamics: Dynamics{Drive: 6, Resistance: 7, Balance: 3},
		Yang: 2, Yin: 4, Movement: "struggling", Element: "water-thunder", Quality: "difficult-birth",
	},
	{
		ID: 4, Name: "山水蒙", Label: "Youthful Folly",
		Essence: "無知からの学び、啓蒙の必要性", EssenceEN: "learning out of inexperience and the need for guidance",
		Archetype: Creation, Temporal: FutureOriented,
		Dynamics: Dynamics{Drive: 3, Resistance: 2, Balance: 5},
		Yang: 2, Yin: 4, Movement: "learning", Element: "mountain-water", Quality: "inexperience",
	},
	{
		ID: 5, Name: "水天需", Label: "Waiting",
		Essence: "待つことの知恵、適切なタイミング", EssenceEN: "the wisdom of waiting for the right moment",
		Archetype: Development, Temporal: PresentFocused,
		Dynamics: Dynamics{Drive: 4, Resistance: 2, Balance: 7},
		Yang: 4, Yin: 2, Movement: "waiting", Element: "water-heaven", Quality: "patience",
	},
	{
		ID: 49, Name: "沢火革", Label: "Revolution",
		Essence: "変革、革命、刷新", EssenceEN: "change, revolution and renewal",
		Archetype: Transformation, Temporal: Transitional,
		Dynamics: Dynamics{Drive: 8, Resistance: 5, Balance: 4},
		Yang: 3, Yin: 3, Movement: "revolution", Element: "lake-fire", Quality: "revolution",
	},
	{
		ID: 63, Name: "水火既済", Label: "After Completion",
		Essence: "完成、しかし警戒が必要", EssenceEN: "completion, yet vigilance is needed",
		Archetype: Maturity, Temporal: PresentFocused,
		Dynamics: Dynamics{Drive: 5, Resistance: 3, Balance: 8},
		Yang: 3, Yin: 3, Movement: "completed", Element: "water-fire", Quality: "after-completion",
	},
	{
		ID: 64, Name: "火水未済", Label: "Before Completion",
		Essence: "未完成、新たな始まりへ", EssenceEN: "not yet complete, toward a new beginning",
		Archetype: Maturity, Temporal: FutureOriented,
		Dynamics: Dynamics{Drive: 7, Resistance: 4, Balance: 5},
		Yang: 3, Yin: 3, Movement: "not-yet", Element: "fire-water", Quality: "before-completion",
	},
}

// Fallback returns the reduced catalog used when loading fails.
func Fallback() *Catalog {
	c, err := New(fallbackRecords, true)
	if err != nil {
		panic(fmt.Sprintf("fallback catalog: %v", err))
	}
	return c
}

// DefaultRecord is the minimal record synthesized when no candidate scores.
func DefaultRecord() Record {
	for _, r := range fallbackRecords {
		if r.ID == defaultRecordID {
			return r
		}
	}
	return fallbackRecords[0]
}

// #endregion fallback
