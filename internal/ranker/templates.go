package ranker

import (
	"github.com/haqei/situation-engine/internal/situation"
)

// #region locales

// Supported locales.
const (
	LocaleEN = "en"
	LocaleJA = "ja"
)

// Templates is one locale's text table. Situation templates are keyed by
// "<archetype>-<dominant dynamic>" and may use {label} and {essence}.
type Templates struct {
	Situations       map[string]string
	DefaultSituation string

	LineNames    [6]string
	LineMeanings [6]string
	LineGuidance string // may use {line} and {meaning}

	BalanceAdvice    map[situation.DynamicBalance]string
	RelationalAdvice map[situation.RelationalFocus]string

	ObstacleWarnings map[string]string
	HeadwindWarning  string
	ResourceOutlooks map[string]string
	CreativeOutlook  string

	Timing map[TimingKind]string

	FallbackImpact map[int]string
}

// templateSets holds every built-in locale.
var templateSets = map[string]*Templates{
	LocaleEN: englishTemplates,
	LocaleJA: japaneseTemplates,
}

// TemplatesFor returns the table for locale, falling back to English.
func TemplatesFor(locale string) (*Templates, string) {
	if t, ok := templateSets[locale]; ok {
		return t, locale
	}
	return englishTemplates, LocaleEN
}

// #endregion locales

// #region english
var englishTemplates = &Templates{
	Situations: map[string]string{
		"creation-drive":          "You are at a fresh beginning with real momentum behind you. {label} speaks of {essence}: channel that energy into the first concrete steps.",
		"creation-struggle":       "You are facing difficulties at the very start of something new. {label} speaks of {essence}, the strength this moment asks for.",
		"creation-balance":        "You are weighing a new beginning against what holds you back. {label} speaks of {essence}, a steady way to set out.",
		"creation-neutral":        "Something new is taking shape. {label} speaks of {essence} as the seed of what comes next.",
		"development-drive":       "Your efforts are gaining ground. {label} speaks of {essence}: keep building while the current is with you.",
		"development-struggle":    "Progress feels heavy right now. {label} speaks of {essence}, a reminder that steady work carries you through.",
		"development-balance":     "You are looking for balance as things grow. {label} speaks of {essence}, the attitude that matters most now.",
		"development-neutral":     "You are in the middle of a longer journey. {label} speaks of {essence} as the theme of this stretch.",
		"transformation-drive":    "You are in a period of deep change and ready to move. {label} speaks of {essence}: use it to go forward.",
		"transformation-struggle": "Deep change is underway and it is meeting resistance. {label} speaks of {essence}, the quality that helps you through the turning point.",
		"transformation-balance":  "You stand between an old way and a new one. {label} speaks of {essence}, a way to hold both while the change settles.",
		"transformation-neutral":  "A significant change is in the air. {label} speaks of {essence} as the shape it may take.",
		"maturity-drive":          "One chapter is complete and you are eager for the next. {label} speaks of {essence}: carry what you learned into it.",
		"maturity-struggle":       "Letting go of a finished chapter is not easy. {label} speaks of {essence}, a gentle way to close it well.",
		"maturity-balance":        "You are taking stock of what has been achieved. {label} speaks of {essence}, a balanced view of what to keep and what to release.",
		"maturity-neutral":        "You are reaching a point of completion. {label} speaks of {essence}: look back on it, then look ahead.",
	},
	DefaultSituation: "Your situation carries the qualities of {label}: {essence}.",

	LineNames: [6]string{"Initial line", "Second line", "Third line", "Fourth line", "Fifth line", "Top line"},
	LineMeanings: [6]string{
		"the very beginning, where things are still latent",
		"inner response and careful action",
		"a turning point that holds both risk and opportunity",
		"outward response and engagement with others",
		"the central position of leadership",
		"the peak of the situation, where change is needed",
	},
	LineGuidance: "Your reading falls on the {line}, so keep in mind {meaning}.",

	BalanceAdvice: map[situation.DynamicBalance]string{
		situation.StrongDrive:      "Your drive is strong; use the momentum without losing your care.",
		situation.StrongResistance: "Resistance is strong at the moment; treat it as a test that helps you grow.",
	},
	RelationalAdvice: map[situation.RelationalFocus]string{
		situation.SelfFocused:   "Keep listening to yourself, and stay open to connection with others.",
		situation.OthersFocused: "While you put relationships first, keep hold of your own center.",
	},

	ObstacleWarnings: map[string]string{
		situation.SourceInternal:   "Watch for inner resistance and self-doubt.",
		situation.SourceExternal:   "Prepare for outside pressure and constraints.",
		situation.SourceRelational: "Carrying everything alone can wear you down; let someone in.",
	},
	HeadwindWarning: "This is a demanding period; move forward calmly and steadily rather than in a rush.",
	ResourceOutlooks: map[string]string{
		situation.SourceInternal:   "Your own motivation and passion are a real asset right now.",
		situation.SourceExternal:   "Circumstances around you are opening doors.",
		situation.SourceRelational: "Working together with the people around you is key to success.",
	},
	CreativeOutlook: "Creative ideas take shape easily in this period.",

	Timing: map[TimingKind]string{
		TimingImmediate: "Prompt action is called for.",
		TimingWait:      "Now is a time to prepare and observe.",
		TimingLead:      "This is a good moment to take the lead.",
		TimingSteady:    "Move forward one steady step at a time.",
	},

	FallbackImpact: map[int]string{
		64: "All 64 reference patterns are available.",
		32: "Readings currently draw on a curated set of 32 reference patterns. Every kind of situation is still covered; results may simply show a little less variety.",
		16: "Readings currently draw on a curated set of 16 reference patterns. Every kind of situation is still covered, with fewer fine shades between similar readings.",
		8:  "Readings currently draw on 8 core reference patterns. Every kind of situation is still covered; readings stay dependable but broader in detail until the full set returns.",
	},
}

// #endregion english

// #region japanese
var japaneseTemplates = &Templates{
	Situations: map[string]string{
		"creation-struggle":    "新たな始まりの中で困難に直面しています。{essence}の力が必要な時期です。",
		"development-balance":  "発展の過程でバランスを模索しています。{essence}という姿勢が重要です。",
		"transformation-drive": "大きな変革期にあります。{essence}を活かして前進する時です。",
		"maturity-neutral":     "一つの完成を迎えつつあります。{essence}という視点で次を見据えましょう。",
	},
	DefaultSituation: "現在の状況は{label}、{essence}の性質を持っています。",

	LineNames:    [6]string{"初爻", "二爻", "三爻", "四爻", "五爻", "上爻"},
	LineMeanings: [6]string{"事の始まり、潜在的な状態", "内的な対応、慎重な行動", "転換点、危険と機会", "外的な対応、社会との関わり", "中心的位置、リーダーシップ", "極まった状態、転換の必要"},
	LineGuidance: "{line}の位置にあるため、{meaning}を意識することが大切です。",

	BalanceAdvice: map[situation.DynamicBalance]string{
		situation.StrongDrive:      "推進力が強い今、勢いを活かしつつも慎重さを忘れずに。",
		situation.StrongResistance: "抵抗が強い時期ですが、これは成長のための試練と捉えましょう。",
	},
	RelationalAdvice: map[situation.RelationalFocus]string{
		situation.SelfFocused:   "自己との対話を大切にしながら、他者とのつながりも意識してください。",
		situation.OthersFocused: "他者との関係を重視する中で、自分の軸も見失わないように。",
	},

	ObstacleWarnings: map[string]string{
		situation.SourceInternal:   "内なる抵抗や自己否定に注意が必要です。",
		situation.SourceExternal:   "外部からの圧力や制約に対する準備をしておきましょう。",
		situation.SourceRelational: "一人で抱え込みすぎないよう、周囲に頼ることも大切です。",
	},
	HeadwindWarning: "困難な時期ですが、焦らず着実に進むことが重要です。",
	ResourceOutlooks: map[string]string{
		situation.SourceInternal:   "内なる動機と情熱を活かす絶好の機会です。",
		situation.SourceExternal:   "周りの状況が追い風になっています。",
		situation.SourceRelational: "周囲との協力関係が成功の鍵となります。",
	},
	CreativeOutlook: "創造的なアイデアが形になりやすい時期です。",

	Timing: map[TimingKind]string{
		TimingImmediate: "早急な行動が求められています。",
		TimingWait:      "今は準備と観察の時期です。",
		TimingLead:      "リーダーシップを発揮する好機です。",
		TimingSteady:    "着実に一歩ずつ進む時期です。",
	},

	FallbackImpact: map[int]string{
		64: "64の参照パターンすべてを利用しています。",
		32: "現在は厳選した32の参照パターンで読み解いています。あらゆる状況に対応しており、結果の幅が少し狭まる程度です。",
		16: "現在は厳選した16の参照パターンで読み解いています。あらゆる状況に対応しており、似た結果の間の細かな違いが少なくなります。",
		8:  "現在は基本となる8つの参照パターンで読み解いています。あらゆる状況に対応しており、全体が戻るまでは大まかながら信頼できる結果をお届けします。",
	},
}

// #endregion japanese
