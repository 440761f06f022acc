package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/guarzo/variantctl/internal/model"
)

// rarityClass buckets the card's (already-standardized) rarity string
// into the coarse categories every era rule keys on. Classification is
// table/substring driven rather than an exhaustive enum because new
// rarity strings appear with every generation.
type rarityClass int

const (
	rarityOther rarityClass = iota
	rarityCommon
	rarityUncommon
	rarityBasicRare // single-star "Rare"
	rarityRareHolo  // "Rare Holo" and its V/GX/VMAX extensions ("Rare Holo EX" classifies as ultra-rare)
	rarityUltraRare
	rarityACESpec
	rarityPromo
)

func classifyRarity(rarity string) rarityClass {
	r := strings.TrimSpace(rarity)
	switch r {
	case "Common":
		return rarityCommon
	case "Uncommon":
		return rarityUncommon
	case "Rare":
		return rarityBasicRare
	}
	lower := strings.ToLower(r)
	switch {
	case strings.Contains(lower, "ace spec"):
		return rarityACESpec
	case strings.Contains(lower, "promo"):
		return rarityPromo
	case strings.Contains(lower, "illustration rare"),
		strings.Contains(lower, "ultra rare"),
		strings.Contains(lower, "double rare"),
		strings.Contains(lower, "secret"),
		strings.Contains(lower, "hyper rare"),
		strings.Contains(lower, "rainbow"),
		strings.Contains(lower, "gold"),
		strings.Contains(lower, " ex"):
		return rarityUltraRare
	case strings.HasPrefix(lower, "rare holo"):
		return rarityRareHolo
	case strings.Contains(lower, "rare"):
		return rarityBasicRare
	default:
		return rarityOther
	}
}

// IsHoloRarePattern reports whether rarity is "Rare Holo" or one of its
// V/EX/GX/VMAX extensions, used by the override layer's theme-deck
// rule.
func IsHoloRarePattern(rarity string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(rarity)), "rare holo")
}

// IsJapaneseOnlyCharacterRarity reports whether rarity names one of the
// character rarities that only ever ship in Japanese-exclusive
// products.
func IsJapaneseOnlyCharacterRarity(rarity string) bool {
	lower := strings.ToLower(rarity)
	switch {
	case strings.Contains(lower, "character rare"),
		strings.Contains(lower, "character super rare"),
		strings.Contains(lower, "shiny super rare"):
		return true
	default:
		return false
	}
}

// patternSetKind names a special-finish ScarletViolet subset that
// deviates from the regular-set rules below.
type patternSetKind int

const (
	patternPrismaticEvolutions patternSetKind = iota
	patternBlackBoltWhiteFlare
)

type patternSetRule struct {
	kind      patternSetKind
	threshold int // card numbers above this are holo-only secrets
}

// patternSets is the table of ScarletViolet subsets with Pokeball /
// Masterball pattern finishes. Keyed by set identifier so a new
// pattern set is a table entry, not an evaluator change.
var patternSets = map[string]patternSetRule{
	"sv8pt5":   {kind: patternPrismaticEvolutions, threshold: 131},
	"zsv10pt5": {kind: patternBlackBoltWhiteFlare, threshold: 86},
	"rsv10pt5": {kind: patternBlackBoltWhiteFlare, threshold: 86},
}

// EraRuleEvaluator applies era-specific defaults keyed on rarity, card
// kind, card number, and set membership.
type EraRuleEvaluator struct{}

// NewEraRuleEvaluator constructs the evaluator.
func NewEraRuleEvaluator() *EraRuleEvaluator {
	return &EraRuleEvaluator{}
}

type eraOutcome struct {
	partial PartialMap
	reason  string
}

// Apply returns the partial map of Finishes this card's era, rarity,
// kind, and card number imply. card.Rarity must already be
// rarity-standardized.
func (e *EraRuleEvaluator) Apply(card model.CardRecord, detected model.Era) PartialMap {
	return e.evaluate(card, detected).partial
}

// Explain returns the single sentence naming the era and the rule
// branch that fired, or nil if no era rule applied.
func (e *EraRuleEvaluator) Explain(card model.CardRecord, detected model.Era) []string {
	reason := e.evaluate(card, detected).reason
	if reason == "" {
		return nil
	}
	return []string{reason}
}

func (e *EraRuleEvaluator) evaluate(card model.CardRecord, detected model.Era) eraOutcome {
	switch detected {
	case model.EraScarletViolet:
		if rule, ok := patternSets[card.SetID]; ok {
			return e.patternSet(card, rule)
		}
		return e.scarletVioletRegular(card)
	case model.EraSwordShield, model.EraSunMoon, model.EraXY, model.EraBlackWhite, model.EraHGSS, model.EraDP, model.EraEX:
		return e.modernRegular(card, detected)
	case model.EraWotC:
		return e.wotc(card)
	default:
		return eraOutcome{}
	}
}

func medium(prov model.Provenance) model.VariantFlag {
	return model.VariantFlag{Exists: true, Provenance: prov, Confidence: model.ConfidenceMedium}
}

func high(prov model.Provenance) model.VariantFlag {
	return model.VariantFlag{Exists: true, Provenance: prov, Confidence: model.ConfidenceHigh}
}

func (e *EraRuleEvaluator) scarletVioletRegular(card model.CardRecord) eraOutcome {
	class := classifyRarity(card.Rarity)
	switch class {
	case rarityCommon, rarityUncommon:
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:      medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: "Scarlet & Violet era: commons and uncommons print as Normal and Reverse Holo",
		}
	case rarityBasicRare, rarityRareHolo:
		return eraOutcome{
			partial: PartialMap{
				model.FinishHolo:        medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: "Scarlet & Violet era: single-star rares are holo by default",
		}
	case rarityUltraRare, rarityACESpec:
		return eraOutcome{
			partial: PartialMap{model.FinishHolo: medium(model.ProvenanceRule)},
			reason:  "Scarlet & Violet era: ultra-rares print holo only",
		}
	default:
		return eraOutcome{}
	}
}

func (e *EraRuleEvaluator) patternSet(card model.CardRecord, rule patternSetRule) eraOutcome {
	ordinal, hasOrdinal := card.Ordinal()
	if hasOrdinal && ordinal > rule.threshold {
		return eraOutcome{
			partial: PartialMap{model.FinishHolo: high(model.ProvenanceRule)},
			reason:  fmt.Sprintf("%s: secret rares above #%d print holo only", patternSetName(rule.kind), rule.threshold),
		}
	}

	switch rule.kind {
	case patternPrismaticEvolutions:
		return e.prismaticEvolutions(card)
	case patternBlackBoltWhiteFlare:
		return e.blackBoltWhiteFlare(card)
	}
	return eraOutcome{}
}

// prismaticEvolutions handles the sv8pt5-style subset below its secret-rare
// threshold. Trainer and basic Energy kind are resolved before the Pokemon
// rarity branch below: both rarity classes a Trainer or Energy card
// actually carries (Common, Uncommon, ...) would otherwise also match the
// Pokemon branch and wrongly pick up a Masterball pattern. Energy drops the
// Pokeball pattern as well as the Masterball, since basic Energy never
// carries either pattern finish; a Trainer keeps the Pokeball.
func (e *EraRuleEvaluator) prismaticEvolutions(card model.CardRecord) eraOutcome {
	if card.Is("Energy") {
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:      medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: "Prismatic Evolutions: basic Energy drops both pattern finishes",
		}
	}
	if card.Is("Trainer") {
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:          medium(model.ProvenanceRule),
				model.FinishReverseHolo:     medium(model.ProvenanceRule),
				model.FinishPokeballPattern: medium(model.ProvenanceRule),
			},
			reason: "Prismatic Evolutions: Trainers carry the Pokeball pattern only",
		}
	}

	class := classifyRarity(card.Rarity)
	partial := PartialMap{
		model.FinishNormal:          medium(model.ProvenanceRule),
		model.FinishReverseHolo:     medium(model.ProvenanceRule),
		model.FinishPokeballPattern: medium(model.ProvenanceRule),
	}
	if class != rarityUltraRare && class != rarityACESpec {
		partial[model.FinishMasterballPattern] = medium(model.ProvenanceRule)
		return eraOutcome{partial: partial, reason: "Prismatic Evolutions: Pokemon print with both Pokeball and Masterball patterns"}
	}
	return eraOutcome{partial: partial, reason: "Prismatic Evolutions: ex/ACE SPEC Pokemon drop the Masterball pattern"}
}

// blackBoltWhiteFlare handles the zsv10pt5/rsv10pt5-style subset below its
// secret-rare threshold. Trainer and Energy kind are checked before the
// Pokemon rarity branches: Trainers and basic Energy carry exactly the
// Common/Uncommon/Rare rarities the Pokemon branches also match, so kind
// must win first or it is never reached.
func (e *EraRuleEvaluator) blackBoltWhiteFlare(card model.CardRecord) eraOutcome {
	switch {
	case card.Is("Trainer"):
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:          medium(model.ProvenanceRule),
				model.FinishReverseHolo:     medium(model.ProvenanceRule),
				model.FinishPokeballPattern: medium(model.ProvenanceRule),
			},
			reason: "Black Bolt / White Flare: Trainer cards carry the Pokeball pattern only",
		}
	case card.Is("Energy"):
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:      medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: "Black Bolt / White Flare: basic Energy prints Normal and Reverse Holo only",
		}
	}

	class := classifyRarity(card.Rarity)
	switch {
	case class == rarityCommon || class == rarityUncommon:
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:            medium(model.ProvenanceRule),
				model.FinishReverseHolo:       medium(model.ProvenanceRule),
				model.FinishPokeballPattern:   medium(model.ProvenanceRule),
				model.FinishMasterballPattern: medium(model.ProvenanceRule),
			},
			reason: "Black Bolt / White Flare: commons and uncommons carry both pattern finishes",
		}
	case class == rarityBasicRare || class == rarityRareHolo:
		return eraOutcome{
			partial: PartialMap{
				model.FinishHolo:              medium(model.ProvenanceRule),
				model.FinishReverseHolo:       medium(model.ProvenanceRule),
				model.FinishPokeballPattern:   medium(model.ProvenanceRule),
				model.FinishMasterballPattern: medium(model.ProvenanceRule),
			},
			reason: "Black Bolt / White Flare: rares print holo with both pattern finishes",
		}
	default:
		return eraOutcome{
			partial: PartialMap{model.FinishHolo: medium(model.ProvenanceRule)},
			reason:  "Black Bolt / White Flare: ultra-rares print holo only",
		}
	}
}

func patternSetName(kind patternSetKind) string {
	switch kind {
	case patternPrismaticEvolutions:
		return "Prismatic Evolutions"
	case patternBlackBoltWhiteFlare:
		return "Black Bolt / White Flare"
	default:
		return "pattern set"
	}
}

func (e *EraRuleEvaluator) modernRegular(card model.CardRecord, detected model.Era) eraOutcome {
	class := classifyRarity(card.Rarity)
	eraName := string(detected)
	switch class {
	case rarityCommon, rarityUncommon:
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:      medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: fmt.Sprintf("%s era: commons and uncommons print as Normal and Reverse Holo", eraName),
		}
	case rarityBasicRare:
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:      medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: fmt.Sprintf("%s era: single-star rares print non-holo with a reverse holo", eraName),
		}
	case rarityRareHolo:
		return eraOutcome{
			partial: PartialMap{
				model.FinishHolo:        medium(model.ProvenanceRule),
				model.FinishReverseHolo: medium(model.ProvenanceRule),
			},
			reason: fmt.Sprintf("%s era: Rare Holo prints holo with a reverse holo, no non-holo", eraName),
		}
	case rarityUltraRare, rarityACESpec:
		return eraOutcome{
			partial: PartialMap{model.FinishHolo: medium(model.ProvenanceRule)},
			reason:  fmt.Sprintf("%s era: ultra-rares print holo only", eraName),
		}
	default:
		return eraOutcome{}
	}
}

// wotcReverseHoloActivation is the date from which WotC-era commons
// and uncommons carry a reverse holo print.
var wotcReverseHoloActivation = time.Date(2002, 5, 24, 0, 0, 0, 0, time.UTC)

func (e *EraRuleEvaluator) wotc(card model.CardRecord) eraOutcome {
	class := classifyRarity(card.Rarity)
	switch class {
	case rarityCommon, rarityUncommon:
		partial := PartialMap{
			model.FinishNormal:             medium(model.ProvenanceRule),
			model.FinishFirstEditionNormal: medium(model.ProvenanceRule),
		}
		if !card.SetReleased.Before(wotcReverseHoloActivation) {
			partial[model.FinishReverseHolo] = high(model.ProvenanceRule)
			return eraOutcome{partial: partial, reason: "WotC era: reverse holo printing began 2002-05-24"}
		}
		partial[model.FinishReverseHolo] = model.VariantFlag{Exists: false, Provenance: model.ProvenanceRule, Confidence: model.ConfidenceHigh}
		return eraOutcome{partial: partial, reason: "WotC era: no reverse holo printing before 2002-05-24"}
	case rarityBasicRare:
		return eraOutcome{
			partial: PartialMap{
				model.FinishNormal:             medium(model.ProvenanceRule),
				model.FinishFirstEditionNormal: medium(model.ProvenanceRule),
			},
			reason: "WotC era: single-star rares print non-holo with a 1st Edition normal",
		}
	case rarityRareHolo:
		return eraOutcome{
			partial: PartialMap{
				model.FinishHolo:           medium(model.ProvenanceRule),
				model.FinishFirstEditionHolo: medium(model.ProvenanceRule),
			},
			reason: "WotC era: Rare Holo prints holo with a 1st Edition holo, no non-holo",
		}
	case rarityUltraRare, rarityACESpec:
		return eraOutcome{
			partial: PartialMap{
				model.FinishHolo:             medium(model.ProvenanceRule),
				model.FinishFirstEditionHolo: medium(model.ProvenanceRule),
			},
			reason: "WotC era: ultra-rares print holo with a 1st Edition holo",
		}
	default:
		return eraOutcome{}
	}
}
