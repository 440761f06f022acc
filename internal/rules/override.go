package rules

import (
	"strings"

	"github.com/guarzo/variantctl/internal/model"
)

// rarityRenames is the fixed rarity-name standardisation table applied
// before any rule reads a card's rarity. Idempotent: renaming an
// already-canonical name is a no-op.
var rarityRenames = map[string]string{
	"Holo Rare": "Rare Holo",
}

// StandardizeRarity applies the rarity rename table. Per spec.md §9's
// resolved Open Question, this runs unconditionally at the pipeline
// entry point, not only on some code paths.
func StandardizeRarity(rarity string) string {
	if renamed, ok := rarityRenames[rarity]; ok {
		return renamed
	}
	return rarity
}

// setOverrideFunc is a pure function from a card to the partial map a
// named set-specific exception contributes.
type setOverrideFunc func(card model.CardRecord) (PartialMap, string)

// setOverrides is the table of per-set named exceptions from spec.md
// §4.4. A new set-specific rule is a table entry, never an evaluator
// change.
var setOverrides = map[string]setOverrideFunc{
	"cel25":  celebrationsOverride,
	"mcd19":  mcdonaldsOverride,
	"sm115":  hiddenFatesOverride,
	"sm35":   shiningLegendsOverride,
	"sv3pt5": the151Override,
}

func celebrationsOverride(card model.CardRecord) (PartialMap, string) {
	partial := PartialMap{
		model.FinishReverseHolo: model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceHigh},
	}
	if classifyRarity(card.Rarity) == rarityCommon {
		partial[model.FinishNormal] = high(model.ProvenanceOverride)
		partial[model.FinishHolo] = model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceHigh}
	} else {
		partial[model.FinishHolo] = high(model.ProvenanceOverride)
		partial[model.FinishNormal] = model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceHigh}
	}
	return partial, "Celebrations anniversary reprint: commons are normal-only, all else holo-only, no reverse holo"
}

func mcdonaldsOverride(model.CardRecord) (PartialMap, string) {
	return PartialMap{
		model.FinishNormal: high(model.ProvenanceOverride),
	}, "McDonald's promotional set: normal only"
}

func hiddenFatesOverride(card model.CardRecord) (PartialMap, string) {
	ordinal, ok := card.Ordinal()
	if !ok || ordinal <= 68 {
		return nil, ""
	}
	return PartialMap{model.FinishHolo: high(model.ProvenanceOverride)}, "Hidden Fates subset: cards above #68 print holo only"
}

func shiningLegendsOverride(card model.CardRecord) (PartialMap, string) {
	if !strings.Contains(card.Name, "Shining ") {
		return nil, ""
	}
	return PartialMap{model.FinishHolo: high(model.ProvenanceOverride)}, "Shining Legends: Shining Pokemon print holo only"
}

func the151Override(card model.CardRecord) (PartialMap, string) {
	ordinal, ok := card.Ordinal()
	if !ok || ordinal <= 151 {
		return nil, ""
	}
	return PartialMap{model.FinishHolo: high(model.ProvenanceOverride)}, "151 set: cards above #151 print holo only"
}

// CardCorrections is the table of known upstream-data corrections,
// keyed by card identifier. Entries are full partial overrides applied
// with confidence High, per spec.md §4.4.
var CardCorrections = map[string]PartialMap{}

// OverrideEvaluator applies product-channel rules, named set-specific
// exceptions, and known per-card corrections on top of the partial map
// accumulated by the era layer (the hard layer's map is not consulted).
type OverrideEvaluator struct{}

// NewOverrideEvaluator constructs the evaluator.
func NewOverrideEvaluator() *OverrideEvaluator {
	return &OverrideEvaluator{}
}

type overrideContribution struct {
	partial PartialMap
	reason  string
}

// Apply folds every independent, order-insensitive override sub-rule
// into a single partial map. Within the layer, a positive existence
// claim wins over a negative one at equal precedence, and a High
// confidence contribution wins over a Medium one at the same layer.
func (o *OverrideEvaluator) Apply(card model.CardRecord, channels []model.Channel, accumulated PartialMap) PartialMap {
	contributions := o.contributions(card, channels, accumulated)
	return foldContributions(contributions)
}

// Explain returns one sentence per override sub-rule that contributed.
func (o *OverrideEvaluator) Explain(card model.CardRecord, channels []model.Channel, accumulated PartialMap) []string {
	var out []string
	for _, c := range o.contributions(card, channels, accumulated) {
		if c.reason != "" {
			out = append(out, c.reason)
		}
	}
	return out
}

func (o *OverrideEvaluator) contributions(card model.CardRecord, channels []model.Channel, accumulated PartialMap) []overrideContribution {
	var out []overrideContribution

	if hasChannel(channels, model.ChannelThemeDeck, model.ChannelStarterDeck, model.ChannelBattleDeck) {
		if flag, ok := accumulated[model.FinishHolo]; ok && flag.Exists {
			if normal, ok := accumulated[model.FinishNormal]; !ok || !normal.Exists {
				if IsHoloRarePattern(card.Rarity) {
					out = append(out, overrideContribution{
						partial: PartialMap{model.FinishNormal: medium(model.ProvenanceOverride)},
						reason:  "Theme Deck product source adds non-holo variant",
					})
				}
			}
		}
	}

	if hasChannel(channels, model.ChannelPromo, model.ChannelPromoTin, model.ChannelTin, model.ChannelCollectionBox) {
		if strings.Contains(card.Rarity, "Promo") {
			if flag, ok := accumulated[model.FinishHolo]; !ok || !flag.Exists {
				out = append(out, overrideContribution{
					partial: PartialMap{model.FinishHolo: model.VariantFlag{Exists: true, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceLow}},
					reason:  "Promo product source adds holo variant",
				})
			}
			if flag, ok := accumulated[model.FinishReverseHolo]; ok && flag.Exists {
				out = append(out, overrideContribution{
					partial: PartialMap{model.FinishReverseHolo: model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceMedium}},
					reason:  "Promo product source clears reverse holo",
				})
			}
		}
	}

	if hasChannel(channels, model.ChannelStarterDeck) {
		class := classifyRarity(card.Rarity)
		if class == rarityCommon || class == rarityUncommon || class == rarityBasicRare {
			out = append(out, overrideContribution{
				partial: PartialMap{
					model.FinishNormal:      medium(model.ProvenanceOverride),
					model.FinishReverseHolo: model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceMedium},
				},
				reason: "Starter Deck product source forces non-holo, clears reverse holo",
			})
		}
	}

	if fn, ok := setOverrides[card.SetID]; ok {
		if partial, reason := fn(card); partial != nil {
			out = append(out, overrideContribution{partial: partial, reason: reason})
		}
	}

	if correction, ok := CardCorrections[card.ID]; ok {
		out = append(out, overrideContribution{partial: correction, reason: "Known upstream data correction applied"})
	}

	if IsJapaneseOnlyCharacterRarity(card.Rarity) {
		out = append(out, overrideContribution{
			partial: PartialMap{model.FinishReverseHolo: model.VariantFlag{Exists: false, Provenance: model.ProvenanceOverride, Confidence: model.ConfidenceMedium}},
			reason:  "Japanese-exclusive character rarity has no reverse holo",
		})
	}

	return out
}

func hasChannel(channels []model.Channel, any ...model.Channel) bool {
	for _, c := range channels {
		for _, a := range any {
			if c == a {
				return true
			}
		}
	}
	return false
}

// foldContributions combines independent override contributions into
// one partial map. At equal precedence, a positive existence claim
// wins over a negative one, and a higher-confidence claim wins over a
// lower one regardless of existence.
func foldContributions(contributions []overrideContribution) PartialMap {
	out := PartialMap{}
	for _, c := range contributions {
		for finish, flag := range c.partial {
			existing, ok := out[finish]
			if !ok {
				out[finish] = flag
				continue
			}
			out[finish] = resolveOverrideConflict(existing, flag)
		}
	}
	return out
}

func resolveOverrideConflict(a, b model.VariantFlag) model.VariantFlag {
	if a.Confidence.Dominates(b.Confidence) {
		return a
	}
	if b.Confidence.Dominates(a.Confidence) {
		return b
	}
	// Equal confidence: a positive existence claim wins over a negative one.
	if a.Exists && !b.Exists {
		return a
	}
	if b.Exists && !a.Exists {
		return b
	}
	return a
}
