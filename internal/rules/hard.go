// Package rules implements the three evaluator layers described in
// spec.md §4 (hard, era, override) plus the precedence merge and the
// explanation collector that sits on top of them. Each evaluator
// satisfies the same small capability the pipeline folds over: given a
// card and context, contribute a partial Finish map and a list of
// human-readable reasons.
package rules

import (
	"fmt"
	"sort"

	"github.com/guarzo/variantctl/internal/model"
)

// PartialMap is a Finish->VariantFlag map that may omit keys; only the
// keys it sets carry meaning to whichever layer produced it.
type PartialMap map[model.Finish]model.VariantFlag

// pricingKeyToFinish is the Hard-Rule key vocabulary from spec.md §4.2.
// Unknown keys are ignored; this table is the only place that
// vocabulary lives.
var pricingKeyToFinish = map[string]model.Finish{
	"normal":             model.FinishNormal,
	"unlimited":          model.FinishNormal,
	"unlimitedNormal":    model.FinishNormal,
	"holofoil":           model.FinishHolo,
	"unlimitedHolofoil":  model.FinishHolo,
	"reverseHolofoil":    model.FinishReverseHolo,
	"1stEditionNormal":   model.FinishFirstEditionNormal,
	"1stEditionHolofoil": model.FinishFirstEditionHolo,
}

// HardRuleEvaluator inspects a card's optional pricing-signal keys and
// declares existence for the Finish each known key maps to. It never
// sets exists=false; it only publishes positive signals, and every
// signal it publishes is provenance=api, confidence=high.
type HardRuleEvaluator struct{}

// NewHardRuleEvaluator constructs the evaluator. It carries no state:
// the key table above is the entirety of its behavior.
func NewHardRuleEvaluator() *HardRuleEvaluator {
	return &HardRuleEvaluator{}
}

// Apply returns the partial map of Finishes asserted by the card's
// pricing-signal keys.
func (h *HardRuleEvaluator) Apply(card model.CardRecord) PartialMap {
	out := PartialMap{}
	for key := range card.PricingSignals {
		finish, ok := pricingKeyToFinish[key]
		if !ok {
			continue
		}
		out[finish] = model.VariantFlag{
			Exists:     true,
			Provenance: model.ProvenanceAPI,
			Confidence: model.ConfidenceHigh,
		}
	}
	return out
}

// Explain returns one sentence naming every pricing-signal key the
// card carries that the hard layer recognized, in stable sorted order.
func (h *HardRuleEvaluator) Explain(card model.CardRecord) []string {
	var keys []string
	for key := range card.PricingSignals {
		if _, ok := pricingKeyToFinish[key]; ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	sentence := fmt.Sprintf("Pricing signals detected: %s", joinKeys(keys))
	return []string{sentence}
}

func joinKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}
