// Package engine wires the Era Detector and the three rule evaluators
// behind the single per-card inference entry point described in
// spec.md §6. The pipeline is pure and synchronous: no I/O, no
// blocking, no suspension points.
package engine

import (
	"fmt"
	"log"

	"github.com/guarzo/variantctl/internal/era"
	"github.com/guarzo/variantctl/internal/model"
	"github.com/guarzo/variantctl/internal/rules"
)

// Engine holds the rule-layer evaluators. They carry no per-call
// state, so a single Engine is safe to share across goroutines and is
// exactly what the Batch Driver fans out over.
type Engine struct {
	hard     *rules.HardRuleEvaluator
	eraRules *rules.EraRuleEvaluator
	override *rules.OverrideEvaluator
	strict   bool
}

// New constructs an Engine with the standard evaluator set, running in
// the default, production-safe mode: an invariant violation is logged
// and corrected rather than returned as an error.
func New() *Engine {
	return &Engine{
		hard:     rules.NewHardRuleEvaluator(),
		eraRules: rules.NewEraRuleEvaluator(),
		override: rules.NewOverrideEvaluator(),
	}
}

// NewStrict constructs an Engine that returns an
// InternalInvariantViolation error instead of silently correcting it,
// for development and CI where a rule bug should fail the build loudly
// rather than degrade a result.
func NewStrict() *Engine {
	e := New()
	e.strict = true
	return e
}

// Infer runs the full per-card pipeline: validate, detect era, fold
// the hard/era/override layers through the precedence merger, and
// attach explanations. channels defaults to model.DefaultChannels when
// nil or empty.
func (e *Engine) Infer(card model.CardRecord, channels []model.Channel) (model.VariantResult, error) {
	if err := validate(card); err != nil {
		return model.VariantResult{}, err
	}
	if len(channels) == 0 {
		channels = model.DefaultChannels
	}

	detected, err := era.Detect(card.SetID, card.SetSeries, card.SetReleased)
	if err != nil {
		return model.VariantResult{}, err
	}

	// Rarity standardisation runs unconditionally at the pipeline
	// entry, per spec.md §9's resolved Open Question. The original,
	// caller-supplied rarity string is preserved on the result; only
	// the working copy used for rule evaluation is standardized.
	standardized := card
	standardized.Rarity = rules.StandardizeRarity(card.Rarity)

	eraMap := e.eraRules.Apply(standardized, detected)
	hardMap := e.hard.Apply(standardized)
	overrideMap := e.override.Apply(standardized, channels, eraMap)

	result := rules.Merge(card.ID, card.SetID, detected, card.Rarity, channels, eraMap, overrideMap, hardMap)
	if err := e.enforceInvariant(result); err != nil {
		return model.VariantResult{}, err
	}

	result.Explanations = rules.CollectExplanations(
		e.hard.Explain(standardized),
		e.eraRules.Explain(standardized, detected),
		e.override.Explain(standardized, channels, eraMap),
	)

	return result, nil
}

// enforceInvariant guards against a rule layer claiming a finish exists
// without tagging how it knows. This should never happen if the
// evaluators are correct. In strict mode it fails loudly with an
// InternalInvariantViolation error; otherwise it logs and falls back to
// the safe {exists:false} reading rather than report an unexplained
// variant, per spec.md §7.
func (e *Engine) enforceInvariant(result model.VariantResult) error {
	for finish, flag := range result.Variants {
		if flag.Exists && (flag.Provenance == "" || flag.Confidence == "") {
			msg := fmt.Sprintf("%s claims exists=true with provenance=%q confidence=%q", finish, flag.Provenance, flag.Confidence)
			if e.strict {
				return model.NewInternalInvariantViolation(result.CardID, msg)
			}
			log.Printf("engine: invariant violation for card %s: %s, falling back to absent", result.CardID, msg)
			result.Variants[finish] = model.VariantFlag{Exists: false}
		}
	}
	return nil
}

func validate(card model.CardRecord) error {
	switch {
	case card.ID == "":
		return model.NewInvalidInput(card.ID, "card identifier is required")
	case card.SetID == "":
		return model.NewInvalidInput(card.ID, "set identifier is required")
	case card.Rarity == "":
		return model.NewInvalidInput(card.ID, "rarity is required")
	case card.SetReleased.IsZero():
		return model.NewInvalidInput(card.ID, "set release date is required")
	default:
		return nil
	}
}
