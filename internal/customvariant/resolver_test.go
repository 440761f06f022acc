package customvariant

import (
	"context"
	"errors"
	"testing"

	"github.com/guarzo/variantctl/internal/model"
)

type stubSource struct {
	name    string
	variants []model.CustomVariant
	err     error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Lookup(_ context.Context, _ model.CardRecord) ([]model.CustomVariant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.variants, nil
}

func baseResult() *model.VariantResult {
	r := model.NewVariantResult("c1", "s1", model.EraScarletViolet, "Rare", model.DefaultChannels)
	r.Variants[model.FinishHolo] = model.VariantFlag{Exists: true, Provenance: model.ProvenanceRule, Confidence: model.ConfidenceMedium}
	return r
}

func TestResolver_AppliesReplacesStandard(t *testing.T) {
	replaced := model.FinishHolo
	src := stubSource{name: "stub", variants: []model.CustomVariant{
		{DisplayName: "Staff Prerelease Stamp", Active: true, Replaces: &replaced},
	}}
	r := NewResolver([]DataSource{src})
	result := baseResult()

	r.Resolve(context.Background(), model.CardRecord{ID: "c1"}, result)

	flag := result.Variants[model.FinishHolo]
	if flag.Exists {
		t.Errorf("got %+v, want the custom variant to clear the replaced finish", flag)
	}
	if flag.Confidence != model.ConfidenceHigh {
		t.Errorf("got confidence %q, want high", flag.Confidence)
	}

	found := false
	for _, e := range result.Explanations {
		if e == "custom variant available: Staff Prerelease Stamp" {
			found = true
		}
	}
	if !found {
		t.Errorf("explanations = %v, want a custom variant line", result.Explanations)
	}
}

func TestResolver_SourceFailureSkippedNotFatal(t *testing.T) {
	src := stubSource{name: "flaky", err: errors.New("upstream 500")}
	r := NewResolver([]DataSource{src})
	result := baseResult()

	r.Resolve(context.Background(), model.CardRecord{ID: "c1"}, result)

	if flag := result.Variants[model.FinishHolo]; !flag.Exists {
		t.Error("a failed source must not alter existing variant state")
	}

	found := false
	for _, e := range result.Explanations {
		if e == "custom variant source flaky unavailable, skipped" {
			found = true
		}
	}
	if !found {
		t.Errorf("explanations = %v, want a skip notice for the failed source", result.Explanations)
	}
}

func TestResolver_NoSourcesIsNoop(t *testing.T) {
	r := NewResolver(nil)
	result := baseResult()
	before := len(result.Explanations)

	r.Resolve(context.Background(), model.CardRecord{ID: "c1"}, result)

	if len(result.Explanations) != before {
		t.Error("resolver with no sources must not add explanations")
	}
}

func TestActiveCustomVariants_FiltersInactive(t *testing.T) {
	src := stubSource{name: "stub", variants: []model.CustomVariant{
		{DisplayName: "Active One", Active: true},
		{DisplayName: "Retired One", Active: false},
	}}

	got, err := ActiveCustomVariants(context.Background(), src, model.CardRecord{ID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "Active One" {
		t.Errorf("got %+v, want only the active variant", got)
	}
}

func TestActiveCustomVariants_SourceErrorBecomesTypedError(t *testing.T) {
	src := stubSource{name: "flaky", err: errors.New("upstream 500")}

	_, err := ActiveCustomVariants(context.Background(), src, model.CardRecord{ID: "c1"})
	var engineErr *model.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("got %v, want an *model.EngineError", err)
	}
	if engineErr.Code != model.ErrCustomVariantSourceUnavailable {
		t.Errorf("got code %q, want %q", engineErr.Code, model.ErrCustomVariantSourceUnavailable)
	}
}
