// Package model holds the data shapes shared by the variant inference
// engine: the card the caller hands in, the enumerations the engine
// reasons over, and the result it hands back.
package model

import (
	"strings"
	"time"
)

// Finish is a distinct printing treatment of a single card.
type Finish string

const (
	FinishNormal             Finish = "normal"
	FinishHolo               Finish = "holo"
	FinishReverseHolo        Finish = "reverse"
	FinishFirstEditionNormal Finish = "firstEdNormal"
	FinishFirstEditionHolo   Finish = "firstEdHolo"
	FinishPokeballPattern    Finish = "pokeballPattern"
	FinishMasterballPattern  Finish = "masterballPattern"
)

// AllFinishes is the closed, ordered set of Finish keys. Every
// VariantResult.Variants map contains exactly these keys.
var AllFinishes = []Finish{
	FinishNormal,
	FinishHolo,
	FinishReverseHolo,
	FinishFirstEditionNormal,
	FinishFirstEditionHolo,
	FinishPokeballPattern,
	FinishMasterballPattern,
}

// Era is a named historical period of the card-game catalogue.
type Era string

const (
	EraWotC          Era = "WotC"
	EraEX            Era = "EX"
	EraDP            Era = "DP"
	EraHGSS          Era = "HGSS"
	EraBlackWhite    Era = "Black & White"
	EraXY            Era = "XY"
	EraSunMoon       Era = "Sun & Moon"
	EraSwordShield   Era = "Sword & Shield"
	EraScarletViolet Era = "Scarlet & Violet"
)

// Confidence is an ordered enumeration, High > Medium > Low.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders confidence values for dominance comparisons; higher wins.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Dominates reports whether c outranks other. Equal confidences do not
// dominate each other.
func (c Confidence) Dominates(other Confidence) bool {
	return c.rank() > other.rank()
}

// Provenance names which rule layer asserted a Finish.
type Provenance string

const (
	ProvenanceAPI      Provenance = "api"
	ProvenanceRule     Provenance = "rule"
	ProvenanceOverride Provenance = "override"
)

// Channel is a recognised product-distribution channel. Unknown
// strings are accepted but ignored by every rule.
type Channel string

const (
	ChannelBooster       Channel = "Booster"
	ChannelThemeDeck     Channel = "Theme Deck"
	ChannelStarterDeck   Channel = "Starter Deck"
	ChannelBattleDeck    Channel = "Battle Deck"
	ChannelPromo         Channel = "Promo"
	ChannelPromoTin      Channel = "Promo/Tin"
	ChannelTin           Channel = "Tin"
	ChannelCollectionBox Channel = "Collection Box"
)

// DefaultChannels is used when the caller supplies no channel list.
var DefaultChannels = []Channel{ChannelBooster}

// VariantFlag is the engine's conclusion about a single Finish.
type VariantFlag struct {
	Exists     bool       `json:"exists"`
	Provenance Provenance `json:"source,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// CardRecord is the caller-owned input to a single inference. The
// engine borrows it for the duration of one call and never mutates it.
//
// PricingSignals carries the card's optional external pricing keys
// (e.g. from a TCGPlayer-shaped price block). Only key presence is
// meaningful; the engine never looks at values, so callers model them
// as a presence-only set rather than a priced map.
type CardRecord struct {
	ID             string
	Name           string
	Number         string // raw printed number, possibly "N/M"
	Rarity         string
	Kinds          map[string]bool // e.g. "Pokemon", "Trainer", "Energy"
	SetID          string
	SetSeries      string
	SetReleased    time.Time
	PricingSignals map[string]struct{}
}

// Ordinal parses the numerator out of Number ("152/165" -> 152, true).
// The numerator is the only part any rule ever consults.
func (c CardRecord) Ordinal() (int, bool) {
	return parseOrdinal(c.Number)
}

func parseOrdinal(number string) (int, bool) {
	left, _, found := strings.Cut(number, "/")
	if !found {
		left = number
	}
	left = strings.TrimSpace(left)
	n := 0
	any := false
	for _, r := range left {
		if r < '0' || r > '9' {
			if !any {
				return 0, false
			}
			break
		}
		n = n*10 + int(r-'0')
		any = true
	}
	if !any {
		return 0, false
	}
	return n, true
}

// Is reports whether the card carries the given kind tag.
func (c CardRecord) Is(kind string) bool {
	if c.Kinds == nil {
		return false
	}
	return c.Kinds[kind]
}

// VariantResult is the engine's pure, self-contained output.
type VariantResult struct {
	CardID       string
	SetID        string
	Era          Era
	Rarity       string
	Variants     map[Finish]VariantFlag
	PrintSources []Channel
	Explanations []string
}

// NewVariantResult builds a result with all seven Finish keys present
// and defaulted to {exists:false}, per invariant 1.
func NewVariantResult(cardID, setID string, era Era, rarity string, channels []Channel) VariantResult {
	variants := make(map[Finish]VariantFlag, len(AllFinishes))
	for _, f := range AllFinishes {
		variants[f] = VariantFlag{Exists: false}
	}
	return VariantResult{
		CardID:       cardID,
		SetID:        setID,
		Era:          era,
		Rarity:       rarity,
		Variants:     variants,
		PrintSources: channels,
	}
}

// CustomVariant is a site-local printing known only to an external
// data store, optionally replacing one of the standard Finishes.
type CustomVariant struct {
	DisplayName   string
	Description   string
	Replaces      *Finish
	Active        bool
	SourceProduct string
	Prices        map[string]float64 // uninterpreted by the engine
}