// Package era maps a set's identifier, series name, and release date
// to exactly one catalogue era. Resolution is a three-step cascade;
// the tables below are the only place era knowledge lives, so a new
// set generation is a data change, not an evaluator change.
package era

import (
	"strings"
	"time"

	"github.com/guarzo/variantctl/internal/model"
)

// idPrefixRules maps a set-identifier prefix to its era. Checked in
// order; the first match wins.
var idPrefixRules = []struct {
	prefix string
	era    model.Era
}{
	{"sv", model.EraScarletViolet},
	{"swsh", model.EraSwordShield},
	{"sm", model.EraSunMoon},
	{"xy", model.EraXY},
	{"bw", model.EraBlackWhite},
}

// seriesSubstringRules maps a substring of the set's series name to
// its era. Checked in order; the first match wins.
var seriesSubstringRules = []struct {
	substr string
	era    model.Era
}{
	{"Scarlet", model.EraScarletViolet},
	{"Sword", model.EraSwordShield},
	{"Sun", model.EraSunMoon},
	{"HeartGold", model.EraHGSS},
	{"Diamond", model.EraDP},
	{"Ruby", model.EraEX},
	{"Base", model.EraWotC},
	{"Jungle", model.EraWotC},
	{"Fossil", model.EraWotC},
	{"Neo", model.EraWotC},
	{"Gym", model.EraWotC},
	{"Expedition", model.EraWotC},
	{"Aquapolis", model.EraWotC},
	{"Skyridge", model.EraWotC},
}

// dateBracketRules maps a release-date bracket [start, end) to its
// era. Brackets are checked in order; the first matching bracket wins.
// A zero start means "no lower bound", a zero end means "no upper
// bound" (i.e. the final, open-ended bracket).
var dateBracketRules = []struct {
	start time.Time
	end   time.Time
	era   model.Era
}{
	{time.Time{}, date(2003, 7, 18), model.EraWotC},
	{date(2003, 7, 18), date(2007, 1, 1), model.EraEX},
	{date(2007, 1, 1), date(2010, 1, 1), model.EraDP},
	{date(2010, 1, 1), date(2011, 1, 1), model.EraHGSS},
	{date(2011, 1, 1), date(2014, 1, 1), model.EraBlackWhite},
	{date(2014, 1, 1), date(2017, 1, 1), model.EraXY},
	{date(2017, 1, 1), date(2020, 1, 1), model.EraSunMoon},
	{date(2020, 1, 1), date(2023, 1, 1), model.EraSwordShield},
	{date(2023, 1, 1), time.Time{}, model.EraScarletViolet},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Detect resolves a single Era from the three-step cascade: set-ID
// prefix, then series-name substring, then release-date bracket. The
// first method to match wins; methods are never blended. Detect fails
// with model.ErrUnknownEra if none of the three methods match.
func Detect(setID, series string, released time.Time) (model.Era, error) {
	if e, ok := byIDPrefix(setID); ok {
		return e, nil
	}
	if e, ok := bySeriesSubstring(series); ok {
		return e, nil
	}
	if e, ok := byDateBracket(released); ok {
		return e, nil
	}
	return "", model.NewUnknownEra(setID, "era cascade exhausted: no id prefix, series substring, or date bracket matched")
}

func byIDPrefix(setID string) (model.Era, bool) {
	lower := strings.ToLower(setID)
	for _, r := range idPrefixRules {
		if strings.HasPrefix(lower, r.prefix) {
			return r.era, true
		}
	}
	return "", false
}

func bySeriesSubstring(series string) (model.Era, bool) {
	for _, r := range seriesSubstringRules {
		if strings.Contains(series, r.substr) {
			return r.era, true
		}
	}
	return "", false
}

func byDateBracket(released time.Time) (model.Era, bool) {
	if released.IsZero() {
		return "", false
	}
	for _, r := range dateBracketRules {
		if !r.start.IsZero() && released.Before(r.start) {
			continue
		}
		if !r.end.IsZero() && !released.Before(r.end) {
			continue
		}
		return r.era, true
	}
	return "", false
}
