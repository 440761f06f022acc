package rules

import "github.com/guarzo/variantctl/internal/model"

// Merge combines the three partial maps under the fixed precedence
// default < era < override < hard (spec.md §4.5) into a full,
// seven-key VariantResult. Era and hard layers overwrite their target
// Finish wholesale; the override layer is constrained: it may only
// flip an absent Finish to present, or clear a present Finish whose
// confidence it strictly dominates. The hard layer always wins.
func Merge(cardID, setID string, detected model.Era, rarity string, channels []model.Channel, eraMap, overrideMap, hardMap PartialMap) model.VariantResult {
	result := model.NewVariantResult(cardID, setID, detected, rarity, channels)

	for finish, flag := range eraMap {
		result.Variants[finish] = flag
	}

	for finish, overrideFlag := range overrideMap {
		current := result.Variants[finish]
		switch {
		case overrideFlag.Exists && !current.Exists:
			result.Variants[finish] = overrideFlag
		case !overrideFlag.Exists && current.Exists && overrideFlag.Confidence.Dominates(current.Confidence):
			result.Variants[finish] = overrideFlag
		}
	}

	for finish, flag := range hardMap {
		result.Variants[finish] = flag
	}

	return result
}
