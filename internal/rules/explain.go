package rules

// CollectExplanations assembles the final explanation list in the
// stable order spec.md §4.6 requires: hard-layer sentence first, then
// era, then override sentences. Empty sentences are dropped and
// duplicates are removed, keeping only the first occurrence, so the
// result is order-stable across repeated runs on identical input.
func CollectExplanations(hard, eraReasons, override []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(sentences []string) {
		for _, s := range sentences {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	add(hard)
	add(eraReasons)
	add(override)
	return out
}
