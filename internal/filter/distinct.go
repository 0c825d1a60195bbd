package filter

import "cashflow/internal/core"

// DistinctTypes returns each type once, in order of first appearance.
func DistinctTypes(all []core.CashFlow) []string {
	return distinct(all, func(c core.CashFlow) []string { return []string{c.Type} })
}

// DistinctSources returns each source once, in order of first appearance.
func DistinctSources(all []core.CashFlow) []string {
	return distinct(all, func(c core.CashFlow) []string { return []string{c.Source} })
}

// DistinctLabels returns every tag used by any record, trimmed and de-duplicated.
func DistinctLabels(all []core.CashFlow) []string {
	return distinct(all, core.CashFlow.Labels)
}

func distinct(all []core.CashFlow, values func(core.CashFlow) []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, c := range all {
		for _, v := range values(c) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
