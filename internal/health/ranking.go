package health

import "sort"

// RankSignals returns a copy of signals sorted by weight, heaviest first.
// Signals of equal weight keep their original order.
func RankSignals(signals []Signal) []Signal {
	sorted := make([]Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	return sorted
}
