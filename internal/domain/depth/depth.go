// Package depth maps a newest-first recency rank to a depth in [0,1].
package depth

// Of returns rank/(n-1) for n > 1 and 0 otherwise. Rank 0 is the newest
// entry and sits at the front. Out of range ranks are clamped.
func Of(rank, n int) float64 {
	if n <= 1 || rank <= 0 {
		return 0
	}
	if rank >= n-1 {
		return 1
	}
	return float64(rank) / float64(n-1)
}

// All returns the depth of every rank in a list of n entries.
func All(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Of(i, n)
	}
	return out
}
