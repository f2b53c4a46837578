package analyze

import "sort"

// DefaultThresholds are the reaction thresholds reported when none are
// configured.
var DefaultThresholds = []int{1, 2, 3}

// Result holds the summary statistics for one sample of reaction counts.
type Result struct {
	TotalCount         int
	Median             float64
	Mean               float64
	TopDecileThreshold float64
	TopDecileMean      float64
	TopDecileMedian    float64
	TopDecileCount     int
	Proportions        map[int]float64 // threshold -> fraction of counts at or above it
}

// Compute derives summary statistics from a sample of reaction counts. Each
// threshold yields one proportion entry. An empty sample produces zeroes
// across the board.
func Compute(counts, thresholds []int) Result {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}

	result := Result{
		TotalCount:  len(counts),
		Proportions: make(map[int]float64, len(thresholds)),
	}
	for _, threshold := range thresholds {
		result.Proportions[threshold] = 0
	}
	if len(counts) == 0 {
		return result
	}

	sorted := append([]int(nil), counts...)
	sort.Ints(sorted)

	result.Mean = mean(sorted)
	result.Median = median(sorted)

	// Top decile: the largest ceil(n/10) counts. The smallest of them is
	// the decile threshold.
	k := (len(sorted) + 9) / 10
	top := sorted[len(sorted)-k:]
	result.TopDecileCount = k
	result.TopDecileThreshold = float64(top[0])
	result.TopDecileMean = mean(top)
	result.TopDecileMedian = median(top)

	for _, threshold := range thresholds {
		result.Proportions[threshold] = proportionAtLeast(sorted, threshold)
	}
	return result
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// median expects values sorted ascending.
func median(values []int) float64 {
	n := len(values)
	if n%2 == 1 {
		return float64(values[n/2])
	}
	return float64(values[n/2-1]+values[n/2]) / 2
}

// proportionAtLeast expects values sorted ascending.
func proportionAtLeast(values []int, threshold int) float64 {
	i := sort.SearchInts(values, threshold)
	return float64(len(values)-i) / float64(len(values))
}
