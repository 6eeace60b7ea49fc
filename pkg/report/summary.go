package report

import (
	"fmt"
	"math"
	"slices"

	"route_planner/pkg/routing"
)

// Summary aggregates repeated runs of one algorithm.
type Summary struct {
	Algorithm    routing.Algorithm
	Runs         int
	Reachable    int
	MeanMillis   float64
	MeanNodes    float64
	MeanDistance float64 // over reachable runs only; +Inf if none
	MeanPathLen  float64
	P50Millis    float64
	P90Millis    float64
	P99Millis    float64
}

// Summarize computes means and time percentiles over runs.
func Summarize(alg routing.Algorithm, runs []routing.Stats) Summary {
	s := Summary{Algorithm: alg, Runs: len(runs), MeanDistance: math.Inf(1)}
	if len(runs) == 0 {
		return s
	}

	times := make([]float64, len(runs))
	var sumMillis, sumNodes, sumDist, sumPath float64
	for i, st := range runs {
		times[i] = st.Millis()
		sumMillis += times[i]
		sumNodes += float64(st.NodesExpanded)
		sumPath += float64(len(st.Path))
		if st.Reachable() {
			s.Reachable++
			sumDist += st.Distance
		}
	}
	n := float64(len(runs))
	s.MeanMillis = sumMillis / n
	s.MeanNodes = sumNodes / n
	s.MeanPathLen = sumPath / n
	if s.Reachable > 0 {
		s.MeanDistance = sumDist / float64(s.Reachable)
	}

	slices.Sort(times)
	s.P50Millis = Percentile(times, 50)
	s.P90Millis = Percentile(times, 90)
	s.P99Millis = Percentile(times, 99)
	return s
}

// Percentile returns the p-th percentile (0..100) of sorted values using
// linear interpolation between closest ranks. It returns 0 for no values.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Row converts the summary into an "<alg>_avg" metrics row.
func (s Summary) Row() Row {
	return Row{
		Label:         s.Algorithm.String() + "_avg",
		Distance:      s.MeanDistance,
		NodesExpanded: int(math.Round(s.MeanNodes)),
		Millis:        s.MeanMillis,
		PathLen:       int(math.Round(s.MeanPathLen)),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%s mean_time_ms=%.3f mean_nodes=%.1f mean_dist=%g reachable=%d/%d p50_time=%.3f p90_time=%.3f p99_time=%.3f",
		s.Algorithm.Label(), s.MeanMillis, s.MeanNodes, s.MeanDistance, s.Reachable, s.Runs,
		s.P50Millis, s.P90Millis, s.P99Millis)
}
