package compare

import (
	"fmt"
	"time"
)

// PairResult records the comparison of one matched cell pair
type PairResult struct {
	First        string
	Second       string
	Result       Result
	Tier         string
	Iterations   int
	ForcedSplits int
	// Label is the structural label of First; zero unless Result is true
	Label    uint64
	Duration time.Duration
}

// Report is the outcome of a netlist comparison. Pairs are ordered leaves
// first as they appear in the first netlist's hierarchy.
type Report struct {
	RunID      string
	Mode       Mode
	Concurrent bool
	First      string
	Second     string
	Top1       string
	Top2       string
	Equivalent bool
	Pairs      []PairResult
	Duration   time.Duration
}

// Mismatches returns the pairs that did not match
func (r *Report) Mismatches() []PairResult {
	var out []PairResult
	for _, p := range r.Pairs {
		if p.Result != ResultTrue {
			out = append(out, p)
		}
	}
	return out
}

// Pair looks a result up by the name of its first cell
func (r *Report) Pair(first string) (PairResult, bool) {
	for _, p := range r.Pairs {
		if p.First == first {
			return p, true
		}
	}
	return PairResult{}, false
}

// Verdict returns a one-line summary
func (r *Report) Verdict() string {
	status := "NOT EQUIVALENT"
	if r.Equivalent {
		status = "EQUIVALENT"
	}
	return fmt.Sprintf("%s: %s(%s) vs %s(%s), %d pairs, %d mismatched",
		status, r.Top1, r.First, r.Top2, r.Second, len(r.Pairs), len(r.Mismatches()))
}
