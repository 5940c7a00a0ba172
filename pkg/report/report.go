// Package report provides the immutable aggregate view produced by a
// completed detector run: sorted pairs, suspicious-pair filtering, and
// summary statistics.
package report

import (
	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
	"github.com/cutwater-labs/mossaic/pkg/lang"
	"github.com/cutwater-labs/mossaic/pkg/pairing"
)

// DefaultSuspiciousThreshold is the default similarity cutoff used by
// GetSuspiciousPairs.
const DefaultSuspiciousThreshold = 0.5

// Summary aggregates statistics over a Report's pairs.
type Summary struct {
	TotalFiles        int
	TotalPairs        int
	SuspiciousPairs   int
	AverageSimilarity float64
	MaxSimilarity     float64
	Language          lang.Name
	Warnings          []string
}

// Report is an immutable view over a finalized fingerprint index: the
// files that made it into the analysis, the language used, and any
// warnings recorded along the way (e.g. skipped files).
type Report struct {
	Language lang.Name
	Entries  []*fingerprint.FileEntry
	Warnings []string

	minFragmentOccurrences int

	pairs []*pairing.Pair
}

// New builds a Report over a finalized index's entries. minFragmentOccurrences
// is the default passed to GetFragments. Pairs are computed lazily on first
// call to GetPairs.
func New(language lang.Name, entries []*fingerprint.FileEntry, warnings []string, minFragmentOccurrences int) *Report {
	return newReport(language, entries, warnings, minFragmentOccurrences, nil)
}

// NewWithPairs builds a Report whose pairs have already been computed —
// used by the detector so that cancellation during pair construction
// (pairing.AllPairsCtx) is observed before the Report is ever handed back.
func NewWithPairs(language lang.Name, entries []*fingerprint.FileEntry, warnings []string, minFragmentOccurrences int, pairs []*pairing.Pair) *Report {
	return newReport(language, entries, warnings, minFragmentOccurrences, pairs)
}

func newReport(language lang.Name, entries []*fingerprint.FileEntry, warnings []string, minFragmentOccurrences int, pairs []*pairing.Pair) *Report {
	if minFragmentOccurrences < 1 {
		minFragmentOccurrences = 1
	}
	return &Report{
		Language:               language,
		Entries:                entries,
		Warnings:               warnings,
		minFragmentOccurrences: minFragmentOccurrences,
		pairs:                  pairs,
	}
}

// GetPairs returns every pair, sorted by similarity descending. The result
// is computed once and cached.
func (r *Report) GetPairs() []*pairing.Pair {
	if r.pairs == nil {
		r.pairs = pairing.AllPairs(r.Entries)
	}
	return r.pairs
}

// GetTopPairs returns the first n pairs by similarity descending.
func (r *Report) GetTopPairs(n int) []*pairing.Pair {
	pairs := r.GetPairs()
	if n > len(pairs) {
		n = len(pairs)
	}
	if n < 0 {
		n = 0
	}
	return pairs[:n]
}

// GetSuspiciousPairs returns pairs with similarity >= threshold.
func (r *Report) GetSuspiciousPairs(threshold float64) []*pairing.Pair {
	var out []*pairing.Pair
	for _, p := range r.GetPairs() {
		if p.Similarity >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// GetFragments builds the contiguous matching fragments for pair, using
// the Report's configured minimum occurrence count.
func (r *Report) GetFragments(pair *pairing.Pair) []*pairing.Fragment {
	return pairing.BuildFragments(pair, r.minFragmentOccurrences)
}

// GetSummary computes aggregate statistics over the Report's pairs.
func (r *Report) GetSummary() Summary {
	pairs := r.GetPairs()
	s := Summary{
		TotalFiles: len(r.Entries),
		TotalPairs: len(pairs),
		Language:   r.Language,
		Warnings:   r.Warnings,
	}
	if len(pairs) == 0 {
		return s
	}
	var total float64
	for _, p := range pairs {
		total += p.Similarity
		if p.Similarity >= DefaultSuspiciousThreshold {
			s.SuspiciousPairs++
		}
	}
	s.AverageSimilarity = total / float64(len(pairs))
	s.MaxSimilarity = pairs[0].Similarity
	return s
}
