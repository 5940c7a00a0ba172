package pairing

import (
	"fmt"
	"sort"

	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
	"github.com/cutwater-labs/mossaic/pkg/span"
)

// PairedOccurrence is a transient object built during fragment assembly:
// one shared fingerprint's occurrence on each side.
type PairedOccurrence struct {
	Left, Right fingerprint.ASTRegion
	Fingerprint *fingerprint.SharedFingerprint
}

// Fragment is a maximal contiguous run of matched occurrences between two
// files. Immutable once returned from BuildFragments.
type Fragment struct {
	Pairs                   []PairedOccurrence
	LeftKgrams, RightKgrams span.Range
	LeftSelection           span.Region
	RightSelection          span.Region
	MergedData              []string

	// mergedLeftStop tracks where MergedData reconstruction left off. It
	// is assigned inconsistent units across the two extension paths (see
	// extendWithFragment) — a carried-over quirk of the merge affordance,
	// not load-bearing for similarity or containment.
	mergedLeftStop int
	dataEnabled    bool
}

func newFragment(po PairedOccurrence) *Fragment {
	f := &Fragment{
		Pairs:          []PairedOccurrence{po},
		LeftKgrams:     span.NewRange(po.Left.Index, po.Left.Index),
		RightKgrams:    span.NewRange(po.Right.Index, po.Right.Index),
		LeftSelection:  po.Left.Location,
		RightSelection: po.Right.Location,
		dataEnabled:    po.Left.Data != nil,
	}
	if f.dataEnabled {
		f.MergedData = append([]string{}, po.Left.Data...)
		f.mergedLeftStop = po.Left.Stop
	}
	return f
}

// extendWith appends a single PairedOccurrence whose index follows this
// fragment's trailing occurrence by exactly one on both sides.
func (f *Fragment) extendWith(po PairedOccurrence) {
	invariant(f.LeftKgrams.To+1 == po.Left.Index && f.RightKgrams.To+1 == po.Right.Index,
		fmt.Sprintf("extendWith called on non-adjacent occurrence: frag=%+v po=%+v", f.LeftKgrams, po.Left.Index))

	f.Pairs = append(f.Pairs, po)
	f.LeftKgrams = span.MergeRange(f.LeftKgrams, span.NewRange(po.Left.Index, po.Left.Index))
	f.RightKgrams = span.MergeRange(f.RightKgrams, span.NewRange(po.Right.Index, po.Right.Index))
	f.LeftSelection = span.Merge(f.LeftSelection, po.Left.Location)
	f.RightSelection = span.Merge(f.RightSelection, po.Right.Location)

	if f.dataEnabled && po.Left.Data != nil {
		f.mergeTokenData(po.Left.Start, po.Left.Stop, po.Left.Data)
	}
}

// extendWithFragment appends every pair of another Fragment that
// immediately follows this one. Per the source behavior being preserved
// here, the data-reconstruction gap math uses other.LeftKgrams.From (a
// k-gram ordinal, not a token position) rather than the seed occurrence's
// token Start — an inconsistency with extendWith's token-based math that
// the originating algorithm does not resolve. It is left as-is: it can
// only affect the display-only MergedData slice, never Pairs, LeftKgrams,
// RightKgrams, or Similarity.
func (f *Fragment) extendWithFragment(other *Fragment) {
	invariant(f.LeftKgrams.To+1 == other.LeftKgrams.From && f.RightKgrams.To+1 == other.RightKgrams.From,
		"extendWithFragment called on non-adjacent fragment")

	f.Pairs = append(f.Pairs, other.Pairs...)
	f.LeftKgrams = span.MergeRange(f.LeftKgrams, other.LeftKgrams)
	f.RightKgrams = span.MergeRange(f.RightKgrams, other.RightKgrams)
	f.LeftSelection = span.Merge(f.LeftSelection, other.LeftSelection)
	f.RightSelection = span.Merge(f.RightSelection, other.RightSelection)

	if f.dataEnabled && other.MergedData != nil {
		f.mergeTokenData(other.LeftKgrams.From, other.LeftKgrams.To, other.MergedData)
	}
}

// mergeTokenData concatenates newData onto MergedData, inserting "?"
// placeholders for a gap between mergedLeftStop and newStart, or skipping
// the overlapping prefix of newData if newStart falls within what has
// already been recorded.
func (f *Fragment) mergeTokenData(newStart, newStop int, newData []string) {
	gap := newStart - f.mergedLeftStop - 1
	switch {
	case gap > 0:
		for i := 0; i < gap; i++ {
			f.MergedData = append(f.MergedData, "?")
		}
		f.MergedData = append(f.MergedData, newData...)
	case gap == 0:
		f.MergedData = append(f.MergedData, newData...)
	default:
		overlap := -gap
		if overlap < len(newData) {
			f.MergedData = append(f.MergedData, newData[overlap:]...)
		}
	}
	f.mergedLeftStop = newStop
}

// Length returns the number of paired occurrences making up the fragment.
func (f *Fragment) Length() int {
	return len(f.Pairs)
}

func fragmentKey(left, right int) string {
	return fmt.Sprintf("%d|%d", left, right)
}

// BuildFragments reconstructs the contiguous matching fragments between
// p.LeftEntry and p.RightEntry from the pair's shared fingerprints,
// squashes any fragment fully contained within another, and drops
// fragments shorter than minOccurrences. The result is sorted by
// LeftKgrams ascending.
func BuildFragments(p *Pair, minOccurrences int) []*Fragment {
	if minOccurrences < 1 {
		minOccurrences = 1
	}

	fragmentStart := make(map[string]*Fragment)
	fragmentEnd := make(map[string]*Fragment)

	addPair := func(po PairedOccurrence) {
		startKey := fragmentKey(po.Left.Index, po.Right.Index)
		endKey := fragmentKey(po.Left.Index+1, po.Right.Index+1)

		var frag *Fragment
		if f, ok := fragmentEnd[startKey]; ok {
			f.extendWith(po)
			delete(fragmentEnd, startKey)
			frag = f
		} else {
			frag = newFragment(po)
			fragmentStart[startKey] = frag
		}

		if next, ok := fragmentStart[endKey]; ok {
			frag.extendWithFragment(next)
			delete(fragmentStart, endKey)
			newEndKey := fragmentKey(frag.LeftKgrams.To+1, frag.RightKgrams.To+1)
			fragmentEnd[newEndKey] = frag
		} else {
			fragmentEnd[endKey] = frag
		}
	}

	for _, sf := range p.Shared {
		leftOccs := sf.OccurrencesOf(p.LeftEntry.File)
		rightOccs := sf.OccurrencesOf(p.RightEntry.File)
		for _, l := range leftOccs {
			for _, r := range rightOccs {
				addPair(PairedOccurrence{Left: l.Side, Right: r.Side, Fingerprint: sf})
			}
		}
	}

	fragments := make([]*Fragment, 0, len(fragmentStart))
	for _, f := range fragmentStart {
		fragments = append(fragments, f)
	}

	fragments = squash(fragments)

	filtered := fragments[:0]
	for _, f := range fragments {
		if f.Length() >= minOccurrences {
			filtered = append(filtered, f)
		}
	}
	fragments = filtered

	sort.Slice(fragments, func(i, j int) bool {
		return span.CompareRange(fragments[i].LeftKgrams, fragments[j].LeftKgrams) < 0
	})
	return fragments
}

// squash removes any Fragment strictly contained (on both sides) within
// another. Ties (identical ranges from distinct Fragment objects) keep the
// first-encountered one.
func squash(fragments []*Fragment) []*Fragment {
	keep := make([]bool, len(fragments))
	for i := range keep {
		keep[i] = true
	}
	for i, f := range fragments {
		if !keep[i] {
			continue
		}
		for j, g := range fragments {
			if i == j || !keep[j] {
				continue
			}
			fContainsG := f.LeftKgrams.Contains(g.LeftKgrams) && f.RightKgrams.Contains(g.RightKgrams)
			gContainsF := g.LeftKgrams.Contains(f.LeftKgrams) && g.RightKgrams.Contains(f.RightKgrams)
			switch {
			case fContainsG && !gContainsF:
				keep[j] = false
			case fContainsG && gContainsF && i < j:
				keep[j] = false
			}
		}
	}
	out := make([]*Fragment, 0, len(fragments))
	for i, f := range fragments {
		if keep[i] {
			out = append(out, f)
		}
	}
	return out
}
