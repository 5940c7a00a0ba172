// Package pairing computes the derived per-(file,file) view of the
// fingerprint index: shared fingerprints, similarity, the longest common
// run of matched k-grams, and the contiguous matching Fragments between
// two files.
package pairing

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
)

var pairIDCounter int64

// Pair is a derived, non-owning view over two FileEntries. It is not
// stored by the index; construct with New or via AllPairs.
type Pair struct {
	ID int64

	LeftEntry, RightEntry *fingerprint.FileEntry

	Shared []*fingerprint.SharedFingerprint

	LeftCovered, RightCovered int
	LeftTotal, RightTotal     int
	LeftIgnored, RightIgnored int

	Longest    int
	Similarity float64
}

// LeftFile and RightFile expose the underlying files for callers that only
// need identity, not the full FileEntry.
func (p *Pair) LeftFile() *fingerprint.TokenizedFile  { return p.LeftEntry.File }
func (p *Pair) RightFile() *fingerprint.TokenizedFile { return p.RightEntry.File }

// New constructs a Pair from two FileEntries, computing shared fingerprints,
// coverage, similarity, and the longest common substring.
func New(left, right *fingerprint.FileEntry) *Pair {
	p := &Pair{
		ID:         atomic.AddInt64(&pairIDCounter, 1),
		LeftEntry:  left,
		RightEntry: right,
		LeftTotal:  len(left.Kgrams),
		RightTotal: len(right.Kgrams),
	}
	p.Shared = intersect(left.Shared, right.Shared)
	p.LeftIgnored = len(left.Ignored)
	p.RightIgnored = len(right.Ignored)

	for _, sf := range p.Shared {
		p.LeftCovered += len(sf.OccurrencesOf(left.File))
		p.RightCovered += len(sf.OccurrencesOf(right.File))
	}

	leftSeq := sortedKgrams(p.Shared, left)
	rightSeq := sortedKgrams(p.Shared, right)
	p.Longest = longestCommonSubstring(leftSeq, rightSeq)

	denom := p.LeftTotal + p.RightTotal - p.LeftIgnored - p.RightIgnored
	if denom > 0 {
		p.Similarity = float64(p.LeftCovered+p.RightCovered) / float64(denom)
	}
	return p
}

// sortedKgrams collects every occurrence of the shared fingerprints in
// file, sorted ascending by emission index.
func sortedKgrams(shared []*fingerprint.SharedFingerprint, entry *fingerprint.FileEntry) []kgram {
	type indexed struct {
		hash  uint32
		index int
	}
	var all []indexed
	for _, sf := range shared {
		for _, occ := range sf.OccurrencesOf(entry.File) {
			all = append(all, indexed{hash: sf.Hash, index: occ.Side.Index})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })
	out := make([]kgram, len(all))
	for i, e := range all {
		out[i] = kgram{hash: e.hash, pos: i}
	}
	return out
}

// intersect returns the elements common to both a and b, iterating the
// smaller set, identified by SharedFingerprint pointer equality (each
// distinct hash has exactly one SharedFingerprint instance for the
// lifetime of an Index).
func intersect(a, b []*fingerprint.SharedFingerprint) []*fingerprint.SharedFingerprint {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	set := make(map[*fingerprint.SharedFingerprint]bool, len(big))
	for _, sf := range big {
		set[sf] = true
	}
	var out []*fingerprint.SharedFingerprint
	for _, sf := range small {
		if set[sf] {
			out = append(out, sf)
		}
	}
	return out
}

// AllPairs enumerates every unordered pair of distinct FileEntries,
// returning Pairs sorted by similarity descending, tie-broken by longest
// descending, then by (leftFile.id, rightFile.id) ascending.
func AllPairs(entries []*fingerprint.FileEntry) []*Pair {
	pairs, err := AllPairsCtx(context.Background(), entries)
	if err != nil {
		// context.Background() never cancels; unreachable.
		panic(err)
	}
	return pairs
}

// AllPairsCtx is AllPairs with cooperative cancellation checked between
// each pair's construction, per the detector's cancellation contract.
func AllPairsCtx(ctx context.Context, entries []*fingerprint.FileEntry) ([]*Pair, error) {
	var pairs []*Pair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			left, right := entries[i], entries[j]
			if left.File.File.ID > right.File.File.ID {
				left, right = right, left
			}
			pairs = append(pairs, New(left, right))
		}
	}
	sortPairs(pairs)
	return pairs, nil
}

func sortPairs(pairs []*Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Longest != b.Longest {
			return a.Longest > b.Longest
		}
		if a.LeftFile().File.ID != b.LeftFile().File.ID {
			return a.LeftFile().File.ID < b.LeftFile().File.ID
		}
		return a.RightFile().File.ID < b.RightFile().File.ID
	})
}
