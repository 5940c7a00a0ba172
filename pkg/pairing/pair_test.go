package pairing

import (
	"testing"

	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
	"github.com/cutwater-labs/mossaic/pkg/span"
)

func tokenizedFile(id int64, tokens []string) *fingerprint.TokenizedFile {
	mapping := make([]span.Region, len(tokens))
	for i := range tokens {
		mapping[i] = span.NewRegion(i, 0, i, len(tokens[i])+1)
	}
	return &fingerprint.TokenizedFile{
		File:    &fingerprint.File{ID: id, Path: "f.txt"},
		Tokens:  tokens,
		Mapping: mapping,
	}
}

func buildIndex(t *testing.T, k, w int, kgramData bool, files ...*fingerprint.TokenizedFile) *fingerprint.Index {
	t.Helper()
	idx, err := fingerprint.New(k, w, kgramData)
	if err != nil {
		t.Fatal(err)
	}
	idx.AddFiles(files)
	idx.Finalize()
	return idx
}

func entryFor(idx *fingerprint.Index, id int64) *fingerprint.FileEntry {
	for _, e := range idx.Entries() {
		if e.File.File.ID == id {
			return e
		}
	}
	return nil
}

func identicalTokens(n int) []string {
	words := []string{"class", "method", "if", "return", "identifier", "literal", "block", "call"}
	out := make([]string, n)
	for i := range out {
		out[i] = words[i%len(words)]
	}
	return out
}

func TestPairIdentity(t *testing.T) {
	toks := identicalTokens(40)
	a := tokenizedFile(1, toks)
	b := tokenizedFile(2, toks)
	idx := buildIndex(t, 5, 4, false, a, b)

	p := New(entryFor(idx, 1), entryFor(idx, 2))
	if p.Similarity != 1.0 {
		t.Fatalf("expected similarity 1.0, got %f", p.Similarity)
	}
}

func TestPairDisjoint(t *testing.T) {
	a := tokenizedFile(1, []string{"print", "string_literal"})
	b := tokenizedFile(2, []string{"identifier", "integer", "plus", "integer"})
	idx := buildIndex(t, 3, 3, false, a, b)

	p := New(entryFor(idx, 1), entryFor(idx, 2))
	if p.Similarity != 0 {
		t.Fatalf("expected similarity 0, got %f", p.Similarity)
	}
	if p.Longest != 0 {
		t.Fatalf("expected longest 0, got %d", p.Longest)
	}
	if frags := BuildFragments(p, 1); len(frags) != 0 {
		t.Fatalf("expected no fragments, got %d", len(frags))
	}
}

func TestPairSymmetry(t *testing.T) {
	toks := identicalTokens(30)
	a := tokenizedFile(1, toks)
	b := tokenizedFile(2, append(append([]string{}, toks...), "extra", "tail", "tokens"))
	idx := buildIndex(t, 4, 3, false, a, b)

	p1 := New(entryFor(idx, 1), entryFor(idx, 2))
	p2 := New(entryFor(idx, 2), entryFor(idx, 1))

	if p1.Similarity != p2.Similarity {
		t.Fatalf("similarity not symmetric: %f vs %f", p1.Similarity, p2.Similarity)
	}
	if p1.Longest != p2.Longest {
		t.Fatalf("longest not symmetric: %d vs %d", p1.Longest, p2.Longest)
	}
	if p1.Similarity < 0 || p1.Similarity > 1 {
		t.Fatalf("similarity out of range: %f", p1.Similarity)
	}
}

func TestFragmentContiguity(t *testing.T) {
	toks := identicalTokens(50)
	a := tokenizedFile(1, toks)
	b := tokenizedFile(2, toks)
	idx := buildIndex(t, 5, 4, false, a, b)

	p := New(entryFor(idx, 1), entryFor(idx, 2))
	frags := BuildFragments(p, 1)
	if len(frags) == 0 {
		t.Fatal("expected at least one fragment")
	}
	for _, f := range frags {
		for i := 1; i < len(f.Pairs); i++ {
			if f.Pairs[i].Left.Index != f.Pairs[i-1].Left.Index+1 {
				t.Fatalf("non-contiguous left indices: %d then %d", f.Pairs[i-1].Left.Index, f.Pairs[i].Left.Index)
			}
			if f.Pairs[i].Right.Index != f.Pairs[i-1].Right.Index+1 {
				t.Fatalf("non-contiguous right indices: %d then %d", f.Pairs[i-1].Right.Index, f.Pairs[i].Right.Index)
			}
		}
	}
}

func TestFragmentContainmentElimination(t *testing.T) {
	toks := identicalTokens(60)
	a := tokenizedFile(1, toks)
	b := tokenizedFile(2, toks)
	idx := buildIndex(t, 4, 5, false, a, b)

	p := New(entryFor(idx, 1), entryFor(idx, 2))
	frags := BuildFragments(p, 1)

	for i, f := range frags {
		for j, g := range frags {
			if i == j {
				continue
			}
			if f.LeftKgrams.Contains(g.LeftKgrams) && f.RightKgrams.Contains(g.RightKgrams) {
				t.Fatalf("fragment %d contains fragment %d after squash", i, j)
			}
		}
	}
}

func TestBoilerplateLowersStrictSimilarity(t *testing.T) {
	header := identicalTokens(30)
	uniqueA := []string{"alpha1", "alpha2", "alpha3", "alpha4", "alpha5"}
	uniqueB := []string{"beta1", "beta2", "beta3", "beta4", "beta5"}

	a := tokenizedFile(1, append(append([]string{}, header...), uniqueA...))
	b := tokenizedFile(2, append(append([]string{}, header...), uniqueB...))
	boilerplate := tokenizedFile(99, header)

	idxNoBoiler, err := fingerprint.New(5, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	idxNoBoiler.AddFiles([]*fingerprint.TokenizedFile{a, b})
	idxNoBoiler.Finalize()
	pNoBoiler := New(entryFor(idxNoBoiler, 1), entryFor(idxNoBoiler, 2))

	idxBoiler, err := fingerprint.New(5, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	idxBoiler.AddIgnoredFile(boilerplate)
	idxBoiler.AddFiles([]*fingerprint.TokenizedFile{a, b})
	idxBoiler.Finalize()
	pBoiler := New(entryFor(idxBoiler, 1), entryFor(idxBoiler, 2))

	if pBoiler.Similarity >= pNoBoiler.Similarity {
		t.Fatalf("expected boilerplate to lower similarity: with=%f without=%f", pBoiler.Similarity, pNoBoiler.Similarity)
	}
}
