package winnow

import (
	"math/rand"
	"testing"
)

func runFilter(k, w int, tokens []string) []Fingerprint {
	f := New(k, w, true)
	var out []Fingerprint
	for _, tok := range tokens {
		out = append(out, f.Process(tok, HashToken(tok))...)
	}
	return out
}

func randomTokens(n int, alphabet int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	toks := make([]string, n)
	letters := "abcdefghijklmnopqrstuvwxyz"
	for i := range toks {
		toks[i] = string(letters[rng.Intn(alphabet)])
	}
	return toks
}

// kgramHashes independently computes the rolling hash for every k-gram in
// tokens, for comparison against the filter's selected subsequence.
func kgramHashes(k int, tokens []string) []uint64 {
	n := len(tokens) - k + 1
	if n <= 0 {
		return nil
	}
	hashes := make([]uint64, n)
	for i := 0; i < n; i++ {
		toks := make([]uint32, k)
		for j := 0; j < k; j++ {
			toks[j] = HashToken(tokens[i+j])
		}
		hashes[i] = hashKgramDirect(toks)
	}
	return hashes
}

func hashKgramDirect(toks []uint32) uint64 {
	const m = 33_554_393
	const b = 4_194_301
	var h uint64
	for _, t := range toks {
		h = (h*b + uint64(t)) % m
	}
	return h
}

func TestWinnowCoverage(t *testing.T) {
	k, w := 5, 4
	tokens := randomTokens(60, 6, 42)
	fps := runFilter(k, w, tokens)
	all := kgramHashes(k, tokens)

	selected := make(map[int]bool)
	for _, fp := range fps {
		selected[fp.Start] = true
	}

	for winStart := 0; winStart+w <= len(all); winStart++ {
		found := false
		for j := winStart; j < winStart+w; j++ {
			if selected[j] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("window starting at k-gram %d has no selected fingerprint", winStart)
		}
	}
}

func TestWinnowLocality(t *testing.T) {
	k, w := 4, 3
	shared := randomTokens(30, 8, 7)

	left := append(append([]string{}, randomTokens(5, 8, 1)...), shared...)
	right := append(append([]string{}, randomTokens(5, 8, 2)...), shared...)

	leftFps := runFilter(k, w, left)
	rightFps := runFilter(k, w, right)

	offset := len(left) - len(shared)
	minGap := k + w - 1
	substrStart := offset

	leftByStart := map[int]Fingerprint{}
	for _, fp := range leftFps {
		leftByStart[fp.Start] = fp
	}
	rightByStart := map[int]Fingerprint{}
	for _, fp := range rightFps {
		rightByStart[fp.Start-offset] = fp
	}

	for start := substrStart + minGap; start <= len(left)-k; start++ {
		l, lok := leftByStart[start]
		r, rok := rightByStart[start-offset]
		if lok != rok {
			t.Fatalf("disagreement on selection at start %d: left=%v right=%v", start, lok, rok)
		}
		if lok && l.Hash != r.Hash {
			t.Fatalf("hash mismatch at start %d: %d vs %d", start, l.Hash, r.Hash)
		}
	}
}

func TestWinnowNoEmissionsBelowMinimumLength(t *testing.T) {
	k, w := 10, 5
	tokens := randomTokens(k+w-3, 4, 9)
	fps := runFilter(k, w, tokens)
	if len(fps) != 0 {
		t.Fatalf("expected no fingerprints for short input, got %d", len(fps))
	}
}

func TestWinnowTieBreakPrefersRightmost(t *testing.T) {
	// Identical k-gram hashes within one window: rightmost must win.
	k, w := 1, 3
	tokens := []string{"a", "a", "a"}
	fps := runFilter(k, w, tokens)
	if len(fps) == 0 {
		t.Fatalf("expected at least one fingerprint")
	}
	last := fps[len(fps)-1]
	if last.Start != 2 {
		t.Fatalf("expected rightmost tie-break to select index 2, got %d", last.Start)
	}
}

func TestWinnowDataReconstruction(t *testing.T) {
	k, w := 3, 2
	tokens := []string{"a", "b", "c", "d", "e"}
	fps := runFilter(k, w, tokens)
	for _, fp := range fps {
		if fp.Data == nil {
			continue
		}
		if len(fp.Data) != k {
			t.Fatalf("expected %d tokens, got %d", k, len(fp.Data))
		}
		for i, tok := range fp.Data {
			if tok != tokens[fp.Start+i] {
				t.Fatalf("data mismatch at fingerprint start %d: %v", fp.Start, fp.Data)
			}
		}
	}
}
