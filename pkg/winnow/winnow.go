// Package winnow implements the winnowing fingerprint-selection algorithm:
// from a stream of k-gram rolling hashes, it selects a deterministic
// subsequence such that every window of w consecutive k-grams has at least
// one selected hash, preferring the rightmost minimum.
package winnow

import (
	"math"

	"github.com/cutwater-labs/mossaic/pkg/rollinghash"
	"github.com/cutwater-labs/mossaic/pkg/tokenhash"
)

const sentinel = uint64(math.MaxUint64)

// Filter is a winnow filter over a token stream. The zero value is not
// usable; construct with New.
type Filter struct {
	k, w      int
	kgramData bool

	roller *rollinghash.Roller

	buffer    []uint64
	bufferPos int
	minPos    int

	filePos int

	tokens    []string // trailing raw tokens, up to w+k-1 long
	maxTokens int

	pending []Fingerprint // selections held back until the first full window
}

// New builds a Filter for k-gram size k and window size w. If kgramData is
// true, emitted Fingerprints carry their literal k source tokens.
func New(k, w int, kgramData bool) *Filter {
	if k <= 0 {
		panic("winnow: k must be positive")
	}
	if w <= 0 {
		panic("winnow: w must be positive")
	}
	buf := make([]uint64, w)
	for i := range buf {
		buf[i] = sentinel
	}
	return &Filter{
		k:         k,
		w:         w,
		kgramData: kgramData,
		roller:    rollinghash.New(k),
		buffer:    buf,
		bufferPos: -1,
		minPos:    0,
		filePos:   -k,
		maxTokens: w + k - 1,
	}
}

// Process feeds one token (its literal string and hash) and returns the
// Fingerprints emitted as a result, in emission order. Nothing is emitted
// until the first full window of w k-grams (k+w-1 tokens) has been seen;
// the call that completes it returns every selection made so far, and each
// later call returns 0 or 1 entries.
func (f *Filter) Process(token string, hash uint32) []Fingerprint {
	f.filePos++
	f.pushToken(token)

	if f.filePos < 0 {
		// Warm-up: advance the rolling hash state but do not emit.
		f.roller.Next(hash)
		return nil
	}

	h := f.roller.Next(hash)
	f.bufferPos = (f.bufferPos + 1) % f.w
	f.buffer[f.bufferPos] = h

	var out []Fingerprint
	if f.minPos == f.bufferPos {
		f.rescan()
		out = []Fingerprint{f.emit()}
	} else if f.buffer[f.bufferPos] <= f.buffer[f.minPos] {
		f.minPos = f.bufferPos
		out = []Fingerprint{f.emit()}
	}
	if f.filePos < f.w-1 {
		// No full window yet: an input that never completes one emits nothing.
		f.pending = append(f.pending, out...)
		return nil
	}
	if f.pending != nil {
		out = append(f.pending, out...)
		f.pending = nil
	}
	return out
}

// rescan picks the new minimum after the previous one fell out of the
// window. The value just written at bufferPos is the starting candidate;
// the other w-1 positions are then visited from oldest to newest, and any
// with a hash <= the current candidate replaces it, so among equal values
// the newest of those w-1 positions wins over bufferPos.
func (f *Filter) rescan() {
	best := f.bufferPos
	for step := 1; step < f.w; step++ {
		pos := (f.bufferPos + step) % f.w
		if f.buffer[pos] <= f.buffer[best] {
			best = pos
		}
	}
	f.minPos = best
}

// emit constructs the Fingerprint for the current minPos.
func (f *Filter) emit() Fingerprint {
	delta := (f.minPos - f.bufferPos) % f.w
	if delta > 0 {
		delta -= f.w
	}
	start := f.filePos + delta
	stop := start + f.k - 1

	fp := Fingerprint{
		Hash:  uint32(f.buffer[f.minPos]),
		Start: start,
		Stop:  stop,
	}
	if f.kgramData {
		fp.Data = f.sliceTokens(stop)
	}
	return fp
}

// sliceTokens returns the k raw tokens ending at absolute token index stop,
// where stop <= f.filePos, drawn from the trailing token window.
func (f *Filter) sliceTokens(stop int) []string {
	n := len(f.tokens)
	end := n - 1 - (f.filePos - stop)
	start := end - f.k + 1
	if start < 0 || end >= n {
		return nil
	}
	out := make([]string, f.k)
	copy(out, f.tokens[start:end+1])
	return out
}

func (f *Filter) pushToken(token string) {
	f.tokens = append(f.tokens, token)
	if len(f.tokens) > f.maxTokens {
		f.tokens = f.tokens[len(f.tokens)-f.maxTokens:]
	}
}

// HashToken is a convenience wrapper applying pkg/tokenhash to a token
// string, for callers that only have raw token strings on hand.
func HashToken(token string) uint32 {
	return tokenhash.Hash(token)
}
