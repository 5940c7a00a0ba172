package rollinghash

import (
	"math/rand"
	"testing"
)

func TestNextMatchesScratchHash(t *testing.T) {
	const k = 5
	rng := rand.New(rand.NewSource(1))
	toks := make([]uint32, 40)
	for i := range toks {
		toks[i] = uint32(rng.Intn(1000))
	}

	r := New(k)
	for i, tok := range toks {
		h := r.Next(tok)
		if i < k-1 {
			if r.Ready() {
				t.Fatalf("index %d: expected not ready before k tokens seen", i)
			}
			continue
		}
		if !r.Ready() {
			t.Fatalf("index %d: expected ready", i)
		}
		want := HashKgram(toks[i-k+1 : i+1])
		if h != want {
			t.Fatalf("index %d: got %d, want %d", i, h, want)
		}
	}
}

func TestNextBoundedByModulus(t *testing.T) {
	r := New(3)
	for i := uint32(0); i < 100; i++ {
		if h := r.Next(i * 7919); h >= M {
			t.Fatalf("hash %d exceeds modulus", h)
		}
	}
}

func TestModMaxBaseNoOverflowForLargeK(t *testing.T) {
	r := New(10000)
	for i := uint32(0); i < 10000; i++ {
		r.Next(i)
	}
	if !r.Ready() {
		t.Fatalf("expected ready after k tokens")
	}
}

func TestKAccessor(t *testing.T) {
	r := New(7)
	if r.K() != 7 {
		t.Fatalf("expected K()==7, got %d", r.K())
	}
}
