// Package cache memoizes tokenization by file content within a single
// detector run: plagiarism batches routinely contain byte-identical
// resubmissions, and tokenizing the same content twice is wasted work.
//
// This is a pure performance optimization. Identical content always
// produces identical tokens and regions, so memoizing by content digest
// never changes a Pair's similarity, longest, or Fragment output — it only
// avoids recomputing it.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/cutwater-labs/mossaic/pkg/lang"
)

// key is a two-level content fingerprint: a fast 64-bit xxhash pre-check
// guards the lookup, and a full blake3 digest disambiguates any xxhash
// collision before trusting a cache hit.
type key struct {
	quick uint64
	full  [32]byte
}

func keyFor(content string) key {
	b := []byte(content)
	return key{
		quick: xxhash.Sum64(b),
		full:  blake3.Sum256(b),
	}
}

// TokenizerCache memoizes lang.Tokenizer.Tokenize results by file content.
// Safe for concurrent use. The zero value is not usable; construct with
// New.
type TokenizerCache struct {
	mu      sync.Mutex
	entries map[key]*lang.TokenizedFile
}

// New builds an empty TokenizerCache.
func New() *TokenizerCache {
	return &TokenizerCache{entries: make(map[key]*lang.TokenizedFile)}
}

// Tokenize returns the cached TokenizedFile for content if one was already
// produced by an identical call (path and opts are not part of the cache
// key: two files with the same content tokenize identically regardless of
// path, since tokenization has no access to the path beyond error
// reporting). On a miss it calls tok.Tokenize and memoizes the result.
func (c *TokenizerCache) Tokenize(tok lang.Tokenizer, path, content string, opts lang.Options) (*lang.TokenizedFile, error) {
	k := keyFor(content)

	c.mu.Lock()
	if cached, ok := c.entries[k]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	tf, err := tok.Tokenize(path, content, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[k] = tf
	c.mu.Unlock()
	return tf, nil
}

// Len returns the number of distinct contents memoized so far.
func (c *TokenizerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wrap returns a lang.Tokenizer that memoizes tok's results through c.
func (c *TokenizerCache) Wrap(tok lang.Tokenizer) lang.Tokenizer {
	return cachingTokenizer{cache: c, inner: tok}
}

type cachingTokenizer struct {
	cache *TokenizerCache
	inner lang.Tokenizer
}

func (c cachingTokenizer) Tokenize(path, content string, opts lang.Options) (*lang.TokenizedFile, error) {
	return c.cache.Tokenize(c.inner, path, content, opts)
}
