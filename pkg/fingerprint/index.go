// Package fingerprint implements the shared-fingerprint inverted index
// (C6/C7): it ingests tokenized files through a winnow filter, tracks
// per-hash occurrence lists, and derives the per-file views pairing builds
// on top of.
package fingerprint

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/cutwater-labs/mossaic/pkg/span"
	"github.com/cutwater-labs/mossaic/pkg/tokenhash"
	"github.com/cutwater-labs/mossaic/pkg/winnow"
)

// FileEntry is the per-file view derived by the index after a build: the
// file's selected fingerprints in emission order, and the sets of shared
// and ignored SharedFingerprints it participates in.
type FileEntry struct {
	File    *TokenizedFile
	Kgrams  []winnow.Fingerprint
	Shared  []*SharedFingerprint
	Ignored []*SharedFingerprint
}

// Index is the central inverted fingerprint store. It is not safe for
// concurrent mutation: all ingest (AddFiles, AddIgnoredFile) must complete,
// and Finalize must run, before any read (Entries, or pkg/pairing.AllPairs
// over those entries) is issued.
type Index struct {
	k, w      int
	kgramData bool

	maxFingerprintFileCount int
	hasMaxCutoff            bool

	byHash map[uint32]*SharedFingerprint
	// seenByFile tracks, per file id, every SharedFingerprint the file
	// produced an occurrence for, in first-seen order — the candidate set
	// FileEntry.Shared/Ignored are filtered from.
	seenByFile map[int64][]*SharedFingerprint

	entries     []*FileEntry
	entriesByID map[int64]*FileEntry
}

// New builds an empty Index for k-gram size k and window size w. If
// kgramData is true, retained fingerprints carry their literal token
// slices. k and w must be positive.
func New(k, w int, kgramData bool) (*Index, error) {
	if k <= 0 {
		return nil, fmt.Errorf("fingerprint: invalid configuration: k must be positive, got %d", k)
	}
	if w <= 0 {
		return nil, fmt.Errorf("fingerprint: invalid configuration: w must be positive, got %d", w)
	}
	return &Index{
		k:           k,
		w:           w,
		kgramData:   kgramData,
		byHash:      make(map[uint32]*SharedFingerprint),
		seenByFile:  make(map[int64][]*SharedFingerprint),
		entriesByID: make(map[int64]*FileEntry),
	}, nil
}

// UpdateMaxFingerprintFileCount sets the global "too common" cutoff: a
// fingerprint occurring in more than n distinct files is treated as
// ignored everywhere. Must be called before AddFiles/AddIgnoredFile. A
// non-positive n disables the cutoff.
func (idx *Index) UpdateMaxFingerprintFileCount(n int) {
	idx.hasMaxCutoff = n > 0
	idx.maxFingerprintFileCount = n
}

func (idx *Index) newFilter() *winnow.Filter {
	return winnow.New(idx.k, idx.w, idx.kgramData)
}

func (idx *Index) lookup(hash uint32) *SharedFingerprint {
	sf, ok := idx.byHash[hash]
	if !ok {
		sf = newSharedFingerprint(hash)
		idx.byHash[hash] = sf
	}
	return sf
}

// markSeen records sf for fileID the first time the file produces an
// occurrence of it. insert calls it right after adding that occurrence, so
// a per-file occurrence count of 1 means first seen.
func (idx *Index) markSeen(fileID int64, sf *SharedFingerprint) {
	if len(sf.occurrencesByFile[fileID]) > 1 {
		return
	}
	idx.seenByFile[fileID] = append(idx.seenByFile[fileID], sf)
}

// runFilter runs the winnow filter over file's tokens, producing the
// emitted fingerprints in emission order. This is pure CPU-bound work with
// no shared mutable state, safe to run concurrently across files.
func (idx *Index) runFilter(file *TokenizedFile) []winnow.Fingerprint {
	f := idx.newFilter()
	var out []winnow.Fingerprint
	for _, tok := range file.Tokens {
		out = append(out, f.Process(tok, tokenhash.Hash(tok))...)
	}
	return out
}

// AddFiles ingests a batch of tokenized files. Ingest of one file is
// O(N) in its token count. The winnow pass for each file is embarrassingly
// parallel (disjoint outputs); insertion into the shared index is
// serialized here, matching the contract that index mutation is
// single-threaded.
func (idx *Index) AddFiles(files []*TokenizedFile) {
	type winnowed struct {
		file *TokenizedFile
		fps  []winnow.Fingerprint
	}
	results := make([]winnowed, len(files))

	p := pool.New().WithMaxGoroutines(runtime.NumCPU() * 2)
	for i, file := range files {
		i, file := i, file
		p.Go(func() {
			results[i] = winnowed{file: file, fps: idx.runFilter(file)}
		})
	}
	p.Wait()

	for _, r := range results {
		idx.insert(r.file, r.fps)
	}
}

func (idx *Index) insert(file *TokenizedFile, fps []winnow.Fingerprint) {
	entry := &FileEntry{File: file, Kgrams: fps}
	for i, fp := range fps {
		sf := idx.lookup(fp.Hash)
		region := regionOf(file.Mapping, fp.Start, fp.Stop)
		sf.addOccurrence(file, Occurrence{
			File: file,
			Side: ASTRegion{Start: fp.Start, Stop: fp.Stop, Index: i, Location: region, Data: fp.Data},
		})
		idx.markSeen(file.File.ID, sf)
	}
	idx.entries = append(idx.entries, entry)
	idx.entriesByID[file.File.ID] = entry
}

// AddIgnoredFile runs the same winnow pass over an ignored (boilerplate)
// file, but records no occurrences for it: every hash it emits is simply
// flagged ignored on the corresponding SharedFingerprint.
func (idx *Index) AddIgnoredFile(file *TokenizedFile) {
	for _, fp := range idx.runFilter(file) {
		idx.lookup(fp.Hash).markIgnored()
	}
}

// regionOf merges the source regions of mapping[start..stop] inclusive.
func regionOf(mapping []span.Region, start, stop int) span.Region {
	r := mapping[start]
	for i := start + 1; i <= stop; i++ {
		r = span.Merge(r, mapping[i])
	}
	return r
}

// Finalize derives each ingested file's FileEntry.Shared/Ignored sets from
// the fingerprints it was seen to produce. Must be called after all
// AddFiles/AddIgnoredFile calls and before AllPairs.
func (idx *Index) Finalize() {
	for fileID, seen := range idx.seenByFile {
		entry, ok := idx.entriesByID[fileID]
		if !ok {
			continue
		}
		for _, sf := range seen {
			if idx.isIgnored(sf) {
				entry.Ignored = append(entry.Ignored, sf)
			} else {
				entry.Shared = append(entry.Shared, sf)
			}
		}
	}
}

func (idx *Index) isIgnored(sf *SharedFingerprint) bool {
	if sf.Ignored {
		return true
	}
	return idx.hasMaxCutoff && sf.FileCount() > idx.maxFingerprintFileCount
}

// Entries returns every FileEntry derived so far, in ingest order.
func (idx *Index) Entries() []*FileEntry {
	return idx.entries
}
