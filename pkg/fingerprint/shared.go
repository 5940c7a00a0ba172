package fingerprint

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cutwater-labs/mossaic/pkg/span"
)

// ASTRegion is one appearance of a fingerprint within a specific file: the
// k-gram's token-index range, its ordinal emission index within that
// file's winnow output, its source Region, and (if kgram data retention is
// enabled) the literal tokens it spans.
type ASTRegion struct {
	Start    int
	Stop     int
	Index    int
	Location span.Region
	Data     []string
}

// Occurrence is one appearance of a SharedFingerprint in a specific file.
type Occurrence struct {
	File *TokenizedFile
	Side ASTRegion
}

// SharedFingerprint is the global object for one distinct fingerprint hash
// observed across the corpus. Mutation is confined to the FingerprintIndex
// during ingest; everything else holds a non-owning reference.
type SharedFingerprint struct {
	Hash uint32

	// occurrencesByFile holds, per File.id, the occurrence list in emission
	// order. Keys are unique; file ids observed are also tracked in
	// fileIDs, an O(1)-cardinality bitmap used by fileCount so that the
	// "too common" cutoff check does not need to walk the map on every
	// call.
	occurrencesByFile map[int64][]Occurrence
	fileIDs           *roaring.Bitmap

	Ignored bool
}

func newSharedFingerprint(hash uint32) *SharedFingerprint {
	return &SharedFingerprint{
		Hash:              hash,
		occurrencesByFile: make(map[int64][]Occurrence),
		fileIDs:           roaring.New(),
	}
}

// OccurrencesOf returns the occurrence list for file, or nil if the
// fingerprint does not occur in it.
func (sf *SharedFingerprint) OccurrencesOf(file *TokenizedFile) []Occurrence {
	return sf.occurrencesByFile[file.File.ID]
}

// FileCount returns the number of distinct files with at least one
// occurrence of this fingerprint, via an O(1) bitmap cardinality read.
func (sf *SharedFingerprint) FileCount() int {
	return int(sf.fileIDs.GetCardinality())
}

func (sf *SharedFingerprint) addOccurrence(file *TokenizedFile, occ Occurrence) {
	id := file.File.ID
	sf.occurrencesByFile[id] = append(sf.occurrencesByFile[id], occ)
	sf.fileIDs.Add(uint32(id))
}

// markIgnored sets Ignored; the flag is monotonic and never cleared.
func (sf *SharedFingerprint) markIgnored() {
	sf.Ignored = true
}
