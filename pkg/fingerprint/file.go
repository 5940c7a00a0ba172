package fingerprint

import (
	"sync/atomic"

	"github.com/cutwater-labs/mossaic/pkg/lang"
	"github.com/cutwater-labs/mossaic/pkg/span"
)

var fileIDCounter int64

// NextFileID returns the next value from the process-wide monotonic file-id
// counter shared by every File constructed during the process lifetime.
func NextFileID() int64 {
	return atomic.AddInt64(&fileIDCounter, 1)
}

// File is a caller-supplied source file: a stable id, its path, its raw
// content, and optional metadata (e.g. a student id or name).
type File struct {
	ID       int64
	Path     string
	Content  string
	Metadata any
}

// LineCount returns the number of lines in Content, counting a trailing
// unterminated line.
func (f *File) LineCount() int {
	if f.Content == "" {
		return 0
	}
	n := 1
	for _, c := range f.Content {
		if c == '\n' {
			n++
		}
	}
	return n
}

// TokenizedFile wraps a File with its tokenization: parallel Tokens and
// Mapping arrays of equal length, Mapping[i] being the source Region of
// Tokens[i].
type TokenizedFile struct {
	File    *File
	Tokens  []string
	Mapping []span.Region
}

// NewTokenizedFile adapts a lang.TokenizedFile (produced by a Tokenizer)
// into a TokenizedFile bound to a specific File.
func NewTokenizedFile(file *File, tf *lang.TokenizedFile) *TokenizedFile {
	return &TokenizedFile{
		File:    file,
		Tokens:  tf.Tokens,
		Mapping: tf.Mapping,
	}
}
