// Package lang defines the tokenizer contract consumed by the fingerprint
// pipeline: a deterministic mapping from file content to a sequence of
// (token, source region) pairs, plus language registration and detection.
package lang

import (
	"fmt"
	"strings"

	"github.com/cutwater-labs/mossaic/pkg/span"
)

// Name identifies a supported programming language.
type Name string

const (
	Java   Name = "java"
	Python Name = "python"
	C      Name = "c"
)

// TokenizedFile wraps tokenized output with its two parallel arrays: one
// token string and one source Region per emitted token, always equal in
// length.
type TokenizedFile struct {
	Tokens  []string
	Mapping []span.Region
}

// Len returns the number of tokens.
func (t *TokenizedFile) Len() int {
	return len(t.Tokens)
}

// Options configures tokenization.
type Options struct {
	// IncludeComments controls whether comment nodes are emitted as
	// tokens. Defaults to false.
	IncludeComments bool
}

// Tokenizer produces a TokenizedFile from source content for one language.
// Implementations must be deterministic: identical content and Options
// always yield an identical TokenizedFile.
type Tokenizer interface {
	Tokenize(path string, content string, opts Options) (*TokenizedFile, error)
}

// TokenizationError reports that a specific file failed to parse. The
// detector collects these as warnings and excludes the offending file
// rather than aborting the whole analysis.
type TokenizationError struct {
	Path string
	Err  error
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenize %s: %v", e.Path, e.Err)
}

func (e *TokenizationError) Unwrap() error {
	return e.Err
}

// Language describes a registered language: its canonical Name, the file
// extensions that auto-detect it (lowercase, including the leading dot),
// and the Tokenizer that implements it.
type Language struct {
	Name       Name
	Extensions []string
	Tokenizer  Tokenizer
}

// Registry maps language names to their registered Language.
type Registry struct {
	byName map[Name]*Language
	order  []*Language // registration order, used to break detection ties
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[Name]*Language)}
}

// Register adds a Language to the registry. Later registrations with the
// same Name replace earlier ones.
func (r *Registry) Register(l *Language) {
	if _, exists := r.byName[l.Name]; !exists {
		r.order = append(r.order, l)
	} else {
		for i, existing := range r.order {
			if existing.Name == l.Name {
				r.order[i] = l
			}
		}
	}
	r.byName[l.Name] = l
}

// ByName looks up a registered Language by its canonical Name.
func (r *Registry) ByName(name Name) (*Language, bool) {
	l, ok := r.byName[name]
	return l, ok
}

// DetectByExtension returns the first registered Language (in registration
// order) whose extension list contains the given file's extension,
// lowercased. ext should include the leading dot, e.g. ".java".
func (r *Registry) DetectByExtension(ext string) (*Language, bool) {
	ext = strings.ToLower(ext)
	for _, l := range r.order {
		for _, e := range l.Extensions {
			if e == ext {
				return l, true
			}
		}
	}
	return nil, false
}
