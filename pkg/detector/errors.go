package detector

import "fmt"

// Kind classifies a fatal detector error.
type Kind string

const (
	// KindUnsupportedLanguage means no registered language matched the
	// requested or auto-detected name.
	KindUnsupportedLanguage Kind = "unsupported_language"
	// KindInsufficientFiles means fewer than two files survived language
	// filtering, or fewer than two survived tokenization.
	KindInsufficientFiles Kind = "insufficient_files"
	// KindInvalidConfiguration means k <= 0, w <= 0, a negative
	// fingerprint count cutoff, or a percentage cutoff outside [0,1].
	KindInvalidConfiguration Kind = "invalid_configuration"
	// KindCancelled means the caller's context was cancelled mid-analyze.
	KindCancelled Kind = "cancelled"
)

// Error is a fatal detector failure: one of the Kind values above, paired
// with an explanatory message. Tokenization failures are not represented
// here — they are non-fatal and collected into Report.Warnings instead.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("detector: %s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
