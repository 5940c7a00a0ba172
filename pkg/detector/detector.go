// Package detector is the Detector façade (C10): the single synchronous
// entry point that orchestrates tokenization and fingerprint-index ingest
// for a batch of files and yields a Report.
package detector

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/cutwater-labs/mossaic/internal/fileproc"
	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
	"github.com/cutwater-labs/mossaic/pkg/lang"
	"github.com/cutwater-labs/mossaic/pkg/pairing"
	"github.com/cutwater-labs/mossaic/pkg/report"
)

// Options configures a Detector. Zero values pick the defaults documented
// per field.
type Options struct {
	// Language, if set, is used instead of auto-detecting from the first
	// file's extension.
	Language lang.Name
	// KgramLength is the winnow k-gram size. Default 23.
	KgramLength int
	// KgramsInWindow is the winnow window size. Default 17.
	KgramsInWindow int
	// KgramData, if true, retains the literal token slice on each
	// fingerprint for display purposes.
	KgramData bool
	// IncludeComments is passed through to the tokenizer.
	IncludeComments bool
	// MaxFingerprintCount is an absolute cutoff on the number of distinct
	// files a fingerprint may appear in before it is ignored everywhere.
	// Zero means no cutoff unless MaxFingerprintPercentage is set.
	MaxFingerprintCount int
	// MaxFingerprintPercentage is a fractional cutoff (of the filtered
	// file count), used only when MaxFingerprintCount is zero. Zero means
	// no cutoff.
	MaxFingerprintPercentage float64
}

func (o Options) withDefaults() Options {
	if o.KgramLength == 0 {
		o.KgramLength = 23
	}
	if o.KgramsInWindow == 0 {
		o.KgramsInWindow = 17
	}
	return o
}

func (o Options) validate() error {
	if o.KgramLength <= 0 {
		return newError(KindInvalidConfiguration, "kgramLength must be positive, got %d", o.KgramLength)
	}
	if o.KgramsInWindow <= 0 {
		return newError(KindInvalidConfiguration, "kgramsInWindow must be positive, got %d", o.KgramsInWindow)
	}
	if o.MaxFingerprintCount < 0 {
		return newError(KindInvalidConfiguration, "maxFingerprintCount must not be negative, got %d", o.MaxFingerprintCount)
	}
	if o.MaxFingerprintPercentage < 0 || o.MaxFingerprintPercentage > 1 {
		return newError(KindInvalidConfiguration, "maxFingerprintPercentage must be in [0,1], got %f", o.MaxFingerprintPercentage)
	}
	return nil
}

// File is the external input contract: an in-memory source file. Path
// drives language detection; Content is UTF-8 source text; Info carries
// arbitrary caller metadata (e.g. a student id).
type File struct {
	Path    string
	Content string
	Info    any
}

// ProgressFunc is invoked at each tokenize-boundary suspension point
// during Analyze, with the number of files tokenized so far and the total.
type ProgressFunc func(done, total int)

// Detector orchestrates tokenization and fingerprint ingest for a batch of
// files.
type Detector struct {
	registry *lang.Registry
	opts     Options
}

// New builds a Detector using registry for language resolution. Returns an
// InvalidConfiguration error if opts fails validation.
func New(registry *lang.Registry, opts Options) (*Detector, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Detector{registry: registry, opts: opts}, nil
}

// Analyze runs the full pipeline: resolve language, filter and tokenize
// files, ingest into a fresh fingerprint index, and return a Report.
// ignoredFile, if non-nil, is tokenized and added as boilerplate: its
// fingerprints are flagged ignored but it contributes no occurrences of
// its own. progress, if non-nil, is invoked after each file is tokenized.
func (d *Detector) Analyze(ctx context.Context, files []File, ignoredFile *File, progress ProgressFunc) (*report.Report, error) {
	language, err := d.resolveLanguage(files)
	if err != nil {
		return nil, err
	}

	filtered, droppedCount := filterByLanguage(files, language)
	var warnings []string
	if droppedCount > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped %d file(s) not matching language %q", droppedCount, language.Name))
	}
	if len(filtered) < 2 {
		return nil, newError(KindInsufficientFiles, "need at least 2 files of language %q after filtering, got %d", language.Name, len(filtered))
	}

	maxFingerprintFileCount := d.effectiveCutoff(len(filtered))

	idx, err := fingerprint.New(d.opts.KgramLength, d.opts.KgramsInWindow, d.opts.KgramData)
	if err != nil {
		return nil, newError(KindInvalidConfiguration, "%v", err)
	}
	idx.UpdateMaxFingerprintFileCount(maxFingerprintFileCount)

	tokenized, tokWarnings, err := d.tokenizeAll(ctx, filtered, language, progress)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, tokWarnings...)

	if len(tokenized) < 2 {
		return nil, newError(KindInsufficientFiles, "fewer than 2 files survived tokenization, got %d", len(tokenized))
	}

	idx.AddFiles(tokenized)

	if ignoredFile != nil {
		tf, err := d.tokenizeOne(*ignoredFile, language)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ignored file %s: %v", ignoredFile.Path, err))
		} else {
			idx.AddIgnoredFile(tf)
		}
	}

	idx.Finalize()

	pairs, err := pairing.AllPairsCtx(ctx, idx.Entries())
	if err != nil {
		return nil, newError(KindCancelled, "%v", err)
	}

	return report.NewWithPairs(language.Name, idx.Entries(), warnings, 1, pairs), nil
}

func (d *Detector) resolveLanguage(files []File) (*lang.Language, error) {
	if d.opts.Language != "" {
		l, ok := d.registry.ByName(d.opts.Language)
		if !ok {
			return nil, newError(KindUnsupportedLanguage, "no tokenizer registered for language %q", d.opts.Language)
		}
		return l, nil
	}
	if len(files) == 0 {
		return nil, newError(KindUnsupportedLanguage, "no files to detect language from")
	}
	ext := strings.ToLower(filepath.Ext(files[0].Path))
	l, ok := d.registry.DetectByExtension(ext)
	if !ok {
		return nil, newError(KindUnsupportedLanguage, "no language registered for extension %q", ext)
	}
	return l, nil
}

func filterByLanguage(files []File, language *lang.Language) ([]File, int) {
	extSet := make(map[string]bool, len(language.Extensions))
	for _, e := range language.Extensions {
		extSet[e] = true
	}
	var kept []File
	dropped := 0
	for _, f := range files {
		if extSet[strings.ToLower(filepath.Ext(f.Path))] {
			kept = append(kept, f)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

func (d *Detector) effectiveCutoff(filteredCount int) int {
	if d.opts.MaxFingerprintCount > 0 {
		return d.opts.MaxFingerprintCount
	}
	if d.opts.MaxFingerprintPercentage > 0 {
		return int(math.Floor(d.opts.MaxFingerprintPercentage * float64(filteredCount)))
	}
	return 0
}

func (d *Detector) tokenizeOne(f File, language *lang.Language) (*fingerprint.TokenizedFile, error) {
	opts := lang.Options{IncludeComments: d.opts.IncludeComments}
	tf, err := language.Tokenizer.Tokenize(f.Path, f.Content, opts)
	if err != nil {
		return nil, err
	}
	file := &fingerprint.File{
		ID:       fingerprint.NextFileID(),
		Path:     f.Path,
		Content:  f.Content,
		Metadata: f.Info,
	}
	return fingerprint.NewTokenizedFile(file, tf), nil
}

// tokenizeAll tokenizes every filtered file. Tokenization is the one
// operation the pipeline permits to run concurrently (disjoint outputs, no
// shared mutable state); fileproc.MapFiles bounds the fan-out. Results are
// then walked in input order so that warnings and progress reporting stay
// deterministic regardless of goroutine scheduling. A per-file
// tokenization failure is recorded as a warning, not fatal; a context
// cancelled before tokenization begins, or while it runs, is fatal (the
// tokenize boundary named in the cancellation contract).
func (d *Detector) tokenizeAll(ctx context.Context, files []File, language *lang.Language, progress ProgressFunc) ([]*fingerprint.TokenizedFile, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, newError(KindCancelled, "%v", ctx.Err())
	default:
	}

	results, failed := fileproc.MapFiles(ctx, files, func(_ context.Context, _ int, f File) (*fingerprint.TokenizedFile, error) {
		return d.tokenizeOne(f, language)
	})
	if err := ctx.Err(); err != nil {
		return nil, nil, newError(KindCancelled, "%v", err)
	}
	errByIndex := make(map[int]error, len(failed))
	for _, pe := range failed {
		errByIndex[pe.Index] = pe.Err
	}

	var out []*fingerprint.TokenizedFile
	var warnings []string
	for i, f := range files {
		if err, failed := errByIndex[i]; failed {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", f.Path, err))
		} else {
			out = append(out, results[i])
		}
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return out, warnings, nil
}
