package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cutwater-labs/mossaic/pkg/fingerprint"
	"github.com/cutwater-labs/mossaic/pkg/pairing"
	"github.com/cutwater-labs/mossaic/pkg/report"
	"github.com/cutwater-labs/mossaic/pkg/span"
)

func tokenizedFile(id int64, path string, tokens []string) *fingerprint.TokenizedFile {
	mapping := make([]span.Region, len(tokens))
	for i := range tokens {
		mapping[i] = span.NewRegion(i, 0, i, len(tokens[i])+1)
	}
	return &fingerprint.TokenizedFile{
		File:    &fingerprint.File{ID: id, Path: path},
		Tokens:  tokens,
		Mapping: mapping,
	}
}

func identicalTokens(n int) []string {
	words := []string{"class", "method", "if", "return", "identifier", "literal", "block", "call"}
	out := make([]string, n)
	for i := range out {
		out[i] = words[i%len(words)]
	}
	return out
}

func buildTestReport(t *testing.T) *report.Report {
	t.Helper()
	toks := identicalTokens(40)
	a := tokenizedFile(1, "Alice/Main.java", toks)
	b := tokenizedFile(2, "Bob/Main.java", toks)

	idx, err := fingerprint.New(5, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	idx.AddFiles([]*fingerprint.TokenizedFile{a, b})
	idx.Finalize()

	return report.New("java", idx.Entries(), nil, 1)
}

func TestFormatterTextOutputsRenderableTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Title", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil)

	f := &Formatter{format: FormatText, writer: &buf}
	if err := f.Output(table); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "Title") {
		t.Errorf("expected title in output, got %q", buf.String())
	}
}

func TestFormatterJSONOutputsStructuredData(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Title", []string{"A"}, [][]string{{"1"}}, nil, map[string]int{"n": 1})

	f := &Formatter{format: FormatJSON, writer: &buf}
	if err := f.Output(table); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), `"n": 1`) {
		t.Errorf("expected json data, got %q", buf.String())
	}
}

func TestFormatterTOONOutputsCompactForm(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Title", []string{"A"}, [][]string{{"1"}}, nil, map[string]int{"n": 1})

	f := &Formatter{format: FormatTOON, writer: &buf}
	if err := f.Output(table); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty TOON output")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json":     FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"toon":     FormatTOON,
		"":         FormatText,
		"bogus":    FormatText,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSuspiciousPairsTableRendersPair(t *testing.T) {
	r := buildTestReport(t)
	table := SuspiciousPairsTable(r, 0.5)

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 suspicious pair, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Alice/Main.java" {
		t.Errorf("unexpected row: %v", table.Rows[0])
	}

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !strings.Contains(buf.String(), "Alice/Main.java") {
		t.Errorf("expected file path in rendered text, got %q", buf.String())
	}
}

func TestSuspiciousPairsTableEmptyBelowThreshold(t *testing.T) {
	r := buildTestReport(t)
	table := SuspiciousPairsTable(r, 1.5)
	if len(table.Rows) != 0 {
		t.Fatalf("expected no rows above an unreachable threshold, got %d", len(table.Rows))
	}
}

func TestFragmentTableRendersExcerpt(t *testing.T) {
	r := buildTestReport(t)
	pairs := r.GetPairs()
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}

	table := FragmentTable(r, pairs[0])
	if len(table.Rows) == 0 {
		t.Fatal("expected at least one fragment row")
	}
	if _, ok := table.Data.([]*pairing.Fragment); !ok {
		t.Errorf("expected Data to carry the raw fragments, got %T", table.Data)
	}
}

func TestTruncateExcerpt(t *testing.T) {
	if got := truncateExcerpt("short", 10); got != "short" {
		t.Errorf("truncateExcerpt short = %q", got)
	}
	if got := truncateExcerpt("a very long excerpt indeed", 10); len(got) != 10 {
		t.Errorf("truncateExcerpt long = %q, want length 10", got)
	}
}
