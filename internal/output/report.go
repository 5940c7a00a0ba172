package output

import (
	"fmt"
	"strings"

	"github.com/cutwater-labs/mossaic/pkg/pairing"
	"github.com/cutwater-labs/mossaic/pkg/report"
)

// SuspiciousPairsTable renders the suspicious pairs of a Report (similarity
// >= threshold) as a Renderable table, one row per pair, sorted by the
// Report's own similarity-descending order.
func SuspiciousPairsTable(r *report.Report, threshold float64) *Table {
	pairs := r.GetSuspiciousPairs(threshold)
	summary := r.GetSummary()

	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{
			p.LeftFile().File.Path,
			p.RightFile().File.Path,
			fmt.Sprintf("%.1f%%", p.Similarity*100),
			fmt.Sprintf("%d", p.Longest),
			fmt.Sprintf("%d", len(p.Shared)),
		}
	}

	return NewTable(
		"Suspicious Pairs",
		[]string{"File A", "File B", "Similarity", "Longest Run", "Shared Fingerprints"},
		rows,
		[]string{
			fmt.Sprintf("Files: %d", summary.TotalFiles),
			fmt.Sprintf("Pairs: %d", summary.TotalPairs),
			fmt.Sprintf("Suspicious: %d", summary.SuspiciousPairs),
			fmt.Sprintf("Avg Sim: %.1f%%", summary.AverageSimilarity*100),
			fmt.Sprintf("Max Sim: %.1f%%", summary.MaxSimilarity*100),
		},
		reportData{Summary: summary, Pairs: pairs},
	)
}

// FragmentTable renders the contiguous matching fragments of a single pair.
func FragmentTable(r *report.Report, p *pairing.Pair) *Table {
	fragments := r.GetFragments(p)

	rows := make([][]string, len(fragments))
	for i, f := range fragments {
		rows[i] = []string{
			fmt.Sprintf("%d-%d", f.LeftKgrams.From, f.LeftKgrams.To),
			fmt.Sprintf("%d-%d", f.RightKgrams.From, f.RightKgrams.To),
			fmt.Sprintf("%d", f.Length()),
			truncateExcerpt(strings.Join(f.MergedData, " "), 80),
		}
	}

	return NewTable(
		fmt.Sprintf("Fragments: %s <-> %s", p.LeftFile().File.Path, p.RightFile().File.Path),
		[]string{"Left K-grams", "Right K-grams", "Pairs", "Excerpt"},
		rows,
		nil,
		fragments,
	)
}

func truncateExcerpt(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// reportData is the JSON/TOON serialization shape for a pairs table: the
// table's own Rows/Headers are display-only, so JSON consumers get the
// structured Summary and Pairs instead.
type reportData struct {
	Summary report.Summary  `json:"summary"`
	Pairs   []*pairing.Pair `json:"pairs"`
}
