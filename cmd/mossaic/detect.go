package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cutwater-labs/mossaic/internal/cache"
	"github.com/cutwater-labs/mossaic/internal/output"
	"github.com/cutwater-labs/mossaic/internal/progress"
	"github.com/cutwater-labs/mossaic/pkg/config"
	"github.com/cutwater-labs/mossaic/pkg/detector"
	"github.com/cutwater-labs/mossaic/pkg/lang"
	"github.com/cutwater-labs/mossaic/pkg/report"
	"github.com/cutwater-labs/mossaic/pkg/source"
)

var detectCmd = &cobra.Command{
	Use:     "detect <path> [path...]",
	Aliases: []string{"scan", "run"},
	Short:   "Fingerprint and cross-compare a batch of source files",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDetect,
}

func init() {
	detectCmd.Flags().StringP("format", "f", "", "Output format: table, json, toon (overrides config)")
	detectCmd.Flags().StringP("output", "o", "", "Write output to file")
	detectCmd.Flags().String("language", "", "Force a language instead of auto-detecting by extension")
	detectCmd.Flags().Int("kgram-length", 0, "Winnow k-gram length (overrides config)")
	detectCmd.Flags().Int("kgrams-in-window", 0, "Winnow window size (overrides config)")
	detectCmd.Flags().Float64("threshold", report.DefaultSuspiciousThreshold, "Similarity threshold for suspicious pairs")
	detectCmd.Flags().Int("min-fragment-occurrences", 1, "Minimum occurrences for a fragment to be reported (not read: fragments are always reported with a minimum of 1)")
	detectCmd.Flags().String("ignore", "", "Path to a boilerplate/template file whose fingerprints are excluded from matching")
	detectCmd.Flags().StringSlice("exclude", nil, "Glob patterns (matched against each path's relative path) to skip")
	detectCmd.Flags().Bool("fragments", false, "Print the contiguous matching fragments for each suspicious pair")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	reg := newRegistry()

	cfg, err := loadDetectConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := cfg.ToOptions(reg)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &opts)
	if showFragments, _ := cmd.Flags().GetBool("fragments"); showFragments {
		opts.KgramData = true
	}

	if !noCache && cfg.Cache.Enabled {
		wrapTokenizers(reg, cache.New())
	}

	var files []detector.File
	for _, path := range args {
		fs := source.NewFilesystemSource(path, reg)
		fs.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		found, err := fs.Files()
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	var ignoredFile *detector.File
	if ignorePath, _ := cmd.Flags().GetString("ignore"); ignorePath != "" {
		content, err := os.ReadFile(ignorePath)
		if err != nil {
			return fmt.Errorf("reading --ignore file: %w", err)
		}
		ignoredFile = &detector.File{Path: ignorePath, Content: string(content)}
	}

	det, err := detector.New(reg, opts)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker("Fingerprinting...", len(files))
	result, err := det.Analyze(context.Background(), files, ignoredFile, progress.ForDetector(tracker))
	tracker.FinishSuccess()
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(outputFormat(cmd, cfg)), outputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	table := output.SuspiciousPairsTable(result, threshold)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if showFragments, _ := cmd.Flags().GetBool("fragments"); showFragments {
		for _, p := range result.GetSuspiciousPairs(threshold) {
			if err := formatter.Output(output.FragmentTable(result, p)); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadDetectConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: %s: %w", cfgFile, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault()
}

func applyFlagOverrides(cmd *cobra.Command, opts *detector.Options) {
	if v, _ := cmd.Flags().GetString("language"); v != "" {
		opts.Language = lang.Name(v)
	}
	if v, _ := cmd.Flags().GetInt("kgram-length"); v > 0 {
		opts.KgramLength = v
	}
	if v, _ := cmd.Flags().GetInt("kgrams-in-window"); v > 0 {
		opts.KgramsInWindow = v
	}
}

func outputFormat(cmd *cobra.Command, cfg *config.Config) string {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return f
	}
	return cfg.Output.Format
}

func outputFile(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}

// wrapTokenizers rewrites every registered language's Tokenizer to go
// through c, so identical submissions across a batch are tokenized once.
func wrapTokenizers(r *lang.Registry, c *cache.TokenizerCache) {
	for _, name := range []lang.Name{lang.Java, lang.Python, lang.C} {
		l, ok := r.ByName(name)
		if !ok {
			continue
		}
		r.Register(&lang.Language{Name: l.Name, Extensions: l.Extensions, Tokenizer: c.Wrap(l.Tokenizer)})
	}
}
