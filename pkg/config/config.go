// Package config loads detector.Options from a TOML, YAML, or JSON file
// using github.com/knadh/koanf/v2. It has no part in the detection
// algorithm itself — it only produces the Options value a caller (e.g.
// the CLI) hands to detector.New.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cutwater-labs/mossaic/pkg/detector"
	"github.com/cutwater-labs/mossaic/pkg/lang"
)

// Config mirrors detector.Options with koanf/toml struct tags, plus the
// loader-only fields (Language as a string, since lang.Name isn't known
// to a config file author until resolved against a registry).
type Config struct {
	Language                 string  `koanf:"language" toml:"language"`
	KgramLength              int     `koanf:"kgram_length" toml:"kgram_length"`
	KgramsInWindow           int     `koanf:"kgrams_in_window" toml:"kgrams_in_window"`
	KgramData                bool    `koanf:"kgram_data" toml:"kgram_data"`
	IncludeComments          bool    `koanf:"include_comments" toml:"include_comments"`
	MaxFingerprintCount      int     `koanf:"max_fingerprint_count" toml:"max_fingerprint_count"`
	MaxFingerprintPercentage float64 `koanf:"max_fingerprint_percentage" toml:"max_fingerprint_percentage"`

	Output OutputConfig `koanf:"output" toml:"output"`
	Cache  CacheConfig  `koanf:"cache" toml:"cache"`
}

// OutputConfig controls report rendering, independent of detection.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // table, json, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// CacheConfig controls the tokenizer content cache.
type CacheConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
}

// DefaultConfig returns a Config with the same defaults detector.Options
// applies on its own (k=23, w=17), plus a sane output default.
func DefaultConfig() *Config {
	return &Config{
		KgramLength:    23,
		KgramsInWindow: 17,
		Output:         OutputConfig{Format: "table"},
		Cache:          CacheConfig{Enabled: true},
	}
}

// ToOptions converts Config into detector.Options. lang resolves the
// Language string against reg; an empty Language string leaves
// detector.Options.Language empty, triggering extension-based detection.
func (c *Config) ToOptions(reg *lang.Registry) (detector.Options, error) {
	opts := detector.Options{
		KgramLength:              c.KgramLength,
		KgramsInWindow:           c.KgramsInWindow,
		KgramData:                c.KgramData,
		IncludeComments:          c.IncludeComments,
		MaxFingerprintCount:      c.MaxFingerprintCount,
		MaxFingerprintPercentage: c.MaxFingerprintPercentage,
	}
	if c.Language != "" {
		name := lang.Name(strings.ToLower(c.Language))
		if _, ok := reg.ByName(name); !ok {
			return detector.Options{}, fmt.Errorf("config: unknown language %q", c.Language)
		}
		opts.Language = name
	}
	return opts, nil
}

// Load reads path, choosing a parser by file extension (.toml, .yaml,
// .yml, .json; unrecognized extensions are attempted as TOML), and
// unmarshals it onto DefaultConfig(). Unknown keys are rejected: a
// config file is either valid or wrong, never silently partially
// applied.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      cfg,
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var configNames = []string{"mossaic.toml", "mossaic.yaml", "mossaic.yml", "mossaic.json"}
var searchDirs = []string{".", ".mossaic"}

// FindConfigFile searches standard locations and returns the first match,
// or "" if none exists.
func FindConfigFile() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads from a standard location if one exists, otherwise
// returns DefaultConfig(). A config file that exists but fails to parse
// or validate is still an error — only a missing file falls back.
func LoadOrDefault() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges that detector.Options.validate also
// checks, plus the loader-only Output.Format enum, so a malformed config
// file is rejected before any file is tokenized.
func (c *Config) Validate() error {
	var errs []error
	if c.KgramLength <= 0 {
		errs = append(errs, errors.New("kgram_length must be positive"))
	}
	if c.KgramsInWindow <= 0 {
		errs = append(errs, errors.New("kgrams_in_window must be positive"))
	}
	if c.MaxFingerprintCount < 0 {
		errs = append(errs, errors.New("max_fingerprint_count must be non-negative"))
	}
	if c.MaxFingerprintPercentage < 0 || c.MaxFingerprintPercentage > 1 {
		errs = append(errs, errors.New("max_fingerprint_percentage must be between 0 and 1"))
	}
	switch c.Output.Format {
	case "", "table", "json", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of table, json, toon", c.Output.Format))
	}
	return errors.Join(errs...)
}
