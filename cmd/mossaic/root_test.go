package main

import (
	"testing"

	"github.com/cutwater-labs/mossaic/pkg/lang"
)

func TestNewRegistryRegistersAllLanguages(t *testing.T) {
	reg := newRegistry()
	for _, name := range []lang.Name{lang.Java, lang.Python, lang.C} {
		if _, ok := reg.ByName(name); !ok {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestNewRegistryDetectsByExtension(t *testing.T) {
	reg := newRegistry()
	cases := map[string]lang.Name{
		".java": lang.Java,
		".py":   lang.Python,
		".c":    lang.C,
		".h":    lang.C,
	}
	for ext, want := range cases {
		l, ok := reg.DetectByExtension(ext)
		if !ok {
			t.Errorf("expected %q to resolve to a language", ext)
			continue
		}
		if l.Name != want {
			t.Errorf("DetectByExtension(%q) = %q, want %q", ext, l.Name, want)
		}
	}
}
