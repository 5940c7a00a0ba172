package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutwater-labs/mossaic/pkg/lang"
)

type stubTokenizer struct{}

func (stubTokenizer) Tokenize(path, content string, opts lang.Options) (*lang.TokenizedFile, error) {
	return &lang.TokenizedFile{}, nil
}

func testRegistry() *lang.Registry {
	r := lang.NewRegistry()
	r.Register(&lang.Language{Name: lang.Java, Extensions: []string{".java"}, Tokenizer: stubTokenizer{}})
	return r
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestFilesystemSourceFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"A.java":         "class A {}\n",
		"util/B.java":    "class B {}\n",
		"notes.txt":      "not source\n",
		"util/README.md": "docs\n",
	})

	s := NewFilesystemSource(root, testRegistry())
	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, ".java", filepath.Ext(f.Path))
	}
}

func TestFilesystemSourceExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"A.java":           "class A {}\n",
		"vendor/Skip.java": "class Skip {}\n",
		"build/Drop.java":  "class Drop {}\n",
	})

	s := NewFilesystemSource(root, testRegistry())
	s.Exclude = []string{"vendor", "build"}
	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "A.java", filepath.Base(files[0].Path))
}

func TestFilesystemSourceSetsRelativePathAsInfo(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"student1/Main.java": "class Main {}\n",
	})

	s := NewFilesystemSource(root, testRegistry())
	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join("student1", "Main.java"), files[0].Info)
}

func TestStaticSourceReturnsListUnchanged(t *testing.T) {
	s := StaticSource{List: nil}
	files, err := s.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}
