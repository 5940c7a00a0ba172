// Package source adapts a directory tree or an explicit file list into
// []detector.File, the in-memory contract the detector package consumes.
// It deliberately knows nothing about tokenization or fingerprinting.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cutwater-labs/mossaic/pkg/detector"
	"github.com/cutwater-labs/mossaic/pkg/lang"
)

// ContentSource produces the batch of files a Detector will analyze.
// Info, on each returned detector.File, carries whatever identifies the
// submission (e.g. a student id or directory name) to the caller's
// report rendering; the detector never inspects it.
type ContentSource interface {
	Files() ([]detector.File, error)
}

// FilesystemSource walks Root and returns every file whose extension is
// registered in Registry, read into memory. Entries matching any of
// Exclude (gitignore-free shell glob patterns, matched against the path
// relative to Root) are skipped.
type FilesystemSource struct {
	Root     string
	Registry *lang.Registry
	Exclude  []string
}

// NewFilesystemSource builds a FilesystemSource rooted at root.
func NewFilesystemSource(root string, registry *lang.Registry) *FilesystemSource {
	return &FilesystemSource{Root: root, Registry: registry}
}

// Files walks s.Root and returns one detector.File per matching, non-excluded
// regular file, with Info set to the file's path relative to s.Root (so a
// caller building per-submission groups can key off a leading path
// segment). Symlinks that resolve outside s.Root are skipped rather than
// followed, since a plagiarism batch is an untrusted bundle of student
// submissions.
func (s *FilesystemSource) Files() ([]detector.File, error) {
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, fmt.Errorf("source: resolving root: %w", err)
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("source: resolving root: %w", err)
	}

	var files []detector.File
	walkErr := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			relPath = path
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, symErr := filepath.EvalSymlinks(path)
			if symErr != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if s.isExcluded(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := s.Registry.DetectByExtension(ext); !ok {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		files = append(files, detector.File{
			Path:    path,
			Content: string(content),
			Info:    relPath,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("source: walking %s: %w", s.Root, walkErr)
	}
	return files, nil
}

func (s *FilesystemSource) isExcluded(relPath string) bool {
	for _, pattern := range s.Exclude {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}

func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// StaticSource wraps an already-built slice of detector.File, useful for
// callers that have assembled files from something other than a
// filesystem (a zip upload, an API payload).
type StaticSource struct {
	List []detector.File
}

// Files returns s.List unchanged.
func (s StaticSource) Files() ([]detector.File, error) {
	return s.List, nil
}
