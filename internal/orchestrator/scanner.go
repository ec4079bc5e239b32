package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoredNames is the fixed directory-name ignore list from spec.md §4.4,
// applied in addition to any include/exclude globs or .gitignore rules.
var ignoredNames = map[string]struct{}{
	"node_modules": {},
	"target":       {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
}

// ScanOptions configures which files under a root directory are visited.
type ScanOptions struct {
	// Include, when non-empty, restricts results to paths matching at
	// least one doublestar pattern (relative to root, forward-slashed).
	Include []string
	// Exclude paths matching any doublestar pattern are always skipped.
	Exclude []string
	// RespectGitignore additionally loads and applies root/.gitignore.
	RespectGitignore bool
}

// Scanner walks a directory tree, applying the fixed ignore list, the
// caller's include/exclude globs, and an optional .gitignore, yielding
// candidate file paths for the orchestrator to dispatch to an adapter.
type Scanner struct {
	opts      ScanOptions
	gitignore *gitignoreMatcher
}

func NewScanner(root string, opts ScanOptions) *Scanner {
	s := &Scanner{opts: opts}
	if opts.RespectGitignore {
		s.gitignore = loadGitignore(root)
	}
	return s
}

// Walk visits every regular file under root in depth-first order, calling
// fn for each surviving path (as returned by filepath.Walk, i.e. an
// absolute or root-relative path depending on how root was given).
func (s *Scanner) Walk(root string, fn func(path string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if name != "." && name != "/" {
			_, ignoredByName := ignoredNames[name]
			dotPrefixed := len(name) > 1 && name[0] == '.'
			if ignoredByName || dotPrefixed {
				if info.IsDir() && path != root {
					return filepath.SkipDir
				}
				if !info.IsDir() {
					return nil
				}
			}
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if s.gitignore != nil && rel != "." && s.gitignore.ShouldIgnore(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		if !s.matches(rel) {
			return nil
		}

		return fn(path)
	})
}

func (s *Scanner) matches(rel string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(s.opts.Include) == 0 {
		return true
	}
	for _, pattern := range s.opts.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
