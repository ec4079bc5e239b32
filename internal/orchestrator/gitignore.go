package orchestrator

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignorePattern is one non-blank, non-comment line from a .gitignore
// file, normalized to a doublestar-compatible pattern.
type gitignorePattern struct {
	pattern string
	negate  bool
	dirOnly bool
}

// gitignoreMatcher matches repo-relative paths against a loaded .gitignore
// file's patterns using doublestar glob semantics instead of a hand-rolled
// regex compiler.
type gitignoreMatcher struct {
	patterns []gitignorePattern
}

// loadGitignore reads rootDir/.gitignore, returning an empty matcher (never
// an error) when the file doesn't exist — absence of a gitignore is not a
// failure.
func loadGitignore(rootDir string) *gitignoreMatcher {
	m := &gitignoreMatcher{}

	f, err := os.Open(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return m
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, parseGitignoreLine(line))
	}
	return m
}

func parseGitignoreLine(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if !strings.Contains(line, "/") && !strings.Contains(line, "**") {
		// Bare filename patterns match at any depth, as in real gitignore.
		line = "**/" + line
	}
	p.pattern = line
	return p
}

// ShouldIgnore reports whether relPath (forward-slash, repo-relative)
// should be excluded from indexing, applying gitignore's last-match-wins
// and negation semantics.
func (m *gitignoreMatcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = path.Clean(filepath.ToSlash(relPath))
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			// A directory-only pattern can still match a path under that
			// directory; doublestar handles this via the trailing /**.
			if !doublestarMatchAny(p.pattern+"/**", relPath) {
				continue
			}
		} else if !doublestarMatchAny(p.pattern, relPath) {
			continue
		}
		ignored = !p.negate
	}
	return ignored
}

func doublestarMatchAny(pattern, target string) bool {
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}
