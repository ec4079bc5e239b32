// Package adapter extracts symbols, imports, exports, calls, and type
// relations from a parsed syntax tree, one implementation per language
// family.
package adapter

import (
	"context"

	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// Adapter is the per-language extraction interface. Analyze must never
// panic on malformed input: a parse failure or an unrecognized tree yields
// a zero-valued AnalysisResult, never an error that aborts the caller.
type Adapter interface {
	LanguageID() string
	FileExtensions() []string
	CanHandle(path string) bool
	Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error)
	ResolveImport(fromFile, importPath string) (string, bool)
}

// Base provides the extension-matching half of Adapter; language adapters
// embed it and supply Analyze/ResolveImport.
type Base struct {
	language   string
	extensions []string
	driver     *syntaxdriver.Driver
	lang       syntaxdriver.LanguageID
}

// NewBase builds the shared extension/driver plumbing for a language adapter.
func NewBase(language string, extensions []string, driver *syntaxdriver.Driver, lang syntaxdriver.LanguageID) Base {
	return Base{language: language, extensions: extensions, driver: driver, lang: lang}
}

func (b Base) LanguageID() string { return b.language }

func (b Base) FileExtensions() []string { return b.extensions }

func (b Base) CanHandle(path string) bool {
	for _, ext := range b.extensions {
		if hasSuffixFold(path, ext) {
			return true
		}
	}
	return false
}

func hasSuffixFold(path, ext string) bool {
	if len(path) < len(ext) {
		return false
	}
	suffix := path[len(path)-len(ext):]
	if len(suffix) != len(ext) {
		return false
	}
	for i := range suffix {
		a, b := suffix[i], ext[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
