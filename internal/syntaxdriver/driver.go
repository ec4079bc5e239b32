package syntaxdriver

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tscpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tsgo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tsjava "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// entry pairs a language's parser with the mutex serializing access to it.
// A *sitter.Parser carries internal cursor state that is not safe for
// concurrent Parse calls, even across unrelated source files.
type entry struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// Driver owns one tree-sitter parser per supported language.
type Driver struct {
	languages map[LanguageID]*sitter.Language
	entries   map[LanguageID]*entry
}

// New builds a Driver with all supported grammars installed.
func New() (*Driver, error) {
	d := &Driver{
		languages: map[LanguageID]*sitter.Language{
			LanguageGo:         sitter.NewLanguage(tsgo.Language()),
			LanguagePython:     sitter.NewLanguage(tspython.Language()),
			LanguageRust:       sitter.NewLanguage(tsrust.Language()),
			LanguageJava:       sitter.NewLanguage(tsjava.Language()),
			LanguageCpp:        sitter.NewLanguage(tscpp.Language()),
			LanguageJavaScript: sitter.NewLanguage(tsjavascript.Language()),
			LanguageTypeScript: sitter.NewLanguage(tstypescript.LanguageTypescript()),
			LanguageTSX:        sitter.NewLanguage(tstypescript.LanguageTSX()),
		},
		entries: make(map[LanguageID]*entry),
	}

	for id, lang := range d.languages {
		p := sitter.NewParser()
		if err := p.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("syntaxdriver: set language %s: %w", id, err)
		}
		d.entries[id] = &entry{parser: p}
	}
	return d, nil
}

// Language returns the tree-sitter language handle for id, for adapters
// that build node-kind-id lookups once at construction time.
func (d *Driver) Language(id LanguageID) (*sitter.Language, bool) {
	lang, ok := d.languages[id]
	return lang, ok
}

// Parse parses source with the parser for id, serialized against any other
// concurrent Parse call for that same language. The tree-sitter C library
// mutates its input buffer, so source is defensively copied before parsing.
func (d *Driver) Parse(ctx context.Context, id LanguageID, source []byte) (*sitter.Tree, error) {
	e, ok := d.entries[id]
	if !ok {
		return nil, fmt.Errorf("syntaxdriver: unsupported language %q", id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	buf := make([]byte, len(source))
	copy(buf, source)

	tree := e.parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("syntaxdriver: parse failed for language %q", id)
	}
	return tree, nil
}

// Close releases every underlying parser.
func (d *Driver) Close() {
	for _, e := range d.entries {
		e.mu.Lock()
		e.parser.Close()
		e.mu.Unlock()
	}
}
