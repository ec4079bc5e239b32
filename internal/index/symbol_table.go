// Package index holds the concurrent in-memory project index (C4): the
// symbol table, call graph, type hierarchy, and dependency graph that
// back Smart mode once a directory has been indexed.
package index

import (
	"strings"
	"sync"

	"github.com/zixiao-technologies/logos/internal/types"
)

// SymbolReference is a use-site of a symbol, as distinct from its definition.
type SymbolReference struct {
	SymbolID     types.SymbolID
	Location     types.SymbolLocation
	IsDefinition bool
	IsWrite      bool
}

// SymbolTable stores every symbol discovered across the indexed project,
// plus the secondary indexes (by file, by name, by qualified name) needed
// to answer queries without a linear scan. All methods are safe for
// concurrent use; callers never need to hold an external lock.
type SymbolTable struct {
	mu sync.RWMutex

	symbols            map[types.SymbolID]types.SmartSymbol
	fileSymbols        map[string][]types.SymbolID
	nameIndex          map[string][]types.SymbolID
	qualifiedNameIndex map[string]types.SymbolID
	references         map[types.SymbolID][]SymbolReference
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols:            make(map[types.SymbolID]types.SmartSymbol),
		fileSymbols:        make(map[string][]types.SymbolID),
		nameIndex:          make(map[string][]types.SymbolID),
		qualifiedNameIndex: make(map[string]types.SymbolID),
		references:         make(map[types.SymbolID][]SymbolReference),
	}
}

// Add stores a symbol, indexing it by file, name, and qualified name.
func (t *SymbolTable) Add(sym types.SmartSymbol) types.SymbolID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.symbols[sym.ID] = sym
	t.fileSymbols[sym.Location.URI] = append(t.fileSymbols[sym.Location.URI], sym.ID)
	t.nameIndex[sym.Name] = append(t.nameIndex[sym.Name], sym.ID)
	if sym.QualifiedName != "" {
		t.qualifiedNameIndex[sym.QualifiedName] = sym.ID
	}
	return sym.ID
}

// Get returns the symbol with the given id.
func (t *SymbolTable) Get(id types.SymbolID) (types.SmartSymbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.symbols[id]
	return sym, ok
}

// FindByName returns every symbol with an exact name match.
func (t *SymbolTable) FindByName(name string) []types.SmartSymbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.nameIndex[name]
	out := make([]types.SmartSymbol, 0, len(ids))
	for _, id := range ids {
		if sym, ok := t.symbols[id]; ok {
			out = append(out, sym)
		}
	}
	return out
}

// FindByQualifiedName returns the symbol registered under the exact
// qualified name, if any.
func (t *SymbolTable) FindByQualifiedName(qualifiedName string) (types.SmartSymbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.qualifiedNameIndex[qualifiedName]
	if !ok {
		return types.SmartSymbol{}, false
	}
	sym, ok := t.symbols[id]
	return sym, ok
}

// FileSymbols returns every symbol declared in uri, in discovery order.
func (t *SymbolTable) FileSymbols(uri string) []types.SmartSymbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.fileSymbols[uri]
	out := make([]types.SmartSymbol, 0, len(ids))
	for _, id := range ids {
		if sym, ok := t.symbols[id]; ok {
			out = append(out, sym)
		}
	}
	return out
}

// RemoveFile drops every symbol, reference, and index entry owned by uri,
// so a re-index of that file starts from a clean slate.
func (t *SymbolTable) RemoveFile(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids, ok := t.fileSymbols[uri]
	if !ok {
		return
	}
	delete(t.fileSymbols, uri)

	for _, id := range ids {
		sym, ok := t.symbols[id]
		if !ok {
			continue
		}
		delete(t.symbols, id)
		delete(t.references, id)

		names := t.nameIndex[sym.Name]
		filtered := names[:0]
		for _, n := range names {
			if n != id {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) == 0 {
			delete(t.nameIndex, sym.Name)
		} else {
			t.nameIndex[sym.Name] = filtered
		}

		if sym.QualifiedName != "" {
			if current, ok := t.qualifiedNameIndex[sym.QualifiedName]; ok && current == id {
				delete(t.qualifiedNameIndex, sym.QualifiedName)
			}
		}
	}
}

// AddReference records a use-site of a symbol.
func (t *SymbolTable) AddReference(ref SymbolReference) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.references[ref.SymbolID] = append(t.references[ref.SymbolID], ref)
}

// References returns every recorded use-site of a symbol.
func (t *SymbolTable) References(id types.SymbolID) []SymbolReference {
	t.mu.RLock()
	defer t.mu.RUnlock()
	refs := t.references[id]
	out := make([]SymbolReference, len(refs))
	copy(out, refs)
	return out
}

// Search returns every symbol whose name contains query, case-insensitively.
func (t *SymbolTable) Search(query string) []types.SmartSymbol {
	needle := strings.ToLower(query)
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []types.SmartSymbol
	for _, sym := range t.symbols {
		if strings.Contains(strings.ToLower(sym.Name), needle) {
			out = append(out, sym)
		}
	}
	return out
}

// FindAtPosition returns the symbol whose selection range contains pos,
// within a single file. A function/method's own range frequently encloses
// nested symbols' ranges too, so ties are broken in favor of the
// narrower (more specific) selection range.
func (t *SymbolTable) FindAtPosition(uri string, pos types.Position) (types.SmartSymbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var best types.SmartSymbol
	found := false
	for _, id := range t.fileSymbols[uri] {
		sym, ok := t.symbols[id]
		if !ok || !sym.Location.SelectionRange.Contains(pos) {
			continue
		}
		if !found || rangeSpan(sym.Location.SelectionRange) < rangeSpan(best.Location.SelectionRange) {
			best, found = sym, true
		}
	}
	return best, found
}

// rangeSpan is a coarse ordering key (not a true distance) used only to
// prefer narrower ranges when multiple symbols contain the same position.
func rangeSpan(r types.Range) int64 {
	lines := int64(r.End.Line) - int64(r.Start.Line)
	cols := int64(r.End.Column) - int64(r.Start.Column)
	return lines*1_000_000 + cols
}

// Len returns the number of indexed symbols.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}

// Files returns every indexed file URI.
func (t *SymbolTable) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.fileSymbols))
	for uri := range t.fileSymbols {
		out = append(out, uri)
	}
	return out
}
