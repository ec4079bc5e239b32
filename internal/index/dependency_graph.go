package index

import (
	"sync"

	"github.com/zixiao-technologies/logos/internal/types"
)

// DependencyGraph tracks which files import which, plus each file's
// exported symbols, so "what imports this file" and "what does this file
// export" resolve without re-walking every AnalysisResult.
type DependencyGraph struct {
	mu sync.RWMutex

	imports    map[string]map[string]struct{}
	importedBy map[string]map[string]struct{}
	exports    map[string][]types.SymbolID
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		imports:    make(map[string]map[string]struct{}),
		importedBy: make(map[string]map[string]struct{}),
		exports:    make(map[string][]types.SymbolID),
	}
}

// AddImport records that the file at from imports the file at to. Both
// are resolved, absolute URIs — resolution itself is the orchestrator's job.
func (g *DependencyGraph) AddImport(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.imports[from] == nil {
		g.imports[from] = make(map[string]struct{})
	}
	g.imports[from][to] = struct{}{}

	if g.importedBy[to] == nil {
		g.importedBy[to] = make(map[string]struct{})
	}
	g.importedBy[to][from] = struct{}{}
}

// SetExports replaces the set of exported symbols for a file.
func (g *DependencyGraph) SetExports(uri string, symbols []types.SymbolID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exports[uri] = symbols
}

func (g *DependencyGraph) Imports(uri string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setKeys(g.imports[uri])
}

func (g *DependencyGraph) Importers(uri string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setKeys(g.importedBy[uri])
}

func (g *DependencyGraph) Exports(uri string) []types.SymbolID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.SymbolID, len(g.exports[uri]))
	copy(out, g.exports[uri])
	return out
}

// RemoveFile drops uri's imports, its entry in every importer's list, and
// its exports.
func (g *DependencyGraph) RemoveFile(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for imported := range g.imports[uri] {
		if peers, ok := g.importedBy[imported]; ok {
			delete(peers, uri)
			if len(peers) == 0 {
				delete(g.importedBy, imported)
			}
		}
	}
	delete(g.imports, uri)

	for importer := range g.importedBy[uri] {
		if peers, ok := g.imports[importer]; ok {
			delete(peers, uri)
			if len(peers) == 0 {
				delete(g.imports, importer)
			}
		}
	}
	delete(g.importedBy, uri)

	delete(g.exports, uri)
}

// FileCount returns the number of files with recorded exports.
func (g *DependencyGraph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.exports)
}

func setKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
