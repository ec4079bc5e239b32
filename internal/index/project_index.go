package index

// ProjectIndex bundles the four index structures Smart mode maintains
// over an indexed project. Each component manages its own locking; the
// bundle itself adds no synchronization of its own.
type ProjectIndex struct {
	Symbols       *SymbolTable
	CallGraph     *CallGraph
	TypeHierarchy *TypeHierarchy
	Dependencies  *DependencyGraph
}

func NewProjectIndex() *ProjectIndex {
	return &ProjectIndex{
		Symbols:       NewSymbolTable(),
		CallGraph:     NewCallGraph(),
		TypeHierarchy: NewTypeHierarchy(),
		Dependencies:  NewDependencyGraph(),
	}
}

// RemoveFile clears every record owned by uri across the symbol table,
// call graph, and dependency graph, ahead of a re-index. Type hierarchy
// edges are keyed by symbol id rather than file and are left to go stale
// until the referencing symbols themselves are re-added under new ids;
// stale edges point at ids no longer present in Symbols and are filtered
// out at query time.
func (p *ProjectIndex) RemoveFile(uri string) {
	p.Symbols.RemoveFile(uri)
	p.CallGraph.RemoveFile(uri)
	p.Dependencies.RemoveFile(uri)
}
