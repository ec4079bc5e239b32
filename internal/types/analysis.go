package types

// ImportInfo is a single import/use/include statement as emitted by an
// adapter, before resolve_import runs.
type ImportInfo struct {
	ModulePath string // text as written: "./user", "fmt", "os.path" etc.
	Alias      string
	Location   Range
}

// ExportInfo marks a name as exported from the file it was emitted in.
type ExportInfo struct {
	Name     string
	Location Range
}

// CallInfo is a call-shaped syntax node as emitted by an adapter, before
// the orchestrator resolves (or placeholder-resolves) its callee.
type CallInfo struct {
	CalleeName    string
	QualifiedName string // full dotted/scoped receiver text, if any
	Location      Range
	IsConstructor bool
}

// TypeRelationInfo is a textual parent/child relationship as emitted by an
// adapter, before the orchestrator matches names to symbol ids.
type TypeRelationInfo struct {
	ChildName    string
	ParentName   string
	IsImplements bool
	Location     Range
}

// ReferenceInfo is a non-definition mention of a name.
type ReferenceInfo struct {
	Name     string
	Location Range
}

// AnalysisResult is the transient per-file record an adapter produces and
// the orchestrator consumes exactly once.
type AnalysisResult struct {
	Symbols       []SmartSymbol
	Imports       []ImportInfo
	Exports       []ExportInfo
	Calls         []CallInfo
	TypeRelations []TypeRelationInfo
	References    []ReferenceInfo
}

// ImportEdge is a resolved from->to filesystem-path dependency.
type ImportEdge struct {
	From string
	To   string
}

// ExportSet is the ordered list of exported symbol ids for one file.
type ExportSet struct {
	URI     string
	Symbols []SymbolID
}

// IndexingStats accumulates counters over an index_directory run (or a
// series of index_file/reindex_file calls).
type IndexingStats struct {
	FilesIndexed       int
	SymbolsFound       int
	ImportsFound       int
	ExportsFound       int
	CallsFound         int
	TypeRelationsFound int
	Errors             []string
}

// Add folds one file's AnalysisResult counts into the running stats.
func (s *IndexingStats) Add(r *AnalysisResult) {
	s.FilesIndexed++
	s.SymbolsFound += len(r.Symbols)
	s.ImportsFound += len(r.Imports)
	s.ExportsFound += len(r.Exports)
	s.CallsFound += len(r.Calls)
	s.TypeRelationsFound += len(r.TypeRelations)
}

// AddError records a `{path}: {reason}` failure and continues.
func (s *IndexingStats) AddError(path string, err error) {
	s.Errors = append(s.Errors, path+": "+err.Error())
}
