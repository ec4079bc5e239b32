// Package query is the read-only surface consumed by external
// collaborators (C8): symbol lookup, go-to-definition, references, call
// and type hierarchy, file dependency queries, and index statistics. It
// never mutates the index; all mutation lives in the orchestrator and
// mode controller.
package query

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/zixiao-technologies/logos/internal/index"
	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/types"
)

// Symbol is the query-surface projection of a symbol, shaped uniformly
// whether it came from Smart mode's SmartSymbol or Basic mode's
// IndexedSymbol. ID is zero when the result came from Basic mode, which
// has no durable symbol identity.
type Symbol struct {
	ID             types.SymbolID
	Name           string
	Kind           types.SymbolKind
	URI            string
	Range          types.Range
	SelectionRange types.Range
	Container      string
	QualifiedName  string
	Children       []Symbol
}

// Reference is a single non-definition mention of a symbol, returned by
// FindReferences.
type Reference struct {
	Location types.SymbolLocation
	IsCall   bool
}

// CallHierarchyItem is the opaque handle round-tripped through
// prepareCallHierarchy/incomingCalls/outgoingCalls at the transport layer.
type CallHierarchyItem struct {
	SymbolID types.SymbolID
	Name     string
	Kind     types.SymbolKind
	URI      string
	Range    types.Range
}

// Service answers queries against a mode.Controller, preferring Smart
// mode's richer index and falling back to the Basic per-document index
// where the operation supports it.
type Service struct {
	controller *mode.Controller
}

func NewService(controller *mode.Controller) *Service {
	return &Service{controller: controller}
}

// SymbolAtPosition finds the symbol whose selection range contains pos.
func (s *Service) SymbolAtPosition(uri string, pos types.Position) (Symbol, bool) {
	if idx, ok := s.controller.Smart(); ok {
		if sym, found := idx.Symbols.FindAtPosition(uri, pos); found {
			return fromSmart(sym), true
		}
		return Symbol{}, false
	}
	if sym, found := s.controller.Basic().FindAtPosition(uri, pos); found {
		return fromIndexed(sym), true
	}
	return Symbol{}, false
}

// DocumentSymbols returns every symbol declared in uri. In Smart mode the
// result is a forest: top-level symbols with their children reconstructed
// from each symbol's Parent field. In Basic mode the result is the flat
// per-document list with no nesting.
func (s *Service) DocumentSymbols(uri string) []Symbol {
	if idx, ok := s.controller.Smart(); ok {
		return buildHierarchy(idx.Symbols.FileSymbols(uri))
	}
	docs := s.controller.Basic().Document(uri)
	out := make([]Symbol, 0, len(docs))
	for _, sym := range docs {
		out = append(out, fromIndexed(sym))
	}
	return out
}

// buildHierarchy reconstructs a parent/child forest from a flat,
// insertion-ordered symbol list, using each symbol's Parent field.
// Children are materialized recursively so nesting of any depth (a method
// inside a class inside a namespace, say) comes out correctly, rather
// than flattening deeper levels into their grandparent.
func buildHierarchy(symbols []types.SmartSymbol) []Symbol {
	byID := make(map[types.SymbolID]types.SmartSymbol, len(symbols))
	childrenOf := make(map[types.SymbolID][]types.SymbolID)
	var rootIDs []types.SymbolID

	for _, sym := range symbols {
		byID[sym.ID] = sym
	}
	for _, sym := range symbols {
		if sym.Parent != nil {
			if _, exists := byID[*sym.Parent]; exists {
				childrenOf[*sym.Parent] = append(childrenOf[*sym.Parent], sym.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, sym.ID)
	}

	roots := make([]Symbol, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, materialize(id, byID, childrenOf))
	}
	return roots
}

func materialize(id types.SymbolID, byID map[types.SymbolID]types.SmartSymbol, childrenOf map[types.SymbolID][]types.SymbolID) Symbol {
	sym := fromSmart(byID[id])
	for _, childID := range childrenOf[id] {
		sym.Children = append(sym.Children, materialize(childID, byID, childrenOf))
	}
	return sym
}

// WorkspaceSymbols performs a case-insensitive substring search over
// symbol names, Smart-index preferred, falling back to the Basic
// per-document index when Smart mode is inactive. Results are ordered by
// a fuzzy/stem similarity score; the substring-match contract itself is
// never affected by that ranking — it only changes result order.
func (s *Service) WorkspaceSymbols(query string) []Symbol {
	if idx, ok := s.controller.Smart(); ok {
		matches := idx.Symbols.Search(query)
		out := make([]Symbol, 0, len(matches))
		for _, m := range matches {
			out = append(out, fromSmart(m))
		}
		rankSymbols(out, query)
		return out
	}

	matches := s.controller.Basic().Search(query)
	out := make([]Symbol, 0, len(matches))
	for _, m := range matches {
		out = append(out, fromIndexed(m))
	}
	rankSymbols(out, query)
	return out
}

// rankSymbols orders substring matches by similarity to query, using
// Porter2-stemmed terms so "indexer" and "indexing" queries rank each
// other's matches closely, then Jaro-Winkler similarity as the score.
// Every element of symbols already passed the substring-match filter;
// this only reorders them.
func rankSymbols(symbols []Symbol, query string) {
	stemmedQuery := porter2.Stem(strings.ToLower(query))
	scores := make([]float64, len(symbols))
	for i, sym := range symbols {
		stemmedName := porter2.Stem(strings.ToLower(sym.Name))
		score, err := edlib.StringsSimilarity(stemmedQuery, stemmedName, edlib.JaroWinkler)
		if err != nil {
			score = 0
		}
		scores[i] = float64(score)
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		return scores[i] > scores[j]
	})
}

// Definition resolves a call's text to its declaration: first a same-file
// name match, then a qualified-name lookup across the whole index.
// Smart-mode only; Basic mode has no qualified-name index and falls back
// to a same-document name match.
func (s *Service) Definition(uri, name string) []types.SymbolLocation {
	if idx, ok := s.controller.Smart(); ok {
		var locs []types.SymbolLocation
		for _, sym := range idx.Symbols.FileSymbols(uri) {
			if sym.Name == name {
				locs = append(locs, sym.Location)
			}
		}
		if len(locs) > 0 {
			return locs
		}
		if sym, found := idx.Symbols.FindByQualifiedName(name); found {
			return []types.SymbolLocation{sym.Location}
		}
		return nil
	}

	var locs []types.SymbolLocation
	for _, sym := range s.controller.Basic().Document(uri) {
		if sym.Name == name {
			locs = append(locs, types.SymbolLocation{URI: sym.URI, Range: sym.Range, SelectionRange: sym.SelectionRange})
		}
	}
	return locs
}

// FindReferences returns every stored reference to id plus every call
// site whose callee is id. Empty (never an error) outside Smart mode,
// since reference tracking requires durable symbol ids.
func (s *Service) FindReferences(id types.SymbolID) []Reference {
	idx, ok := s.controller.Smart()
	if !ok {
		return nil
	}

	var out []Reference
	for _, ref := range idx.Symbols.References(id) {
		out = append(out, Reference{Location: ref.Location})
	}
	for _, call := range idx.CallGraph.Callers(id) {
		out = append(out, Reference{Location: call.Location, IsCall: true})
	}
	return out
}

// PrepareCallHierarchy resolves the symbol at (uri, pos) into a
// CallHierarchyItem usable for IncomingCalls/OutgoingCalls. Empty outside
// Smart mode.
func (s *Service) PrepareCallHierarchy(uri string, pos types.Position) (CallHierarchyItem, bool) {
	idx, ok := s.controller.Smart()
	if !ok {
		return CallHierarchyItem{}, false
	}
	sym, found := idx.Symbols.FindAtPosition(uri, pos)
	if !found {
		return CallHierarchyItem{}, false
	}
	return CallHierarchyItem{
		SymbolID: sym.ID,
		Name:     sym.Name,
		Kind:     sym.Kind,
		URI:      sym.Location.URI,
		Range:    sym.Location.Range,
	}, true
}

// IncomingCalls lists every known caller of id. Empty outside Smart mode.
func (s *Service) IncomingCalls(id types.SymbolID) []CallHierarchyItem {
	idx, ok := s.controller.Smart()
	if !ok {
		return nil
	}
	return callerItems(idx, idx.CallGraph.Callers(id), func(c types.CallSite) types.SymbolID { return c.Caller })
}

// OutgoingCalls lists every known callee of id. Empty outside Smart mode.
func (s *Service) OutgoingCalls(id types.SymbolID) []CallHierarchyItem {
	idx, ok := s.controller.Smart()
	if !ok {
		return nil
	}
	return callerItems(idx, idx.CallGraph.Callees(id), func(c types.CallSite) types.SymbolID { return c.Callee })
}

func callerItems(idx *index.ProjectIndex, sites []types.CallSite, pick func(types.CallSite) types.SymbolID) []CallHierarchyItem {
	seen := make(map[types.SymbolID]bool)
	var out []CallHierarchyItem
	for _, site := range sites {
		other := pick(site)
		if seen[other] {
			continue
		}
		seen[other] = true
		sym, ok := idx.Symbols.Get(other)
		if !ok {
			continue
		}
		out = append(out, CallHierarchyItem{
			SymbolID: sym.ID,
			Name:     sym.Name,
			Kind:     sym.Kind,
			URI:      sym.Location.URI,
			Range:    sym.Location.Range,
		})
	}
	return out
}

// TypeHierarchy bundles the four relation queries for id. All empty
// outside Smart mode.
type TypeHierarchy struct {
	Supertypes   []types.SymbolID
	Subtypes     []types.SymbolID
	Interfaces   []types.SymbolID
	Implementors []types.SymbolID
}

func (s *Service) TypeHierarchy(id types.SymbolID) TypeHierarchy {
	idx, ok := s.controller.Smart()
	if !ok {
		return TypeHierarchy{}
	}
	return TypeHierarchy{
		Supertypes:   liveSymbolIDs(idx, idx.TypeHierarchy.Supertypes(id)),
		Subtypes:     liveSymbolIDs(idx, idx.TypeHierarchy.Subtypes(id)),
		Interfaces:   liveSymbolIDs(idx, idx.TypeHierarchy.Interfaces(id)),
		Implementors: liveSymbolIDs(idx, idx.TypeHierarchy.Implementors(id)),
	}
}

// liveSymbolIDs drops ids whose symbol no longer exists in idx, so a file
// removed or reindexed after recording a type relation doesn't leak dangling
// ids through the query surface (RemoveFile clears the symbol table but
// leaves TypeHierarchy edges for it to filter at read time).
func liveSymbolIDs(idx *index.ProjectIndex, ids []types.SymbolID) []types.SymbolID {
	out := make([]types.SymbolID, 0, len(ids))
	for _, id := range ids {
		if _, ok := idx.Symbols.Get(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// Importers returns the URIs of files that import uri. Empty outside
// Smart mode.
func (s *Service) Importers(uri string) []string {
	idx, ok := s.controller.Smart()
	if !ok {
		return nil
	}
	return idx.Dependencies.Importers(uri)
}

// Exports returns the exported symbol ids declared in uri. Empty outside
// Smart mode.
func (s *Service) Exports(uri string) []types.SymbolID {
	idx, ok := s.controller.Smart()
	if !ok {
		return nil
	}
	return idx.Dependencies.Exports(uri)
}

// IndexStats exposes the mode controller's running indexing counters.
func (s *Service) IndexStats() types.IndexingStats {
	return s.controller.Stats()
}

func fromSmart(sym types.SmartSymbol) Symbol {
	return Symbol{
		ID:             sym.ID,
		Name:           sym.Name,
		Kind:           sym.Kind,
		URI:            sym.Location.URI,
		Range:          sym.Location.Range,
		SelectionRange: sym.Location.SelectionRange,
		QualifiedName:  sym.QualifiedName,
	}
}

func fromIndexed(sym types.IndexedSymbol) Symbol {
	return Symbol{
		Name:           sym.Name,
		Kind:           sym.Kind,
		URI:            sym.URI,
		Range:          sym.Range,
		SelectionRange: sym.SelectionRange,
		Container:      sym.Container,
	}
}
