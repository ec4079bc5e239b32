package mcpserver

import (
	"github.com/zixiao-technologies/logos/internal/query"
	"github.com/zixiao-technologies/logos/internal/types"
)

type noArgs struct{}

type documentArgs struct {
	URI string `json:"uri" jsonschema:"the document URI to inspect"`
}

type queryArgs struct {
	Query string `json:"query" jsonschema:"substring to search symbol names for"`
}

type symbolAtPositionArgs struct {
	URI       string `json:"uri" jsonschema:"the document URI"`
	Line      uint32 `json:"line" jsonschema:"zero-indexed line number"`
	Character uint32 `json:"character" jsonschema:"zero-indexed UTF-16 column"`
}

type findDefinitionArgs struct {
	URI  string `json:"uri" jsonschema:"the document URI the identifier appears in"`
	Name string `json:"name" jsonschema:"the identifier text to resolve"`
}

type symbolIDArgs struct {
	SymbolID uint64 `json:"symbolId" jsonschema:"opaque symbol id from a prior query result"`
}

type wireLocation struct {
	URI       string `json:"uri"`
	StartLine uint32 `json:"startLine"`
	StartCol  uint32 `json:"startColumn"`
	EndLine   uint32 `json:"endLine"`
	EndCol    uint32 `json:"endColumn"`
}

type definitionResult struct {
	Locations []wireLocation `json:"locations"`
}

type wireReference struct {
	Location wireLocation `json:"location"`
	IsCall   bool         `json:"isCall"`
}

type referencesResult struct {
	References []wireReference `json:"references"`
}

type wireSymbol struct {
	SymbolID      uint64       `json:"symbolId,omitempty"`
	Name          string       `json:"name"`
	Kind          string       `json:"kind"`
	URI           string       `json:"uri"`
	Container     string       `json:"container,omitempty"`
	QualifiedName string       `json:"qualifiedName,omitempty"`
	Children      []wireSymbol `json:"children,omitempty"`
}

type symbolsResult struct {
	Symbols []wireSymbol `json:"symbols"`
}

type wireCallItem struct {
	SymbolID uint64 `json:"symbolId"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	URI      string `json:"uri"`
}

type callHierarchyResult struct {
	Symbol  string         `json:"symbol"`
	Callers []wireCallItem `json:"callers"`
	Callees []wireCallItem `json:"callees"`
}

type typeHierarchyResult struct {
	Supertypes   []uint64 `json:"supertypes"`
	Subtypes     []uint64 `json:"subtypes"`
	Interfaces   []uint64 `json:"interfaces"`
	Implementors []uint64 `json:"implementors"`
}

type statsResult struct {
	Mode         string   `json:"mode"`
	FilesIndexed int      `json:"filesIndexed"`
	SymbolsFound int      `json:"symbolsFound"`
	ImportsFound int      `json:"importsFound"`
	Errors       []string `json:"errors,omitempty"`
}

func toLocations(locs []types.SymbolLocation) []wireLocation {
	out := make([]wireLocation, 0, len(locs))
	for _, l := range locs {
		out = append(out, wireLocation{
			URI: l.URI, StartLine: l.Range.Start.Line, StartCol: l.Range.Start.Column,
			EndLine: l.Range.End.Line, EndCol: l.Range.End.Column,
		})
	}
	return out
}

func toReferences(refs []query.Reference) []wireReference {
	out := make([]wireReference, 0, len(refs))
	for _, r := range refs {
		out = append(out, wireReference{
			Location: wireLocation{
				URI: r.Location.URI, StartLine: r.Location.Range.Start.Line, StartCol: r.Location.Range.Start.Column,
				EndLine: r.Location.Range.End.Line, EndCol: r.Location.Range.End.Column,
			},
			IsCall: r.IsCall,
		})
	}
	return out
}

func toSymbols(syms []query.Symbol) []wireSymbol {
	out := make([]wireSymbol, 0, len(syms))
	for _, s := range syms {
		out = append(out, toSymbol(s))
	}
	return out
}

func toSymbol(s query.Symbol) wireSymbol {
	w := wireSymbol{
		SymbolID:      uint64(s.ID),
		Name:          s.Name,
		Kind:          s.Kind.String(),
		URI:           s.URI,
		Container:     s.Container,
		QualifiedName: s.QualifiedName,
	}
	for _, c := range s.Children {
		w.Children = append(w.Children, toSymbol(c))
	}
	return w
}

func toCallItems(items []query.CallHierarchyItem) []wireCallItem {
	out := make([]wireCallItem, 0, len(items))
	for _, it := range items {
		out = append(out, wireCallItem{SymbolID: uint64(it.SymbolID), Name: it.Name, Kind: it.Kind.String(), URI: it.URI})
	}
	return out
}

func ids(in []types.SymbolID) []uint64 {
	out := make([]uint64, len(in))
	for i, id := range in {
		out[i] = uint64(id)
	}
	return out
}
