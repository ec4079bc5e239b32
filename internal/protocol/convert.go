package protocol

import (
	"github.com/zixiao-technologies/logos/internal/query"
	"github.com/zixiao-technologies/logos/internal/types"
)

// wirePosition mirrors the editor-protocol line/character convention
// rather than the core's Line/Column naming.
type wirePosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wireLocation struct {
	URI   string    `json:"uri"`
	Range wireRange `json:"range"`
}

type wireSymbol struct {
	Name           string       `json:"name"`
	Kind           int          `json:"kind"`
	URI            string       `json:"uri"`
	Range          wireRange    `json:"range"`
	SelectionRange wireRange    `json:"selectionRange"`
	Container      string       `json:"containerName,omitempty"`
	QualifiedName  string       `json:"qualifiedName,omitempty"`
	Children       []wireSymbol `json:"children,omitempty"`
}

func toWirePosition(p types.Position) wirePosition {
	return wirePosition{Line: p.Line, Character: p.Column}
}

func fromWirePosition(p wirePosition) types.Position {
	return types.Position{Line: p.Line, Column: p.Character}
}

func toWireRange(r types.Range) wireRange {
	return wireRange{Start: toWirePosition(r.Start), End: toWirePosition(r.End)}
}

func toWireLocation(loc types.SymbolLocation) wireLocation {
	return wireLocation{URI: loc.URI, Range: toWireRange(loc.Range)}
}

func toWireSymbol(sym query.Symbol) wireSymbol {
	out := wireSymbol{
		Name:           sym.Name,
		Kind:           sym.Kind.Ordinal(),
		URI:            sym.URI,
		Range:          toWireRange(sym.Range),
		SelectionRange: toWireRange(sym.SelectionRange),
		Container:      sym.Container,
		QualifiedName:  sym.QualifiedName,
	}
	for _, child := range sym.Children {
		out.Children = append(out.Children, toWireSymbol(child))
	}
	return out
}

func toWireSymbols(symbols []query.Symbol) []wireSymbol {
	out := make([]wireSymbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, toWireSymbol(sym))
	}
	return out
}
