package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/adapter"
	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/orchestrator"
	"github.com/zixiao-technologies/logos/internal/types"
)

// fakeAdapter emits a class containing one method, plus a call from the
// method to a free function, exercising document-symbol nesting and call
// hierarchy without a real tree-sitter grammar.
type fakeAdapter struct{ ext string }

func (f *fakeAdapter) LanguageID() string       { return "fake" }
func (f *fakeAdapter) FileExtensions() []string { return []string{f.ext} }
func (f *fakeAdapter) CanHandle(path string) bool {
	return len(path) >= len(f.ext) && path[len(path)-len(f.ext):] == f.ext
}

func (f *fakeAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	classID := types.NextSymbolID()
	methodID := types.NextSymbolID()
	helperID := types.NextSymbolID()

	return types.AnalysisResult{
		Symbols: []types.SmartSymbol{
			{
				ID:            classID,
				Name:          "Widget",
				Kind:          types.SymbolKindClass,
				Location:      types.SymbolLocation{URI: uri, Range: types.NewRange(0, 0, 20, 0), SelectionRange: types.NewRange(0, 6, 0, 12)},
				Exported:      true,
				QualifiedName: "Widget",
			},
			{
				ID:            methodID,
				Name:          "render",
				Kind:          types.SymbolKindMethod,
				Location:      types.SymbolLocation{URI: uri, Range: types.NewRange(2, 2, 8, 2), SelectionRange: types.NewRange(2, 6, 2, 12)},
				Parent:        &classID,
				Exported:      true,
				QualifiedName: "Widget.render",
			},
			{
				ID:            helperID,
				Name:          "helper",
				Kind:          types.SymbolKindFunction,
				Location:      types.SymbolLocation{URI: uri, Range: types.NewRange(22, 0, 24, 0), SelectionRange: types.NewRange(22, 5, 22, 11)},
				Exported:      false,
				QualifiedName: "helper",
			},
		},
		Calls: []types.CallInfo{
			{CalleeName: "helper", Location: types.NewRange(4, 4, 4, 12)},
		},
	}, nil
}

func (f *fakeAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	return "", false
}

func newTestService(t *testing.T, root string) (*Service, *mode.Controller) {
	t.Helper()
	reg := adapter.NewRegistry()
	reg.Register(&fakeAdapter{ext: ".fk"})
	c := mode.New(reg, mode.Config{Root: root, ScanOptions: orchestrator.ScanOptions{}})
	return NewService(c), c
}

func TestDocumentSymbols_SmartModeReconstructsHierarchy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.fk"), []byte("x"), 0o644))

	svc, c := newTestService(t, dir)
	require.NoError(t, c.EnableSmart(context.Background()))

	uri := orchestrator.PathToURI(filepath.Join(dir, "widget.fk"))
	symbols := svc.DocumentSymbols(uri)

	require.Len(t, symbols, 2) // Widget (root) and helper (root); render nested
	var widget Symbol
	for _, s := range symbols {
		if s.Name == "Widget" {
			widget = s
		}
	}
	require.Equal(t, "Widget", widget.Name)
	require.Len(t, widget.Children, 1)
	require.Equal(t, "render", widget.Children[0].Name)
}

func TestDocumentSymbols_BasicModeIsFlat(t *testing.T) {
	svc, c := newTestService(t, "")
	uri := "file:///untitled/widget.fk"
	c.OnDocumentChange(context.Background(), uri, []byte("x"))

	symbols := svc.DocumentSymbols(uri)
	require.Len(t, symbols, 3)
	for _, s := range symbols {
		require.Empty(t, s.Children)
	}
}

func TestSymbolAtPosition_SmartAndBasic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.fk")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	svc, c := newTestService(t, dir)
	require.NoError(t, c.EnableSmart(context.Background()))
	uri := orchestrator.PathToURI(path)

	sym, ok := svc.SymbolAtPosition(uri, types.Position{Line: 2, Column: 8})
	require.True(t, ok)
	require.Equal(t, "render", sym.Name)

	c.EnableBasic()
	c.OnDocumentChange(context.Background(), uri, []byte("x"))
	sym, ok = svc.SymbolAtPosition(uri, types.Position{Line: 2, Column: 8})
	require.True(t, ok)
	require.Equal(t, "render", sym.Name)
}

func TestWorkspaceSymbols_SubstringMatchRetainedUnderRanking(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.fk"), []byte("x"), 0o644))

	svc, c := newTestService(t, dir)
	require.NoError(t, c.EnableSmart(context.Background()))

	results := svc.WorkspaceSymbols("help")
	require.Len(t, results, 1)
	require.Equal(t, "helper", results[0].Name)
}

func TestCallHierarchy_PrepareIncomingOutgoing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.fk")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	svc, c := newTestService(t, dir)
	require.NoError(t, c.EnableSmart(context.Background()))
	uri := orchestrator.PathToURI(path)

	item, ok := svc.PrepareCallHierarchy(uri, types.Position{Line: 2, Column: 8})
	require.True(t, ok)
	require.Equal(t, "render", item.Name)

	outgoing := svc.OutgoingCalls(item.SymbolID)
	require.Len(t, outgoing, 1)
	require.Equal(t, "helper", outgoing[0].Name)

	incoming := svc.IncomingCalls(outgoing[0].SymbolID)
	require.Len(t, incoming, 1)
	require.Equal(t, "render", incoming[0].Name)
}

func TestSmartOnlyQueriesEmptyInBasicMode(t *testing.T) {
	svc, c := newTestService(t, "")
	require.Equal(t, mode.Basic, c.Mode())

	require.Empty(t, svc.FindReferences(types.SymbolID(1)))
	require.Empty(t, svc.IncomingCalls(types.SymbolID(1)))
	require.Empty(t, svc.OutgoingCalls(types.SymbolID(1)))
	require.Empty(t, svc.Importers("file:///a.fk"))
	require.Empty(t, svc.Exports("file:///a.fk"))
	_, ok := svc.PrepareCallHierarchy("file:///a.fk", types.Position{})
	require.False(t, ok)
}

func TestDefinition_SameFileThenQualifiedName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.fk")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	svc, c := newTestService(t, dir)
	require.NoError(t, c.EnableSmart(context.Background()))
	uri := orchestrator.PathToURI(path)

	locs := svc.Definition(uri, "helper")
	require.Len(t, locs, 1)
	require.Equal(t, uri, locs[0].URI)
}
