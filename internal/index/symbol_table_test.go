package index

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zixiao-technologies/logos/internal/types"
)

func newTestSymbol(id types.SymbolID, name, uri string) types.SmartSymbol {
	return types.SmartSymbol{
		ID:   id,
		Name: name,
		Kind: types.SymbolKindFunction,
		Location: types.SymbolLocation{
			URI:            uri,
			Range:          types.NewRange(0, 0, 10, 0),
			SelectionRange: types.NewRange(0, 9, 0, 9+uint32(len(name))),
		},
		Visibility:    types.VisibilityPublic,
		Exported:      true,
		QualifiedName: uri + "." + name,
	}
}

func TestSymbolTable_AddAndGet(t *testing.T) {
	table := NewSymbolTable()
	sym := newTestSymbol(1, "Foo", "file:///a.go")

	id := table.Add(sym)
	require.Equal(t, types.SymbolID(1), id)

	got, ok := table.Get(1)
	require.True(t, ok)
	require.Equal(t, "Foo", got.Name)

	found := table.FindByName("Foo")
	require.Len(t, found, 1)

	byQualified, ok := table.FindByQualifiedName("file:///a.go.Foo")
	require.True(t, ok)
	require.Equal(t, types.SymbolID(1), byQualified.ID)

	results := table.Search("fo")
	require.Len(t, results, 1)
}

func TestSymbolTable_RemoveFile(t *testing.T) {
	table := NewSymbolTable()
	table.Add(newTestSymbol(1, "Foo", "file:///a.go"))
	table.Add(newTestSymbol(2, "Bar", "file:///a.go"))
	table.Add(newTestSymbol(3, "Baz", "file:///b.go"))

	table.RemoveFile("file:///a.go")

	require.Equal(t, 1, table.Len())
	_, ok := table.Get(1)
	require.False(t, ok)
	require.Empty(t, table.FindByName("Foo"))

	remaining, ok := table.Get(3)
	require.True(t, ok)
	require.Equal(t, "Baz", remaining.Name)
}

func TestSymbolTable_FindAtPosition(t *testing.T) {
	table := NewSymbolTable()
	outer := newTestSymbol(1, "Outer", "file:///a.go")
	outer.Location.Range = types.NewRange(0, 0, 20, 0)
	outer.Location.SelectionRange = types.NewRange(0, 5, 0, 10)
	table.Add(outer)

	inner := newTestSymbol(2, "Inner", "file:///a.go")
	inner.Location.SelectionRange = types.NewRange(5, 2, 5, 7)
	table.Add(inner)

	sym, ok := table.FindAtPosition("file:///a.go", types.Position{Line: 5, Column: 3})
	require.True(t, ok)
	require.Equal(t, "Inner", sym.Name)

	_, ok = table.FindAtPosition("file:///a.go", types.Position{Line: 15, Column: 0})
	require.False(t, ok)
}

func TestSymbolTable_References(t *testing.T) {
	table := NewSymbolTable()
	table.Add(newTestSymbol(1, "Foo", "file:///a.go"))

	table.AddReference(SymbolReference{
		SymbolID: 1,
		Location: types.SymbolLocation{URI: "file:///b.go", Range: types.NewRange(2, 0, 2, 3)},
	})

	refs := table.References(1)
	require.Len(t, refs, 1)
	require.Equal(t, "file:///b.go", refs[0].Location.URI)
}
