package index

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zixiao-technologies/logos/internal/types"
)

func TestDependencyGraph_ImportsAndExports(t *testing.T) {
	g := NewDependencyGraph()
	g.AddImport("file:///a.go", "file:///b.go")
	g.SetExports("file:///a.go", []types.SymbolID{1, 2})

	require.Equal(t, []string{"file:///b.go"}, g.Imports("file:///a.go"))
	require.Equal(t, []string{"file:///a.go"}, g.Importers("file:///b.go"))
	require.Equal(t, []types.SymbolID{1, 2}, g.Exports("file:///a.go"))
	require.Equal(t, 1, g.FileCount())
}

func TestDependencyGraph_RemoveFile(t *testing.T) {
	g := NewDependencyGraph()
	g.AddImport("file:///a.go", "file:///b.go")
	g.SetExports("file:///a.go", []types.SymbolID{1})

	g.RemoveFile("file:///a.go")

	require.Empty(t, g.Imports("file:///a.go"))
	require.Empty(t, g.Importers("file:///b.go"))
	require.Empty(t, g.Exports("file:///a.go"))
	require.Equal(t, 0, g.FileCount())
}
