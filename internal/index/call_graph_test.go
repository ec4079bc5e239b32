package index

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zixiao-technologies/logos/internal/types"
)

func TestCallGraph_AddAndQuery(t *testing.T) {
	g := NewCallGraph()

	call := types.CallSite{
		Caller:   1,
		Callee:   2,
		Location: types.SymbolLocation{URI: "file:///a.go", Range: types.NewRange(3, 0, 3, 5)},
	}
	g.AddCall(call)
	g.AddCall(call) // duplicate, should not double-count

	require.Len(t, g.Callees(1), 1)
	require.Len(t, g.Callers(2), 1)
	require.Equal(t, 1, g.Len())
}

func TestCallGraph_RemoveFile(t *testing.T) {
	g := NewCallGraph()
	g.AddCall(types.CallSite{Caller: 1, Callee: 2, Location: types.SymbolLocation{URI: "file:///a.go"}})
	g.AddCall(types.CallSite{Caller: 1, Callee: 3, Location: types.SymbolLocation{URI: "file:///b.go"}})

	g.RemoveFile("file:///a.go")

	require.Empty(t, g.Callers(2))
	require.Len(t, g.Callees(1), 1)
}
