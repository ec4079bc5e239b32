package index

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zixiao-technologies/logos/internal/types"
)

func TestTypeHierarchy_ExtendsAndImplements(t *testing.T) {
	h := NewTypeHierarchy()

	h.AddExtends(1, 2)
	h.AddImplements(1, 3)
	h.AddImplements(4, 3)

	require.Equal(t, []types.SymbolID{2}, h.Supertypes(1))
	require.Equal(t, []types.SymbolID{1}, h.Subtypes(2))
	require.Equal(t, []types.SymbolID{3}, h.Interfaces(1))
	require.ElementsMatch(t, []types.SymbolID{1, 4}, h.Implementors(3))
}

func TestTypeHierarchy_DuplicateEdgesIgnored(t *testing.T) {
	h := NewTypeHierarchy()
	h.AddExtends(1, 2)
	h.AddExtends(1, 2)

	require.Len(t, h.Supertypes(1), 1)
}
