package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

const pySample = `import os
from collections import OrderedDict

MAX_RETRIES = 3
_cache = {}

class _Base:
    pass

class Greeter(_Base):
    def greet(self):
        return os.path.basename(self.name)

    def _helper(self):
        return OrderedDict()
`

func newPythonAdapter(t *testing.T) *PythonAdapter {
	t.Helper()
	driver, err := syntaxdriver.New()
	require.NoError(t, err)
	t.Cleanup(driver.Close)
	return NewPythonAdapter(driver)
}

func TestPythonAdapter_CanHandle(t *testing.T) {
	a := newPythonAdapter(t)
	require.True(t, a.CanHandle("main.py"))
	require.False(t, a.CanHandle("main.go"))
}

func TestPythonAdapter_ExtractsSymbolsAndImports(t *testing.T) {
	a := newPythonAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.py", []byte(pySample))
	require.NoError(t, err)

	var modulePaths []string
	for _, imp := range result.Imports {
		modulePaths = append(modulePaths, imp.ModulePath)
	}
	require.Contains(t, modulePaths, "os")
	require.Contains(t, modulePaths, "collections")

	names := make(map[string]types.SymbolKind)
	for _, sym := range result.Symbols {
		names[sym.Name] = sym.Kind
	}
	require.Equal(t, types.SymbolKindConstant, names["MAX_RETRIES"])
	require.Equal(t, types.SymbolKindClass, names["_Base"])
	require.Equal(t, types.SymbolKindClass, names["Greeter"])
	require.Equal(t, types.SymbolKindMethod, names["greet"])
}

// TestPythonAdapter_ClassVisibilityUsesThreeTierRule guards against a single
// leading underscore on a class name being misclassified as Private instead
// of Protected.
func TestPythonAdapter_ClassVisibilityUsesThreeTierRule(t *testing.T) {
	a := newPythonAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.py", []byte(pySample))
	require.NoError(t, err)

	var sawBase, sawGreeter bool
	for _, sym := range result.Symbols {
		switch sym.Name {
		case "_Base":
			sawBase = true
			require.Equal(t, types.VisibilityProtected, sym.Visibility)
		case "Greeter":
			sawGreeter = true
			require.Equal(t, types.VisibilityPublic, sym.Visibility)
		}
	}
	require.True(t, sawBase)
	require.True(t, sawGreeter)
}

// TestPythonAdapter_ModuleAssignmentVisibilityUsesThreeTierRule guards the
// same rule for module-level variable assignments.
func TestPythonAdapter_ModuleAssignmentVisibilityUsesThreeTierRule(t *testing.T) {
	a := newPythonAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.py", []byte(pySample))
	require.NoError(t, err)

	var sawMax, sawCache bool
	for _, sym := range result.Symbols {
		switch sym.Name {
		case "MAX_RETRIES":
			sawMax = true
			require.Equal(t, types.VisibilityPublic, sym.Visibility)
		case "_cache":
			sawCache = true
			require.Equal(t, types.VisibilityProtected, sym.Visibility)
		}
	}
	require.True(t, sawMax)
	require.True(t, sawCache)
}

func TestPythonAdapter_RecordsBaseClassAsTypeRelation(t *testing.T) {
	a := newPythonAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.py", []byte(pySample))
	require.NoError(t, err)

	require.Len(t, result.TypeRelations, 1)
	require.Equal(t, "Greeter", result.TypeRelations[0].ChildName)
	require.Equal(t, "_Base", result.TypeRelations[0].ParentName)
}

func TestPythonAdapter_RecordsCallsInsideMethodBodies(t *testing.T) {
	a := newPythonAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.py", []byte(pySample))
	require.NoError(t, err)

	var calleeNames []string
	for _, c := range result.Calls {
		calleeNames = append(calleeNames, c.CalleeName)
	}
	require.Contains(t, calleeNames, "basename")
	require.Contains(t, calleeNames, "OrderedDict")
}

func TestPythonAdapter_ResolveImportRelativeOnly(t *testing.T) {
	a := newPythonAdapter(t)
	resolved, ok := a.ResolveImport("/proj/pkg/mod.py", ".sibling")
	require.True(t, ok)
	require.Equal(t, "/proj/pkg/sibling.py", resolved)

	_, ok = a.ResolveImport("/proj/pkg/mod.py", "os")
	require.False(t, ok)
}
