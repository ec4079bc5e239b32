package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

const goSample = `package sample

import "fmt"

const MaxRetries = 3

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() string {
	return fmt.Sprintf("hello, %s", g.Name)
}

func NewGreeter(name string) *Greeter {
	g := &Greeter{Name: name}
	return g
}
`

func newGoAdapter(t *testing.T) *GoAdapter {
	t.Helper()
	driver, err := syntaxdriver.New()
	require.NoError(t, err)
	t.Cleanup(driver.Close)
	return NewGoAdapter(driver)
}

func TestGoAdapter_CanHandle(t *testing.T) {
	a := newGoAdapter(t)
	require.True(t, a.CanHandle("main.go"))
	require.False(t, a.CanHandle("main.py"))
}

func TestGoAdapter_ExtractsSymbolsAndImports(t *testing.T) {
	a := newGoAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.go", []byte(goSample))
	require.NoError(t, err)

	require.Len(t, result.Imports, 1)
	require.Equal(t, "fmt", result.Imports[0].ModulePath)

	names := make(map[string]types.SymbolKind)
	for _, sym := range result.Symbols {
		names[sym.Name] = sym.Kind
	}
	require.Equal(t, types.SymbolKindConstant, names["MaxRetries"])
	require.Equal(t, types.SymbolKindStruct, names["Greeter"])
	require.Equal(t, types.SymbolKindMethod, names["Greet"])
	require.Equal(t, types.SymbolKindFunction, names["NewGreeter"])
}

func TestGoAdapter_MarksExportedNamesPublic(t *testing.T) {
	a := newGoAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.go", []byte(goSample))
	require.NoError(t, err)

	for _, sym := range result.Symbols {
		if sym.Name == "Greeter" {
			require.True(t, sym.Exported)
			require.Equal(t, types.VisibilityPublic, sym.Visibility)
		}
	}
}

func TestGoAdapter_RecordsCallsInsideFunctionBodies(t *testing.T) {
	a := newGoAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.go", []byte(goSample))
	require.NoError(t, err)

	var calleeNames []string
	for _, c := range result.Calls {
		calleeNames = append(calleeNames, c.CalleeName)
	}
	require.Contains(t, calleeNames, "Sprintf")
}

func TestGoAdapter_ResolveImportNeverResolves(t *testing.T) {
	a := newGoAdapter(t)
	_, ok := a.ResolveImport("main.go", "fmt")
	require.False(t, ok)
}
