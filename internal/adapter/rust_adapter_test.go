package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

const rustSample = `use std::collections::HashMap;

pub const MAX_RETRIES: u32 = 3;

pub struct Greeter {
    name: String,
}

pub trait Greets {
    fn greet(&self) -> String;
}

impl Greets for Greeter {
    fn greet(&self) -> String {
        format!("hello, {}", self.name)
    }
}

fn helper() -> HashMap<String, String> {
    HashMap::new()
}
`

func newRustAdapter(t *testing.T) *RustAdapter {
	t.Helper()
	driver, err := syntaxdriver.New()
	require.NoError(t, err)
	t.Cleanup(driver.Close)
	return NewRustAdapter(driver)
}

func TestRustAdapter_CanHandle(t *testing.T) {
	a := newRustAdapter(t)
	require.True(t, a.CanHandle("main.rs"))
	require.False(t, a.CanHandle("main.go"))
}

func TestRustAdapter_ExtractsSymbolsAndImports(t *testing.T) {
	a := newRustAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.rs", []byte(rustSample))
	require.NoError(t, err)

	require.Len(t, result.Imports, 1)
	require.Equal(t, "std::collections::HashMap", result.Imports[0].ModulePath)

	names := make(map[string]types.SymbolKind)
	for _, sym := range result.Symbols {
		names[sym.Name] = sym.Kind
	}
	require.Equal(t, types.SymbolKindConstant, names["MAX_RETRIES"])
	require.Equal(t, types.SymbolKindStruct, names["Greeter"])
	require.Equal(t, types.SymbolKindInterface, names["Greets"])
	require.Equal(t, types.SymbolKindFunction, names["greet"])
	require.Equal(t, types.SymbolKindFunction, names["helper"])
}

func TestRustAdapter_MarksPubItemsExportedAndPublic(t *testing.T) {
	a := newRustAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.rs", []byte(rustSample))
	require.NoError(t, err)

	var sawStruct, sawHelper bool
	for _, sym := range result.Symbols {
		switch sym.Name {
		case "Greeter":
			sawStruct = true
			require.True(t, sym.Exported)
			require.Equal(t, types.VisibilityPublic, sym.Visibility)
		case "helper":
			sawHelper = true
			require.False(t, sym.Exported)
			require.Equal(t, types.VisibilityPrivate, sym.Visibility)
		}
	}
	require.True(t, sawStruct)
	require.True(t, sawHelper)
}

func TestRustAdapter_RecordsImplTraitAsTypeRelation(t *testing.T) {
	a := newRustAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.rs", []byte(rustSample))
	require.NoError(t, err)

	require.Len(t, result.TypeRelations, 1)
	rel := result.TypeRelations[0]
	require.Equal(t, "Greeter", rel.ChildName)
	require.Equal(t, "Greets", rel.ParentName)
	require.True(t, rel.IsImplements)
}

func TestRustAdapter_RecordsCallsInsideFunctionBodies(t *testing.T) {
	a := newRustAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.rs", []byte(rustSample))
	require.NoError(t, err)

	var calleeNames []string
	for _, c := range result.Calls {
		calleeNames = append(calleeNames, c.CalleeName)
	}
	require.Contains(t, calleeNames, "format")
	require.Contains(t, calleeNames, "new")
}

func TestRustAdapter_ResolveImportNeverResolves(t *testing.T) {
	a := newRustAdapter(t)
	_, ok := a.ResolveImport("main.rs", "std::collections::HashMap")
	require.False(t, ok)
}
