package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

const tsSample = `import { Logger } from "./logger";

export const MAX_RETRIES = 3;

export interface Greeter {
  greet(): string;
}

export class ConsoleGreeter implements Greeter {
  name: string;

  constructor(name: string) {
    this.name = name;
  }

  greet(): string {
    return Logger.format(this.name);
  }
}

function helper() {
  return new ConsoleGreeter("x");
}
`

func newTypeScriptAdapter(t *testing.T) *TypeScriptAdapter {
	t.Helper()
	driver, err := syntaxdriver.New()
	require.NoError(t, err)
	t.Cleanup(driver.Close)
	return NewTypeScriptAdapter(driver)
}

func TestTypeScriptAdapter_CanHandle(t *testing.T) {
	a := newTypeScriptAdapter(t)
	require.True(t, a.CanHandle("index.ts"))
	require.True(t, a.CanHandle("component.tsx"))
	require.True(t, a.CanHandle("main.js"))
	require.False(t, a.CanHandle("main.py"))
}

func TestTypeScriptAdapter_ExtractsSymbolsAndImports(t *testing.T) {
	a := newTypeScriptAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.ts", []byte(tsSample))
	require.NoError(t, err)

	require.Len(t, result.Imports, 1)
	require.Equal(t, "./logger", result.Imports[0].ModulePath)

	names := make(map[string]types.SymbolKind)
	for _, sym := range result.Symbols {
		names[sym.Name] = sym.Kind
	}
	require.Equal(t, types.SymbolKindConstant, names["MAX_RETRIES"])
	require.Equal(t, types.SymbolKindInterface, names["Greeter"])
	require.Equal(t, types.SymbolKindClass, names["ConsoleGreeter"])
	require.Equal(t, types.SymbolKindConstructor, names["constructor"])
	require.Equal(t, types.SymbolKindMethod, names["greet"])
}

func TestTypeScriptAdapter_MarksExportedDeclarationsExported(t *testing.T) {
	a := newTypeScriptAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.ts", []byte(tsSample))
	require.NoError(t, err)

	var sawClass, sawHelper bool
	for _, sym := range result.Symbols {
		switch sym.Name {
		case "ConsoleGreeter":
			sawClass = true
			require.True(t, sym.Exported)
		case "helper":
			sawHelper = true
			require.False(t, sym.Exported, "helper is declared without export")
		}
	}
	require.True(t, sawClass)
	require.True(t, sawHelper)
}

func TestTypeScriptAdapter_RecordsHeritageAsTypeRelation(t *testing.T) {
	a := newTypeScriptAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.ts", []byte(tsSample))
	require.NoError(t, err)

	require.Len(t, result.TypeRelations, 1)
	rel := result.TypeRelations[0]
	require.Equal(t, "ConsoleGreeter", rel.ChildName)
	require.Equal(t, "Greeter", rel.ParentName)
	require.True(t, rel.IsImplements)
}

func TestTypeScriptAdapter_RecordsCallsAndConstructorCalls(t *testing.T) {
	a := newTypeScriptAdapter(t)
	result, err := a.Analyze(context.Background(), "file:///sample.ts", []byte(tsSample))
	require.NoError(t, err)

	var sawFormat, sawConstructorCall bool
	for _, c := range result.Calls {
		if c.CalleeName == "format" {
			sawFormat = true
		}
		if c.CalleeName == "ConsoleGreeter" && c.IsConstructor {
			sawConstructorCall = true
		}
	}
	require.True(t, sawFormat)
	require.True(t, sawConstructorCall)
}

func TestTypeScriptAdapter_ResolveImportRelativePathOnly(t *testing.T) {
	a := newTypeScriptAdapter(t)
	resolved, ok := a.ResolveImport("/proj/src/main.ts", "./logger")
	require.True(t, ok)
	require.Equal(t, "/proj/src/./logger.ts", resolved)

	_, ok = a.ResolveImport("/proj/src/main.ts", "react")
	require.False(t, ok)
}
