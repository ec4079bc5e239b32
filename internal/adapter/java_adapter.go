package adapter

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// JavaAdapter is a pragmatic indexer for Java: classes/interfaces/enums,
// methods, constructors, fields; import declarations; public/protected
// modifiers drive exported, everything else (including package-private) is
// Private and not exported.
type JavaAdapter struct {
	Base
	driver *syntaxdriver.Driver
}

func NewJavaAdapter(driver *syntaxdriver.Driver) *JavaAdapter {
	return &JavaAdapter{
		Base:   NewBase("java", []string{".java"}, driver, syntaxdriver.LanguageJava),
		driver: driver,
	}
}

func (a *JavaAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	tree, err := a.driver.Parse(ctx, syntaxdriver.LanguageJava, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	j := &javaWalk{source: source, uri: uri, result: &result, scope: newScopeStack(".")}
	j.walk(root)
	return result, nil
}

// ResolveImport is a no-op: Java imports are classpaths, not file paths.
func (a *JavaAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	return "", false
}

func javaHasModifier(node *sitter.Node, source []byte, modifier string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if ch := node.Child(i); ch != nil && nodeText(ch, source) == modifier {
			return true
		}
	}
	return false
}

func javaVisibilityAndExport(node *sitter.Node, source []byte) (types.Visibility, bool) {
	switch {
	case javaHasModifier(node, source, "public"):
		return types.VisibilityPublic, true
	case javaHasModifier(node, source, "protected"):
		return types.VisibilityProtected, true
	default:
		return types.VisibilityPrivate, false
	}
}

type javaWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (j *javaWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: j.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

func (j *javaWalk) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_declaration":
		j.analyzeImport(node)
		return
	case "class_declaration":
		j.analyzeType(node, types.SymbolKindClass)
		return
	case "interface_declaration":
		j.analyzeType(node, types.SymbolKindInterface)
		return
	case "enum_declaration":
		j.analyzeType(node, types.SymbolKindEnum)
		return
	case "record_declaration":
		j.analyzeType(node, types.SymbolKindStruct)
		return
	case "method_declaration":
		j.analyzeMethod(node, types.SymbolKindMethod)
		return
	case "constructor_declaration":
		j.analyzeMethod(node, types.SymbolKindConstructor)
		return
	case "field_declaration":
		j.analyzeField(node)
		return
	case "method_invocation":
		j.analyzeCall(node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		j.walk(node.Child(i))
	}
}

func (j *javaWalk) analyzeImport(node *sitter.Node) {
	text := strings.TrimSpace(nodeText(node, j.source))
	text = strings.TrimPrefix(text, "import")
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	j.result.Imports = append(j.result.Imports, types.ImportInfo{ModulePath: text, Location: nodeRange(node)})
}

func (j *javaWalk) analyzeType(node *sitter.Node, kind types.SymbolKind) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, j.source)
	visibility, exported := javaVisibilityAndExport(node, j.source)

	id := types.NextSymbolID()
	j.result.Symbols = append(j.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Location:      j.loc(node, nameNode),
		Parent:        j.scope.parent(),
		Visibility:    visibility,
		Exported:      exported,
		QualifiedName: j.scope.qualify(name),
	})

	if body := childByField(node, "body"); body != nil {
		j.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			j.walk(body.Child(i))
		}
		j.scope.pop()
	}
}

func (j *javaWalk) analyzeMethod(node *sitter.Node, kind types.SymbolKind) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, j.source)
	visibility, exported := javaVisibilityAndExport(node, j.source)

	j.result.Symbols = append(j.result.Symbols, types.SmartSymbol{
		ID:            types.NextSymbolID(),
		Name:          name,
		Kind:          kind,
		Location:      j.loc(node, nameNode),
		Parent:        j.scope.parent(),
		Visibility:    visibility,
		Exported:      exported,
		QualifiedName: j.scope.qualify(name),
	})

	if body := childByField(node, "body"); body != nil {
		j.walk(body)
	}
}

func (j *javaWalk) analyzeField(node *sitter.Node) {
	visibility, exported := javaVisibilityAndExport(node, j.source)
	for i := uint(0); i < node.ChildCount(); i++ {
		ch := node.Child(i)
		if ch == nil || ch.Kind() != "variable_declarator" {
			continue
		}
		nameNode := childByField(ch, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, j.source)
		j.result.Symbols = append(j.result.Symbols, types.SmartSymbol{
			ID:            types.NextSymbolID(),
			Name:          name,
			Kind:          types.SymbolKindField,
			Location:      j.loc(ch, nameNode),
			Parent:        j.scope.parent(),
			Visibility:    visibility,
			Exported:      exported,
			QualifiedName: j.scope.qualify(name),
		})
	}
}

func (j *javaWalk) analyzeCall(node *sitter.Node) {
	name := ""
	if n := childByField(node, "name"); n != nil {
		name = nodeText(n, j.source)
	} else {
		name = nodeText(node, j.source)
	}
	j.result.Calls = append(j.result.Calls, types.CallInfo{
		CalleeName: name,
		Location:   nodeRange(node),
	})
}
