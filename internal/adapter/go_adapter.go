package adapter

import (
	"context"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// GoAdapter extracts symbols, imports, and calls from Go source. Go has no
// class-inheritance or interface-adoption syntax in the C++/TS sense, so it
// never emits TypeRelations — pragmatic, not fully semantic, matching the
// upstream daemon's own Go support.
type GoAdapter struct {
	Base
	driver *syntaxdriver.Driver
}

// NewGoAdapter builds the Go language adapter.
func NewGoAdapter(driver *syntaxdriver.Driver) *GoAdapter {
	return &GoAdapter{
		Base:   NewBase("go", []string{".go"}, driver, syntaxdriver.LanguageGo),
		driver: driver,
	}
}

func (a *GoAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	tree, err := a.driver.Parse(ctx, syntaxdriver.LanguageGo, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	g := &goWalk{source: source, uri: uri, result: &result, scope: newScopeStack(".")}
	g.walk(root)
	return result, nil
}

func (a *GoAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	// Go import paths are module paths, not file paths; not resolved by default.
	return "", false
}

func goIsExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

type goWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (g *goWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: g.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

func (g *goWalk) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_declaration":
		g.analyzeImport(node)
		return
	case "function_declaration":
		g.analyzeFunction(node)
		return
	case "method_declaration":
		g.analyzeMethod(node)
		return
	case "type_declaration":
		g.analyzeTypeDeclaration(node)
		return
	case "const_declaration", "var_declaration":
		g.analyzeValueDeclaration(node, node.Kind() == "const_declaration")
		return
	case "call_expression":
		g.analyzeCall(node)
		// fall through to visit nested calls in arguments
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		g.walk(node.Child(i))
	}
}

func (g *goWalk) collectByKind(node *sitter.Node, kind string, out *[]*sitter.Node) {
	if node == nil {
		return
	}
	if node.Kind() == kind {
		*out = append(*out, node)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		g.collectByKind(node.Child(i), kind, out)
	}
}

func (g *goWalk) analyzeImport(node *sitter.Node) {
	var specs []*sitter.Node
	g.collectByKind(node, "import_spec", &specs)
	for _, spec := range specs {
		pathNode := childByField(spec, "path")
		if pathNode == nil {
			continue
		}
		path := strings.Trim(nodeText(pathNode, g.source), "\"`")
		alias := ""
		if nameNode := childByField(spec, "name"); nameNode != nil {
			alias = nodeText(nameNode, g.source)
		}
		g.result.Imports = append(g.result.Imports, types.ImportInfo{
			ModulePath: path,
			Alias:      alias,
			Location:   nodeRange(spec),
		})
	}
}

func (g *goWalk) analyzeFunction(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, g.source)
	exported := goIsExported(name)

	id := types.NextSymbolID()
	sym := types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindFunction,
		Location:      g.loc(node, nameNode),
		Parent:        g.scope.parent(),
		Visibility:    visibilityFor(exported),
		Exported:      exported,
		QualifiedName: g.scope.qualify(name),
	}
	g.result.Symbols = append(g.result.Symbols, sym)

	if body := childByField(node, "body"); body != nil {
		g.scope.push(id, name)
		g.walk(body)
		g.scope.pop()
	}
}

func (g *goWalk) analyzeMethod(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, g.source)
	exported := goIsExported(name)

	id := types.NextSymbolID()
	sym := types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindMethod,
		Location:      g.loc(node, nameNode),
		Parent:        g.scope.parent(),
		Visibility:    visibilityFor(exported),
		Exported:      exported,
		QualifiedName: g.scope.qualify(name),
	}
	g.result.Symbols = append(g.result.Symbols, sym)

	if body := childByField(node, "body"); body != nil {
		g.scope.push(id, name)
		g.walk(body)
		g.scope.pop()
	}
}

func (g *goWalk) analyzeTypeDeclaration(node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "type_spec" {
			continue
		}
		nameNode := childByField(spec, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, g.source)
		exported := goIsExported(name)

		kind := types.SymbolKindClass
		if typeNode := childByField(spec, "type"); typeNode != nil {
			switch typeNode.Kind() {
			case "struct_type":
				kind = types.SymbolKindStruct
			case "interface_type":
				kind = types.SymbolKindInterface
			}
		}

		g.result.Symbols = append(g.result.Symbols, types.SmartSymbol{
			ID:            types.NextSymbolID(),
			Name:          name,
			Kind:          kind,
			Location:      g.loc(spec, nameNode),
			Parent:        g.scope.parent(),
			Visibility:    visibilityFor(exported),
			Exported:      exported,
			QualifiedName: g.scope.qualify(name),
		})
	}
}

func (g *goWalk) analyzeValueDeclaration(node *sitter.Node, isConst bool) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || (spec.Kind() != "const_spec" && spec.Kind() != "var_spec") {
			continue
		}
		nameNode := childByField(spec, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, g.source)
		exported := goIsExported(name)
		kind := types.SymbolKindVariable
		if isConst {
			kind = types.SymbolKindConstant
		}
		g.result.Symbols = append(g.result.Symbols, types.SmartSymbol{
			ID:            types.NextSymbolID(),
			Name:          name,
			Kind:          kind,
			Location:      g.loc(spec, nameNode),
			Parent:        g.scope.parent(),
			Visibility:    visibilityFor(exported),
			Exported:      exported,
			QualifiedName: g.scope.qualify(name),
		})
	}
}

func (g *goWalk) analyzeCall(node *sitter.Node) {
	fn := childByField(node, "function")
	if fn == nil {
		return
	}
	text := nodeText(fn, g.source)
	callee := lastSegment(text)
	qualified := ""
	if strings.Contains(text, ".") {
		qualified = text
	}
	g.result.Calls = append(g.result.Calls, types.CallInfo{
		CalleeName:    callee,
		QualifiedName: qualified,
		Location:      nodeRange(node),
	})
}

func visibilityFor(exported bool) types.Visibility {
	if exported {
		return types.VisibilityPublic
	}
	return types.VisibilityPrivate
}
