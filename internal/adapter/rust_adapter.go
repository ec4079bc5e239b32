package adapter

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// RustAdapter is a pragmatic, not fully semantic, indexer for Rust: fn,
// struct, enum, trait, impl, type, mod, const, static items; use
// declarations captured as whole-text module paths; pub presence drives
// visibility.
type RustAdapter struct {
	Base
	driver *syntaxdriver.Driver
}

func NewRustAdapter(driver *syntaxdriver.Driver) *RustAdapter {
	return &RustAdapter{
		Base:   NewBase("rust", []string{".rs"}, driver, syntaxdriver.LanguageRust),
		driver: driver,
	}
}

func (a *RustAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	tree, err := a.driver.Parse(ctx, syntaxdriver.LanguageRust, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	r := &rustWalk{source: source, uri: uri, result: &result, scope: newScopeStack("::")}
	r.walk(root)
	return result, nil
}

// ResolveImport is a no-op: `use` paths are module paths, not file paths.
func (a *RustAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	return "", false
}

func rustHasPub(node *sitter.Node, source []byte) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if ch := node.Child(i); ch != nil && nodeText(ch, source) == "pub" {
			return true
		}
	}
	return false
}

type rustWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (r *rustWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: r.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

func (r *rustWalk) pushSymbol(name string, kind types.SymbolKind, node, nameNode *sitter.Node, exported bool) types.SymbolID {
	id := types.NextSymbolID()
	r.result.Symbols = append(r.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Location:      r.loc(node, nameNode),
		Parent:        r.scope.parent(),
		Visibility:    visibilityFor(exported),
		Exported:      exported,
		QualifiedName: r.scope.qualify(name),
	})
	return id
}

func (r *rustWalk) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "use_declaration":
		r.analyzeUse(node)
		return
	case "function_item":
		r.analyzeFn(node)
		return
	case "struct_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindStruct, node, n, rustHasPub(node, r.source))
		}
		return
	case "enum_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindEnum, node, n, rustHasPub(node, r.source))
		}
		return
	case "trait_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindInterface, node, n, rustHasPub(node, r.source))
		}
		return
	case "impl_item":
		r.analyzeImpl(node)
		return
	case "type_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindClass, node, n, rustHasPub(node, r.source))
		}
		return
	case "mod_item":
		r.analyzeMod(node)
		return
	case "const_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindConstant, node, n, rustHasPub(node, r.source))
		}
		return
	case "static_item":
		if n := childByField(node, "name"); n != nil {
			r.pushSymbol(nodeText(n, r.source), types.SymbolKindVariable, node, n, rustHasPub(node, r.source))
		}
		return
	case "call_expression":
		r.analyzeCall(node)
		return
	case "macro_invocation":
		if m := childByField(node, "macro"); m != nil {
			r.result.Calls = append(r.result.Calls, types.CallInfo{
				CalleeName: lastSegment(nodeText(m, r.source)),
				Location:   nodeRange(node),
			})
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		r.walk(node.Child(i))
	}
}

func (r *rustWalk) analyzeUse(node *sitter.Node) {
	text := strings.TrimSpace(nodeText(node, r.source))
	text = strings.TrimPrefix(text, "use")
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.result.Imports = append(r.result.Imports, types.ImportInfo{ModulePath: text, Location: nodeRange(node)})
}

func (r *rustWalk) analyzeFn(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, r.source)
	exported := rustHasPub(node, r.source)
	id := r.pushSymbol(name, types.SymbolKindFunction, node, nameNode, exported)

	if body := childByField(node, "body"); body != nil {
		r.scope.push(id, name)
		r.walk(body)
		r.scope.pop()
	}
}

// analyzeImpl descends into an impl block's associated functions so they
// are qualified under the implementing type, and records `impl Trait for
// Type` as a TypeRelation.
func (r *rustWalk) analyzeImpl(node *sitter.Node) {
	typeNode := childByField(node, "type")
	traitNode := childByField(node, "trait")

	typeName := ""
	if typeNode != nil {
		typeName = nodeText(typeNode, r.source)
	}
	if traitNode != nil && typeName != "" {
		r.result.TypeRelations = append(r.result.TypeRelations, types.TypeRelationInfo{
			ChildName:    typeName,
			ParentName:   nodeText(traitNode, r.source),
			IsImplements: true,
			Location:     nodeRange(node),
		})
	}

	body := childByField(node, "body")
	if body == nil {
		return
	}
	if typeName != "" {
		r.scope.pushNameOnly(typeName)
		defer r.scope.pop()
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		r.walk(body.Child(i))
	}
}

func (r *rustWalk) analyzeMod(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, r.source)
	exported := rustHasPub(node, r.source)
	id := r.pushSymbol(name, types.SymbolKindModule, node, nameNode, exported)

	if body := childByField(node, "body"); body != nil {
		r.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			r.walk(body.Child(i))
		}
		r.scope.pop()
	}
}

func (r *rustWalk) analyzeCall(node *sitter.Node) {
	fn := childByField(node, "function")
	if fn == nil {
		return
	}
	text := nodeText(fn, r.source)
	callee := lastSegment(text)
	qualified := ""
	if strings.Contains(text, "::") || strings.Contains(text, ".") {
		qualified = text
	}
	r.result.Calls = append(r.result.Calls, types.CallInfo{
		CalleeName:    callee,
		QualifiedName: qualified,
		Location:      nodeRange(node),
	})
}
