package adapter

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// CppAdapter is a pragmatic, not fully semantic, indexer for C and C++
// sharing a single tree-sitter-cpp grammar (a superset of C's grammar):
// function definitions, struct/class/enum/namespace, typedefs, #include
// directives, call expressions. The `static` storage-class specifier on a
// function marks it not exported; everything else defaults to exported.
type CppAdapter struct {
	Base
	driver *syntaxdriver.Driver
}

func NewCppAdapter(driver *syntaxdriver.Driver) *CppAdapter {
	return &CppAdapter{
		Base: NewBase("cpp", []string{
			".c", ".h", ".cc", ".cpp", ".cxx", ".hpp", ".hh",
		}, driver, syntaxdriver.LanguageCpp),
		driver: driver,
	}
}

func (a *CppAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	tree, err := a.driver.Parse(ctx, syntaxdriver.LanguageCpp, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	c := &cppWalk{source: source, uri: uri, result: &result, scope: newScopeStack("::")}
	c.walk(root)
	return result, nil
}

// ResolveImport resolves a `#include "x.h"` path relative to the including
// file's directory. Angle-bracket includes (system headers) are left
// unresolved.
func (a *CppAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	importPath = strings.TrimSpace(importPath)
	if len(importPath) < 2 || importPath[0] != '"' || importPath[len(importPath)-1] != '"' {
		return "", false
	}
	inner := importPath[1 : len(importPath)-1]
	dir := parentDir(fromFile)
	if dir == "" {
		return "", false
	}
	return joinPath(dir, inner), true
}

type cppWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (c *cppWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: c.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

func (c *cppWalk) emit(name string, kind types.SymbolKind, full, selection *sitter.Node, exported bool) types.SymbolID {
	id := types.NextSymbolID()
	c.result.Symbols = append(c.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Location:      c.loc(full, selection),
		Parent:        c.scope.parent(),
		Visibility:    visibilityFor(exported),
		Exported:      exported,
		QualifiedName: c.scope.qualify(name),
	})
	return id
}

func (c *cppWalk) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "preproc_include":
		c.analyzeInclude(node)
		return
	case "function_definition":
		c.analyzeFunction(node)
		return
	case "class_specifier", "struct_specifier", "union_specifier":
		c.analyzeClassOrStruct(node)
		return
	case "enum_specifier":
		c.analyzeEnum(node)
		return
	case "namespace_definition":
		c.analyzeNamespace(node)
		return
	case "type_definition":
		c.analyzeTypedef(node)
		return
	case "preproc_def":
		c.analyzeMacro(node)
		return
	case "call_expression":
		c.analyzeCall(node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		c.walk(node.Child(i))
	}
}

// analyzeInclude captures the raw include target text, quoted or
// angle-bracketed, as the module path.
func (c *cppWalk) analyzeInclude(node *sitter.Node) {
	text := strings.TrimSpace(nodeText(node, c.source))
	text = strings.TrimPrefix(text, "#include")
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.result.Imports = append(c.result.Imports, types.ImportInfo{ModulePath: text, Location: nodeRange(node)})
}

func (c *cppWalk) analyzeFunction(node *sitter.Node) {
	declarator := childByField(node, "declarator")
	nameNode := findIdentifierInDeclarator(declarator)
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, c.source)
	exported := !cppHasStatic(node, c.source)
	id := c.emit(name, types.SymbolKindFunction, node, nameNode, exported)

	if body := childByField(node, "body"); body != nil {
		c.scope.push(id, name)
		c.walk(body)
		c.scope.pop()
	}
}

func (c *cppWalk) analyzeClassOrStruct(node *sitter.Node) {
	kind := types.SymbolKindClass
	switch node.Kind() {
	case "struct_specifier", "union_specifier":
		kind = types.SymbolKindStruct
	}
	nameNode := childByField(node, "name")
	if nameNode == nil {
		// Anonymous struct/class/union member: still walk its body for
		// nested declarations, but emit no symbol.
		if body := childByField(node, "body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				c.walk(body.Child(i))
			}
		}
		return
	}
	name := nodeText(nameNode, c.source)
	id := c.emit(name, kind, node, nameNode, true)

	if base := childByField(node, "base_class_clause"); base != nil {
		for i := uint(0); i < base.ChildCount(); i++ {
			if parent := base.Child(i); parent != nil && (parent.Kind() == "type_identifier" || parent.Kind() == "qualified_identifier") {
				c.result.TypeRelations = append(c.result.TypeRelations, types.TypeRelationInfo{
					ChildName:  name,
					ParentName: nodeText(parent, c.source),
					Location:   nodeRange(base),
				})
			}
		}
	}

	if body := childByField(node, "body"); body != nil {
		c.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			c.walk(body.Child(i))
		}
		c.scope.pop()
	}
}

func (c *cppWalk) analyzeEnum(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, c.source)
	c.emit(name, types.SymbolKindEnum, node, nameNode, true)
}

func (c *cppWalk) analyzeNamespace(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		if body := childByField(node, "body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				c.walk(body.Child(i))
			}
		}
		return
	}
	name := nodeText(nameNode, c.source)
	id := c.emit(name, types.SymbolKindNamespace, node, nameNode, true)

	if body := childByField(node, "body"); body != nil {
		c.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			c.walk(body.Child(i))
		}
		c.scope.pop()
	}
}

// analyzeTypedef handles `typedef struct { ... } Name;` and the simpler
// `typedef <type> Name;` form, both wrapped in a type_definition node.
func (c *cppWalk) analyzeTypedef(node *sitter.Node) {
	declarator := childByField(node, "declarator")
	nameNode := findIdentifierInDeclarator(declarator)
	if nameNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			c.walk(node.Child(i))
		}
		return
	}
	name := nodeText(nameNode, c.source)
	c.emit(name, types.SymbolKindClass, node, nameNode, true)

	if t := childByField(node, "type"); t != nil {
		switch t.Kind() {
		case "struct_specifier", "class_specifier", "enum_specifier":
			c.walk(t)
		}
	}
}

// analyzeMacro handles `#define NAME value`, emitting the macro name as a
// constant symbol. Function-like macros (`#define MAX(a,b) ...`) share the
// same preproc_def node shape and are captured the same way, by name only.
func (c *cppWalk) analyzeMacro(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, c.source)
	c.emit(name, types.SymbolKindConstant, node, nameNode, true)
}

func (c *cppWalk) analyzeCall(node *sitter.Node) {
	fn := childByField(node, "function")
	if fn == nil {
		return
	}
	text := nodeText(fn, c.source)
	callee := lastSegment(text)
	qualified := ""
	if strings.Contains(text, "::") || strings.Contains(text, ".") || strings.Contains(text, "->") {
		qualified = text
	}
	c.result.Calls = append(c.result.Calls, types.CallInfo{
		CalleeName:    callee,
		QualifiedName: qualified,
		Location:      nodeRange(node),
	})
}

// cppHasStatic reports whether a function_definition carries the `static`
// storage-class specifier, checked by scanning its direct children's text
// since tree-sitter-cpp doesn't expose storage class as a named field.
func cppHasStatic(node *sitter.Node, source []byte) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if ch := node.Child(i); ch != nil && nodeText(ch, source) == "static" {
			return true
		}
	}
	return false
}

// findIdentifierInDeclarator descends a (possibly pointer/array/function)
// declarator to find the innermost identifier, e.g. `*greet(User* u)` ->
// `greet`.
func findIdentifierInDeclarator(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == "identifier" || node.Kind() == "field_identifier" {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if id := findIdentifierInDeclarator(node.Child(i)); id != nil {
			return id
		}
	}
	return nil
}
