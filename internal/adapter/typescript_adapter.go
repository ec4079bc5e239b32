package adapter

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// TypeScriptAdapter covers the TypeScript/JavaScript family: .ts, .tsx, .js,
// .jsx. Visibility in this family has no access modifiers at the
// declaration-emitting node kinds spec.md names, so Exported is the only
// signal: a declaration is exported iff it sits inside an export_statement.
type TypeScriptAdapter struct {
	Base
	driver *syntaxdriver.Driver
	lang   syntaxdriver.LanguageID
}

func NewTypeScriptAdapter(driver *syntaxdriver.Driver) *TypeScriptAdapter {
	return &TypeScriptAdapter{
		Base:   NewBase("typescript", []string{".ts", ".tsx", ".mts", ".js", ".jsx", ".mjs", ".cjs"}, driver, syntaxdriver.LanguageTypeScript),
		driver: driver,
		lang:   syntaxdriver.LanguageTypeScript,
	}
}

func (a *TypeScriptAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	lang := a.lang
	if strings.HasSuffix(uri, ".tsx") {
		lang = syntaxdriver.LanguageTSX
	} else if strings.HasSuffix(uri, ".js") || strings.HasSuffix(uri, ".jsx") || strings.HasSuffix(uri, ".mjs") || strings.HasSuffix(uri, ".cjs") {
		lang = syntaxdriver.LanguageJavaScript
	}

	tree, err := a.driver.Parse(ctx, lang, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	t := &tsWalk{source: source, uri: uri, result: &result, scope: newScopeStack(".")}
	t.walk(root, false)
	return result, nil
}

func (a *TypeScriptAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, ".") {
		return "", false
	}
	dir := parentDir(fromFile)
	candidates := []string{
		joinPath(dir, importPath+".ts"),
		joinPath(dir, importPath+".tsx"),
		joinPath(dir, importPath+".js"),
		joinPath(dir, importPath+".jsx"),
		joinPath(dir, importPath+"/index.ts"),
		joinPath(dir, importPath+"/index.js"),
	}
	return candidates[0], true
}

type tsWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (t *tsWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: t.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

// walk dispatches on node kind. exported is true while descending the
// immediate children of an export_statement.
func (t *tsWalk) walk(node *sitter.Node, exported bool) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		t.analyzeImport(node)
		return
	case "export_statement":
		t.analyzeExport(node)
		return
	case "function_declaration", "generator_function_declaration":
		t.analyzeFunction(node, exported)
		return
	case "class_declaration":
		t.analyzeClass(node, exported)
		return
	case "interface_declaration":
		t.analyzeInterface(node, exported)
		return
	case "enum_declaration":
		t.analyzeEnum(node, exported)
		return
	case "type_alias_declaration":
		t.analyzeTypeAlias(node, exported)
		return
	case "method_definition":
		t.analyzeMethod(node)
		return
	case "property_signature", "public_field_definition":
		t.analyzeField(node, exported)
		return
	case "variable_declaration", "lexical_declaration":
		t.analyzeVariableDeclaration(node, exported)
		return
	case "call_expression":
		t.analyzeCall(node)
	case "new_expression":
		if ctor := childByField(node, "constructor"); ctor != nil {
			text := nodeText(ctor, t.source)
			qualified := ""
			if strings.Contains(text, ".") {
				qualified = text
			}
			t.result.Calls = append(t.result.Calls, types.CallInfo{
				CalleeName:    lastSegment(text),
				QualifiedName: qualified,
				Location:      nodeRange(node),
				IsConstructor: true,
			})
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		t.walk(node.Child(i), exported)
	}
}

func (t *tsWalk) analyzeImport(node *sitter.Node) {
	src := childByField(node, "source")
	if src == nil {
		return
	}
	path := strings.Trim(nodeText(src, t.source), "\"'`")
	t.result.Imports = append(t.result.Imports, types.ImportInfo{ModulePath: path, Location: nodeRange(node)})
}

func (t *tsWalk) analyzeExport(node *sitter.Node) {
	decl := childByField(node, "declaration")
	if decl == nil {
		// re-export / export list form, no nested declaration to recurse into.
		return
	}
	name := declarationName(decl, t.source)
	if name != "" {
		t.result.Exports = append(t.result.Exports, types.ExportInfo{Name: name, Location: nodeRange(node)})
	}
	t.walk(decl, true)
}

func declarationName(node *sitter.Node, source []byte) string {
	if n := childByField(node, "name"); n != nil {
		return nodeText(n, source)
	}
	return ""
}

func (t *tsWalk) analyzeFunction(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	name := ""
	var loc types.SymbolLocation
	if nameNode != nil {
		name = nodeText(nameNode, t.source)
		loc = t.loc(node, nameNode)
	} else {
		loc = t.loc(node, node)
	}

	id := types.NextSymbolID()
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindFunction,
		Location:      loc,
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})

	if body := childByField(node, "body"); body != nil {
		t.scope.push(id, name)
		t.walk(body, false)
		t.scope.pop()
	}
}

func (t *tsWalk) analyzeClass(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	name := ""
	var loc types.SymbolLocation
	if nameNode != nil {
		name = nodeText(nameNode, t.source)
		loc = t.loc(node, nameNode)
	} else {
		loc = t.loc(node, node)
	}

	id := types.NextSymbolID()
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindClass,
		Location:      loc,
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})

	t.extractHeritage(node, name)

	if body := childByField(node, "body"); body != nil {
		t.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			t.walk(body.Child(i), false)
		}
		t.scope.pop()
	}
}

// extractHeritage records `extends`/`implements` clauses as TypeRelations.
func (t *tsWalk) extractHeritage(node *sitter.Node, childName string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		clause := node.Child(i)
		if clause == nil {
			continue
		}
		switch clause.Kind() {
		case "class_heritage", "extends_clause", "implements_clause", "extends_type_clause":
			if clause.Kind() == "class_heritage" {
				// TypeScript nests extends_clause/implements_clause inside
				// class_heritage; JavaScript puts the parent expression here directly.
				t.extractHeritage(clause, childName)
			}
			implements := clause.Kind() == "implements_clause"
			for j := uint(0); j < clause.ChildCount(); j++ {
				c := clause.Child(j)
				if c == nil || !strings.Contains(c.Kind(), "identifier") && !strings.Contains(c.Kind(), "type") {
					continue
				}
				t.result.TypeRelations = append(t.result.TypeRelations, types.TypeRelationInfo{
					ChildName:    childName,
					ParentName:   nodeText(c, t.source),
					IsImplements: implements,
					Location:     nodeRange(c),
				})
			}
		}
	}
}

func (t *tsWalk) analyzeInterface(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, t.source)

	id := types.NextSymbolID()
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindInterface,
		Location:      t.loc(node, nameNode),
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})

	t.extractHeritage(node, name)

	if body := childByField(node, "body"); body != nil {
		t.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			t.walk(body.Child(i), false)
		}
		t.scope.pop()
	}
}

func (t *tsWalk) analyzeEnum(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, t.source)
	id := types.NextSymbolID()
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindEnum,
		Location:      t.loc(node, nameNode),
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})

	if body := childByField(node, "body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			member := body.Child(i)
			if member == nil || !strings.Contains(member.Kind(), "enum") {
				continue
			}
			memberName := nodeText(member, t.source)
			t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
				ID:            types.NextSymbolID(),
				Name:          memberName,
				Kind:          types.SymbolKindEnumMember,
				Location:      t.loc(member, member),
				Parent:        &id,
				QualifiedName: t.scope.qualify(name) + "." + memberName,
			})
		}
	}
}

func (t *tsWalk) analyzeTypeAlias(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, t.source)
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            types.NextSymbolID(),
		Name:          name,
		Kind:          types.SymbolKindClass,
		Location:      t.loc(node, nameNode),
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})
}

func (t *tsWalk) analyzeMethod(node *sitter.Node) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, t.source)
	kind := types.SymbolKindMethod
	if name == "constructor" {
		kind = types.SymbolKindConstructor
	}

	id := types.NextSymbolID()
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Location:      t.loc(node, nameNode),
		Parent:        t.scope.parent(),
		QualifiedName: t.scope.qualify(name),
	})

	if body := childByField(node, "body"); body != nil {
		t.scope.push(id, name)
		t.walk(body, false)
		t.scope.pop()
	}
}

func (t *tsWalk) analyzeField(node *sitter.Node, exported bool) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, t.source)
	t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
		ID:            types.NextSymbolID(),
		Name:          name,
		Kind:          types.SymbolKindProperty,
		Location:      t.loc(node, nameNode),
		Parent:        t.scope.parent(),
		Exported:      exported,
		QualifiedName: t.scope.qualify(name),
	})
}

func (t *tsWalk) analyzeVariableDeclaration(node *sitter.Node, exported bool) {
	isConst := node.Kind() == "lexical_declaration" && node.ChildCount() > 0 && nodeText(node.Child(0), t.source) == "const"

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := childByField(child, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, t.source)

		kind := types.SymbolKindVariable
		if isConst {
			kind = types.SymbolKindConstant
		}
		if value := childByField(child, "value"); value != nil {
			switch value.Kind() {
			case "arrow_function", "function_expression", "generator_function":
				kind = types.SymbolKindFunction
			case "class":
				kind = types.SymbolKindClass
			}
		}

		t.result.Symbols = append(t.result.Symbols, types.SmartSymbol{
			ID:            types.NextSymbolID(),
			Name:          name,
			Kind:          kind,
			Location:      t.loc(node, nameNode),
			Parent:        t.scope.parent(),
			Exported:      exported,
			QualifiedName: t.scope.qualify(name),
		})
	}
}

func (t *tsWalk) analyzeCall(node *sitter.Node) {
	fn := childByField(node, "function")
	if fn == nil {
		return
	}
	text := nodeText(fn, t.source)
	callee := lastSegment(text)
	qualified := ""
	if strings.Contains(text, ".") {
		qualified = text
	}

	isConstructor := false
	if parent := node.Parent(); parent != nil && parent.Kind() == "new_expression" {
		isConstructor = true
	}

	t.result.Calls = append(t.result.Calls, types.CallInfo{
		CalleeName:    callee,
		QualifiedName: qualified,
		Location:      nodeRange(node),
		IsConstructor: isConstructor,
	})
}
