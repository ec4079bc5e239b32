package adapter

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/syntaxdriver"
	"github.com/zixiao-technologies/logos/internal/types"
)

// PythonAdapter extracts symbols, imports, exports, calls and base-class
// relationships from Python source.
type PythonAdapter struct {
	Base
	driver *syntaxdriver.Driver
}

func NewPythonAdapter(driver *syntaxdriver.Driver) *PythonAdapter {
	return &PythonAdapter{
		Base:   NewBase("python", []string{".py", ".pyi", ".pyw"}, driver, syntaxdriver.LanguagePython),
		driver: driver,
	}
}

func (a *PythonAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	var result types.AnalysisResult

	tree, err := a.driver.Parse(ctx, syntaxdriver.LanguagePython, source)
	if err != nil {
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}

	p := &pyWalk{source: source, uri: uri, result: &result, scope: newScopeStack(".")}
	p.walk(root)
	return result, nil
}

// ResolveImport resolves Python relative imports (leading dots) against the
// file's directory; absolute/stdlib imports are left unresolved.
func (a *PythonAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, ".") {
		return "", false
	}
	dir := parentDir(fromFile)

	levels := 0
	for levels < len(importPath) && importPath[levels] == '.' {
		levels++
	}
	for i := 1; i < levels; i++ {
		dir = parentDir(dir)
	}

	module := strings.TrimLeft(importPath, ".")
	if module == "" {
		return joinPath(dir, "__init__.py"), true
	}
	parts := strings.ReplaceAll(module, ".", "/")
	return joinPath(dir, parts+".py"), true
}

func parentDir(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return "."
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}

func pyVisibilityFor(name string) (types.Visibility, bool) {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return types.VisibilityPrivate, false
	case strings.HasPrefix(name, "_"):
		return types.VisibilityProtected, false
	default:
		return types.VisibilityPublic, true
	}
}

type pyWalk struct {
	source []byte
	uri    string
	result *types.AnalysisResult
	scope  *scopeStack
}

func (p *pyWalk) loc(full, selection *sitter.Node) types.SymbolLocation {
	return types.SymbolLocation{URI: p.uri, Range: nodeRange(full), SelectionRange: nodeRange(selection)}
}

func (p *pyWalk) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		p.analyzeImport(node)
		return
	case "import_from_statement":
		p.analyzeImportFrom(node)
		return
	case "function_definition":
		p.analyzeFunction(node)
		return
	case "class_definition":
		p.analyzeClass(node)
		return
	case "assignment", "augmented_assignment":
		if p.scope.depth() == 0 {
			p.analyzeAssignment(node)
		}
	case "call":
		p.analyzeCall(node)
		if args := childByField(node, "arguments"); args != nil {
			p.walk(args)
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walk(node.Child(i))
	}
}

func (p *pyWalk) analyzeImport(node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			mod := nodeText(child, p.source)
			p.result.Imports = append(p.result.Imports, types.ImportInfo{ModulePath: mod, Location: nodeRange(node)})
		case "aliased_import":
			nameNode := childByField(child, "name")
			aliasNode := childByField(child, "alias")
			if nameNode == nil {
				continue
			}
			imp := types.ImportInfo{ModulePath: nodeText(nameNode, p.source), Location: nodeRange(node)}
			if aliasNode != nil {
				imp.Alias = nodeText(aliasNode, p.source)
			}
			p.result.Imports = append(p.result.Imports, imp)
		}
	}
}

func (p *pyWalk) analyzeImportFrom(node *sitter.Node) {
	moduleName := ""
	if m := childByField(node, "module_name"); m != nil {
		moduleName = nodeText(m, p.source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name", "identifier":
			p.result.Imports = append(p.result.Imports, types.ImportInfo{
				ModulePath: moduleName,
				Alias:      nodeText(child, p.source),
				Location:   nodeRange(node),
			})
		case "aliased_import":
			nameNode := childByField(child, "name")
			aliasNode := childByField(child, "alias")
			if nameNode == nil {
				continue
			}
			imp := types.ImportInfo{ModulePath: moduleName, Location: nodeRange(node)}
			imp.Alias = nodeText(nameNode, p.source)
			if aliasNode != nil {
				imp.Alias = nodeText(aliasNode, p.source)
			}
			p.result.Imports = append(p.result.Imports, imp)
		case "wildcard_import":
			p.result.Imports = append(p.result.Imports, types.ImportInfo{ModulePath: moduleName, Alias: "*", Location: nodeRange(node)})
		}
	}
}

func (p *pyWalk) decoratorsOf(node *sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	var text strings.Builder
	for i := uint(0); i < parent.ChildCount(); i++ {
		sib := parent.Child(i)
		if sib != nil && sib.Kind() == "decorator" {
			text.WriteString(nodeText(sib, p.source))
			text.WriteByte(' ')
		}
	}
	return text.String()
}

func (p *pyWalk) analyzeFunction(node *sitter.Node) {
	nameNode := childByField(node, "name")
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, p.source)
	}
	visibility, _ := pyVisibilityFor(name)

	decorators := p.decoratorsOf(node)
	isProperty := strings.Contains(decorators, "property")

	kind := types.SymbolKindFunction
	switch {
	case isProperty:
		kind = types.SymbolKindProperty
	case p.scope.depth() > 0:
		kind = types.SymbolKindMethod
	}

	var loc types.SymbolLocation
	if nameNode != nil {
		loc = p.loc(node, nameNode)
	} else {
		loc = p.loc(node, node)
	}

	var typeInfo *types.TypeInfo
	if rt := childByField(node, "return_type"); rt != nil {
		expr := nodeText(rt, p.source)
		ti := types.SimpleType(expr)
		ret := types.SimpleType(expr)
		ti.ReturnType = &ret
		typeInfo = &ti
	}

	exported := p.scope.depth() == 0 && !strings.HasPrefix(name, "_")
	if exported {
		visibility = types.VisibilityPublic
		p.result.Exports = append(p.result.Exports, types.ExportInfo{Name: name, Location: nodeRange(node)})
	}

	id := types.NextSymbolID()
	p.result.Symbols = append(p.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Location:      loc,
		Parent:        p.scope.parent(),
		Visibility:    visibility,
		Exported:      exported,
		QualifiedName: p.scope.qualify(name),
		TypeInfo:      typeInfo,
	})

	if body := childByField(node, "body"); body != nil {
		p.scope.push(id, name)
		p.walk(body)
		p.scope.pop()
	}
}

func (p *pyWalk) analyzeClass(node *sitter.Node) {
	nameNode := childByField(node, "name")
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, p.source)
	}
	visibility, _ := pyVisibilityFor(name)

	var loc types.SymbolLocation
	if nameNode != nil {
		loc = p.loc(node, nameNode)
	} else {
		loc = p.loc(node, node)
	}

	exported := p.scope.depth() == 0 && !strings.HasPrefix(name, "_")
	if exported {
		p.result.Exports = append(p.result.Exports, types.ExportInfo{Name: name, Location: nodeRange(node)})
	}

	id := types.NextSymbolID()
	p.result.Symbols = append(p.result.Symbols, types.SmartSymbol{
		ID:            id,
		Name:          name,
		Kind:          types.SymbolKindClass,
		Location:      loc,
		Parent:        p.scope.parent(),
		Visibility:    visibility,
		Exported:      exported,
		QualifiedName: p.scope.qualify(name),
	})

	if superclasses := childByField(node, "superclasses"); superclasses != nil {
		for i := uint(0); i < superclasses.ChildCount(); i++ {
			base := superclasses.Child(i)
			if base == nil {
				continue
			}
			switch base.Kind() {
			case "(", ")", ",":
				continue
			}
			baseName := nodeText(base, p.source)
			if looksLikeKeywordArgument(baseName) {
				continue
			}
			p.result.TypeRelations = append(p.result.TypeRelations, types.TypeRelationInfo{
				ChildName:  name,
				ParentName: baseName,
				Location:   nodeRange(base),
			})
		}
	}

	if body := childByField(node, "body"); body != nil {
		p.scope.push(id, name)
		for i := uint(0); i < body.ChildCount(); i++ {
			p.walk(body.Child(i))
		}
		p.scope.pop()
	}
}

func (p *pyWalk) analyzeAssignment(node *sitter.Node) {
	left := childByField(node, "left")
	if left == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		name := nodeText(left, p.source)
		isConstant := name == strings.ToUpper(name) && strings.TrimRight(name, "_") != ""
		kind := types.SymbolKindVariable
		if isConstant {
			kind = types.SymbolKindConstant
		}
		visibility, _ := pyVisibilityFor(name)
		exported := !strings.HasPrefix(name, "_")
		if exported {
			p.result.Exports = append(p.result.Exports, types.ExportInfo{Name: name, Location: nodeRange(node)})
		}
		p.result.Symbols = append(p.result.Symbols, types.SmartSymbol{
			ID:            types.NextSymbolID(),
			Name:          name,
			Kind:          kind,
			Location:      p.loc(node, left),
			Parent:        p.scope.parent(),
			Visibility:    visibility,
			Exported:      exported,
			QualifiedName: p.scope.qualify(name),
		})
	case "pattern_list", "tuple_pattern":
		for i := uint(0); i < left.ChildCount(); i++ {
			child := left.Child(i)
			if child == nil || child.Kind() != "identifier" {
				continue
			}
			name := nodeText(child, p.source)
			visibility, _ := pyVisibilityFor(name)
			p.result.Symbols = append(p.result.Symbols, types.SmartSymbol{
				ID:            types.NextSymbolID(),
				Name:          name,
				Kind:          types.SymbolKindVariable,
				Location:      p.loc(node, child),
				Parent:        p.scope.parent(),
				Visibility:    visibility,
				QualifiedName: p.scope.qualify(name),
			})
		}
	}
}

func (p *pyWalk) analyzeCall(node *sitter.Node) {
	fn := childByField(node, "function")
	if fn == nil {
		return
	}
	var calleeName, qualified string
	switch fn.Kind() {
	case "identifier":
		calleeName = nodeText(fn, p.source)
	case "attribute":
		attr := childByField(fn, "attribute")
		if attr == nil {
			return
		}
		calleeName = nodeText(attr, p.source)
		qualified = nodeText(fn, p.source)
	default:
		return
	}
	p.result.Calls = append(p.result.Calls, types.CallInfo{
		CalleeName:    calleeName,
		QualifiedName: qualified,
		Location:      nodeRange(node),
	})
}
