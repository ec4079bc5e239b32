package adapter

import "github.com/zixiao-technologies/logos/internal/types"

// scopeFrame is one enclosing symbol on the scope stack: its id (for
// parent-linking) and its name (for qualified-name composition).
type scopeFrame struct {
	id   types.SymbolID
	name string
}

// scopeStack tracks the chain of enclosing symbols while walking a tree,
// so a newly emitted symbol can record its parent id and a qualified name.
type scopeStack struct {
	separator string
	frames    []scopeFrame
}

func newScopeStack(separator string) *scopeStack {
	return &scopeStack{separator: separator}
}

// push enters a new scope owned by the given symbol.
func (s *scopeStack) push(id types.SymbolID, name string) {
	s.frames = append(s.frames, scopeFrame{id: id, name: name})
}

// pop leaves the innermost scope.
func (s *scopeStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// parent returns the id of the innermost enclosing scope, or nil at the
// top level or when the innermost frame is a name-only qualification scope
// (id 0, the reserved "no symbol" value — see pushNameOnly).
func (s *scopeStack) parent() *types.SymbolID {
	if len(s.frames) == 0 {
		return nil
	}
	id := s.frames[len(s.frames)-1].id
	if id == 0 {
		return nil
	}
	return &id
}

// pushNameOnly enters a scope that contributes to qualified-name composition
// but has no backing symbol id (e.g. a Rust impl block's implementing type,
// tracked locally rather than carried over from the type's own declaration).
func (s *scopeStack) pushNameOnly(name string) {
	s.push(0, name)
}

// qualify composes name with every enclosing scope name, joined by the
// adapter's separator, e.g. "pkg.Type.Method" or "ns::Class::method".
func (s *scopeStack) qualify(name string) string {
	if len(s.frames) == 0 {
		return name
	}
	out := ""
	for _, f := range s.frames {
		if f.name == "" {
			continue
		}
		if out != "" {
			out += s.separator
		}
		out += f.name
	}
	if out == "" {
		return name
	}
	return out + s.separator + name
}

// depth reports the current scope nesting depth.
func (s *scopeStack) depth() int {
	return len(s.frames)
}
