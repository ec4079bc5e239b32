package adapter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zixiao-technologies/logos/internal/types"
)

// nodeText returns the verbatim source text spanned by node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// nodeRange converts a tree-sitter node's span to a types.Range.
func nodeRange(node *sitter.Node) types.Range {
	start := node.StartPosition()
	end := node.EndPosition()
	return types.NewRange(uint32(start.Row), uint32(start.Column), uint32(end.Row), uint32(end.Column))
}

// lastSegment returns the final dot/scope-separated component of a
// qualified callee expression, e.g. "obj.inner.method" -> "method".
func lastSegment(qualified string) string {
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(qualified, sep); idx >= 0 {
			return qualified[idx+len(sep):]
		}
	}
	return qualified
}

// looksLikeKeywordArgument reports whether a textual parent-type expression
// is actually a keyword argument (Python `class X(metaclass=Y)`) rather than
// a base class, so type-relation extraction can skip it.
func looksLikeKeywordArgument(expr string) bool {
	return strings.Contains(expr, "=")
}

// childByField is a nil-safe wrapper around node.ChildByFieldName.
func childByField(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(field)
}
