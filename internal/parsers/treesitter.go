package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// extractLines extracts source code lines from startLine to endLine (1-indexed).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}

	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

// nodeLines returns the 1-indexed inclusive line range a node covers, clamped to totalLines.
// A node whose end position sits at column 0 of a later row ends on the previous line.
func nodeLines(node *sitter.Node, totalLines int) (int, int) {
	return lineRange(node.StartPosition(), node.EndPosition(), totalLines)
}

// codeLines is nodeLines ending at the last token that is not a comment.
// The grammar attaches comments trailing a block to that block.
func codeLines(node *sitter.Node, totalLines int) (int, int) {
	return lineRange(node.StartPosition(), codeEnd(node), totalLines)
}

// codeEnd returns the end position of the last non-comment, non-empty token under node.
func codeEnd(node *sitter.Node) sitter.Point {
	for i := int(node.ChildCount()) - 1; i >= 0; i-- {
		child := node.Child(uint(i))
		if child == nil || child.Kind() == "comment" || child.StartByte() == child.EndByte() {
			continue
		}
		return codeEnd(child)
	}
	return node.EndPosition()
}

func lineRange(startPos, endPos sitter.Point, totalLines int) (int, int) {
	start := int(startPos.Row) + 1
	end := int(endPos.Row) + 1
	if endPos.Column == 0 && int(endPos.Row) >= start {
		end = int(endPos.Row)
	}
	if totalLines > 0 && end > totalLines {
		end = totalLines
	}
	if start > end {
		start = end
	}
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// namedChildren returns the named children of a node, skipping comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child == nil || child.Kind() == "comment" {
			continue
		}
		results = append(results, child)
	}
	return results
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// compactText strips all whitespace, used for dotted names that may span spaces.
func compactText(node *sitter.Node, source []byte) string {
	return strings.Join(strings.Fields(extractNodeText(node, source)), "")
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}
