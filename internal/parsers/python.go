package parsers

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/codelens/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// errSyntax signals that the source is not valid Python.
var errSyntax = errors.New("python syntax error")

// pythonExtractor extracts elements from Python source using the tree-sitter grammar.
type pythonExtractor struct {
	language *sitter.Language
}

func newPythonExtractor() *pythonExtractor {
	return &pythonExtractor{
		language: sitter.NewLanguage(python.Language()),
	}
}

// Extract parses code and walks every statement. It returns an error wrapping errSyntax
// when the grammar reports ERROR or MISSING nodes or Python 2 print/exec statements.
func (p *pythonExtractor) Extract(code string, lines []string) (*extractResult, error) {
	if code == "" {
		return newExtractResult(), nil
	}
	source := []byte(code)

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errSyntax
	}
	defer tree.Close()

	root := tree.RootNode()
	if line := firstInvalidLine(root); root.HasError() || line > 0 {
		return nil, fmt.Errorf("%w near line %d", errSyntax, line)
	}

	lowerer := &pyLowerer{source: source, lines: lines}
	stmts := lowerer.lowerBlock(root)

	result := newExtractResult()
	v := &pyElementVisitor{lines: lines, result: result}
	walkPy(stmts, v.enter, v.leave)

	result.Comments = extractPythonComments(lines)
	return result, nil
}

// legacyStatements are Python 2 statements the grammar still accepts but Python 3 rejects.
var legacyStatements = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

// firstInvalidLine returns the 1-indexed line of the first ERROR, MISSING or
// Python 2 statement node, or 0 when there is none.
func firstInvalidLine(root *sitter.Node) int {
	line := 0
	walkTree(root, func(n *sitter.Node) bool {
		if line > 0 {
			return false
		}
		if n.IsError() || n.IsMissing() || legacyStatements[n.Kind()] {
			line = int(n.StartPosition().Row) + 1
			return false
		}
		return true
	})
	return line
}

// pyElementVisitor turns lowered statements into CodeElements, nesting each element
// under the closest enclosing element.
type pyElementVisitor struct {
	lines  []string
	result *extractResult
	open   []openElement
}

type openElement struct {
	node    pyNode
	element *extraction.CodeElement
}

func (v *pyElementVisitor) enter(n pyNode) bool {
	var (
		el     *extraction.CodeElement
		weight int
	)

	switch node := n.(type) {
	case *pyFunction:
		meta := extraction.FunctionMetadata{
			Args:       node.params,
			Decorators: node.decorators,
			Docstring:  node.docstring,
			IsAsync:    node.async,
		}
		weight = 1
		if node.async {
			weight = 2
		}
		el = v.element(meta.ElementType(), node.name, node.pySpan, meta)
	case *pyClass:
		meta := extraction.ClassMetadata{
			Bases:      node.bases,
			Decorators: node.decorators,
			Docstring:  node.docstring,
		}
		el, weight = v.element(extraction.ElementClass, node.name, node.pySpan, meta), 2
	case *pyFor:
		meta := extraction.LoopMetadata{HasElse: len(node.orelse) > 0}
		el, weight = v.element(extraction.ElementForLoop, "for", node.pySpan, meta), 1
	case *pyWhile:
		meta := extraction.LoopMetadata{While: true, HasElse: len(node.orelse) > 0}
		el, weight = v.element(extraction.ElementWhileLoop, "while", node.pySpan, meta), 2
	case *pyIf:
		meta := extraction.ConditionalMetadata{HasElse: len(node.orelse) > 0}
		if len(node.orelse) == 1 {
			_, meta.HasElif = node.orelse[0].(*pyIf)
		}
		el, weight = v.element(extraction.ElementConditional, "if", node.pySpan, meta), 1
	case *pyTry:
		meta := extraction.TryMetadata{
			NumHandlers: len(node.handlers),
			HasFinally:  len(node.finalbody) > 0,
			HasElse:     len(node.orelse) > 0,
		}
		el, weight = v.element(extraction.ElementTryExcept, "try", node.pySpan, meta), len(node.handlers)
	case *pyWith:
		meta := extraction.ContextManagerMetadata{NumItems: node.items}
		el = v.element(extraction.ElementContextManager, "with", node.pySpan, meta)
	case *pyImport:
		v.result.Imports = append(v.result.Imports, node.names...)
	case *pyAssign:
		v.result.Variables = append(v.result.Variables, node.targets...)
	}

	if el != nil {
		if len(v.open) > 0 {
			parent := v.open[len(v.open)-1].element
			parent.Children = append(parent.Children, el)
		}
		v.result.add(el, weight)
		v.open = append(v.open, openElement{node: n, element: el})
	}
	return true
}

func (v *pyElementVisitor) leave(n pyNode) {
	if last := len(v.open) - 1; last >= 0 && v.open[last].node == n {
		v.open = v.open[:last]
	}
}

func (v *pyElementVisitor) element(typ extraction.ElementType, name string, span pySpan, meta extraction.Metadata) *extraction.CodeElement {
	return &extraction.CodeElement{
		Type:        typ,
		Name:        name,
		LineStart:   span.start,
		LineEnd:     span.end,
		CodeSnippet: extractLines(v.lines, span.start, span.end),
		Metadata:    meta,
	}
}
