package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyLowerer converts a tree-sitter Python syntax tree into pyNode statements.
type pyLowerer struct {
	source []byte
	lines  []string
}

// span returns the lines a node covers, ending on its last line of code.
func (l *pyLowerer) span(node *sitter.Node) pySpan {
	start, end := codeLines(node, len(l.lines))
	for end > start && strings.TrimSpace(l.lines[end-1]) == "" {
		end--
	}
	return pySpan{start: start, end: end}
}

// lowerBlock lowers every statement of a module or block node.
func (l *pyLowerer) lowerBlock(block *sitter.Node) []pyNode {
	if block == nil {
		return nil
	}
	var out []pyNode
	for _, child := range namedChildren(block) {
		out = append(out, l.lowerStatement(child))
	}
	return out
}

func (l *pyLowerer) lowerStatement(node *sitter.Node) pyNode {
	switch node.Kind() {
	case "function_definition":
		return l.lowerFunction(node, []string{})
	case "class_definition":
		return l.lowerClass(node, []string{})
	case "decorated_definition":
		return l.lowerDecorated(node)
	case "for_statement":
		return l.lowerFor(node)
	case "while_statement":
		return &pyWhile{
			pySpan: l.span(node),
			body:   l.lowerBlock(suite(node, "body")),
			orelse: l.lowerElse(node.ChildByFieldName("alternative")),
		}
	case "if_statement":
		return l.lowerIf(node)
	case "try_statement":
		return l.lowerTry(node)
	case "with_statement":
		return l.lowerWith(node)
	case "import_statement", "import_from_statement", "future_import_statement":
		return l.lowerImport(node)
	case "expression_statement":
		kids := namedChildren(node)
		if len(kids) == 1 && kids[0].Kind() == "assignment" {
			return &pyAssign{pySpan: l.span(node), targets: l.assignTargets(kids[0])}
		}
		return &pySimple{pySpan: l.span(node)}
	default:
		if body := l.nestedBlocks(node); len(body) > 0 {
			return &pyCompound{pySpan: l.span(node), body: body}
		}
		return &pySimple{pySpan: l.span(node)}
	}
}

// nestedBlocks lowers the outermost block nodes found under node.
func (l *pyLowerer) nestedBlocks(node *sitter.Node) [][]pyNode {
	var out [][]pyNode
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		if child.Kind() == "block" {
			out = append(out, l.lowerBlock(child))
			continue
		}
		out = append(out, l.nestedBlocks(child)...)
	}
	return out
}

func (l *pyLowerer) lowerDecorated(node *sitter.Node) pyNode {
	decorators := []string{}
	for _, d := range findChildrenByType(node, "decorator") {
		text := strings.TrimSpace(extractNodeText(d, l.source))
		decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(text, "@")))
	}

	def := node.ChildByFieldName("definition")
	if def == nil {
		return &pySimple{pySpan: l.span(node)}
	}
	switch def.Kind() {
	case "function_definition":
		return l.lowerFunction(def, decorators)
	case "class_definition":
		return l.lowerClass(def, decorators)
	default:
		return &pyCompound{pySpan: l.span(node), body: l.nestedBlocks(def)}
	}
}

func (l *pyLowerer) lowerFunction(node *sitter.Node, decorators []string) pyNode {
	body := suite(node, "body")
	return &pyFunction{
		pySpan:     l.span(node),
		name:       extractNodeText(node.ChildByFieldName("name"), l.source),
		params:     l.parameterNames(node.ChildByFieldName("parameters")),
		decorators: decorators,
		docstring:  l.docstring(body),
		async:      isAsync(node),
		body:       l.lowerBlock(body),
	}
}

func (l *pyLowerer) lowerClass(node *sitter.Node, decorators []string) pyNode {
	bases := []string{}
	for _, arg := range namedChildren(node.ChildByFieldName("superclasses")) {
		if arg.Kind() == "keyword_argument" {
			continue
		}
		bases = append(bases, extractNodeText(arg, l.source))
	}

	body := suite(node, "body")
	return &pyClass{
		pySpan:     l.span(node),
		name:       extractNodeText(node.ChildByFieldName("name"), l.source),
		bases:      bases,
		decorators: decorators,
		docstring:  l.docstring(body),
		body:       l.lowerBlock(body),
	}
}

// lowerFor keeps async for loops as plain compounds: only their bodies are walked.
func (l *pyLowerer) lowerFor(node *sitter.Node) pyNode {
	body := l.lowerBlock(suite(node, "body"))
	orelse := l.lowerElse(node.ChildByFieldName("alternative"))
	if isAsync(node) {
		return &pyCompound{pySpan: l.span(node), body: [][]pyNode{body, orelse}}
	}
	return &pyFor{pySpan: l.span(node), body: body, orelse: orelse}
}

func (l *pyLowerer) lowerElse(node *sitter.Node) []pyNode {
	if node == nil || node.Kind() != "else_clause" {
		return nil
	}
	return l.lowerBlock(suite(node, "body"))
}

// lowerIf turns "if/elif/else" into nested ifs: each elif becomes the single
// statement of the previous branch's else, spanning to the end of the chain.
func (l *pyLowerer) lowerIf(node *sitter.Node) pyNode {
	var alternatives []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		if kind := child.Kind(); kind == "elif_clause" || kind == "else_clause" {
			alternatives = append(alternatives, child)
		}
	}

	span := l.span(node)
	return &pyIf{
		pySpan: span,
		body:   l.lowerBlock(suite(node, "consequence")),
		orelse: l.lowerAlternatives(alternatives, span.end),
	}
}

func (l *pyLowerer) lowerAlternatives(alternatives []*sitter.Node, end int) []pyNode {
	if len(alternatives) == 0 {
		return nil
	}
	first := alternatives[0]
	if first.Kind() == "else_clause" {
		return l.lowerBlock(suite(first, "body"))
	}

	start, _ := nodeLines(first, len(l.lines))
	if start > end {
		end = start
	}
	return []pyNode{&pyIf{
		pySpan: pySpan{start: start, end: end},
		body:   l.lowerBlock(suite(first, "consequence")),
		orelse: l.lowerAlternatives(alternatives[1:], end),
	}}
}

func (l *pyLowerer) lowerTry(node *sitter.Node) pyNode {
	try := &pyTry{
		pySpan: l.span(node),
		body:   l.lowerBlock(suite(node, "body")),
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "except_clause", "except_group_clause":
			try.handlers = append(try.handlers, l.lowerBlock(findChildByType(child, "block")))
		case "else_clause":
			try.orelse = l.lowerBlock(suite(child, "body"))
		case "finally_clause":
			try.finalbody = l.lowerBlock(findChildByType(child, "block"))
		}
	}
	return try
}

// lowerWith keeps async with blocks as plain compounds: only their bodies are walked.
func (l *pyLowerer) lowerWith(node *sitter.Node) pyNode {
	body := l.lowerBlock(suite(node, "body"))
	if isAsync(node) {
		return &pyCompound{pySpan: l.span(node), body: [][]pyNode{body}}
	}

	items := 0
	walkTree(findChildByType(node, "with_clause"), func(n *sitter.Node) bool {
		if n.Kind() == "with_item" {
			items++
			return false
		}
		return true
	})
	return &pyWith{pySpan: l.span(node), items: items, body: body}
}

// lowerImport renders imported names: "a.b" for "import a.b as c" and
// "module.name" for "from module import name".
func (l *pyLowerer) lowerImport(node *sitter.Node) pyNode {
	names := []string{}

	if node.Kind() == "import_statement" {
		for _, child := range namedChildren(node) {
			if name := l.importedName(child); name != "" {
				names = append(names, name)
			}
		}
		return &pyImport{pySpan: l.span(node), names: names}
	}

	module := ""
	moduleNode := node.ChildByFieldName("module_name")
	if node.Kind() == "future_import_statement" {
		module = "__future__"
	} else if moduleNode != nil {
		module = l.moduleName(moduleNode)
	}

	for _, child := range namedChildren(node) {
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() && child.EndByte() == moduleNode.EndByte() {
			continue
		}
		if child.Kind() == "wildcard_import" {
			names = append(names, module+".*")
			continue
		}
		if name := l.importedName(child); name != "" {
			names = append(names, module+"."+name)
		}
	}
	return &pyImport{pySpan: l.span(node), names: names}
}

func (l *pyLowerer) importedName(node *sitter.Node) string {
	switch node.Kind() {
	case "dotted_name":
		return compactText(node, l.source)
	case "aliased_import":
		return compactText(node.ChildByFieldName("name"), l.source)
	default:
		return ""
	}
}

// moduleName drops the leading dots of a relative import, as Python's ast does.
func (l *pyLowerer) moduleName(node *sitter.Node) string {
	if node.Kind() == "relative_import" {
		return compactText(findChildByType(node, "dotted_name"), l.source)
	}
	return compactText(node, l.source)
}

// assignTargets collects simple-name targets, following chained assignments (a = b = 1).
// Attribute, subscript and destructuring targets are ignored.
func (l *pyLowerer) assignTargets(node *sitter.Node) []string {
	var targets []string
	for node != nil && node.Kind() == "assignment" {
		if left := node.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
			targets = append(targets, extractNodeText(left, l.source))
		}
		node = node.ChildByFieldName("right")
	}
	return targets
}

// parameterNames returns the ordinary positional parameters: positional-only parameters
// before "/" and everything from the first "*" onwards are excluded.
func (l *pyLowerer) parameterNames(params *sitter.Node) []string {
	names := []string{}
	for _, p := range namedChildren(params) {
		switch p.Kind() {
		case "positional_separator":
			names = names[:0]
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return names
		case "identifier":
			names = append(names, extractNodeText(p, l.source))
		case "typed_parameter":
			first := p.NamedChild(0)
			if first == nil || first.Kind() != "identifier" {
				return names
			}
			names = append(names, extractNodeText(first, l.source))
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				names = append(names, extractNodeText(name, l.source))
			}
		}
	}
	return names
}

// docstring returns the cleaned text of a leading plain string literal in body.
func (l *pyLowerer) docstring(body *sitter.Node) *string {
	stmts := namedChildren(body)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return nil
	}
	exprs := namedChildren(stmts[0])
	if len(exprs) != 1 || exprs[0].Kind() != "string" {
		return nil
	}
	value, ok := stringLiteralValue(extractNodeText(exprs[0], l.source))
	if !ok {
		return nil
	}
	doc := cleandoc(value)
	return &doc
}

// suite returns the block in the named field, or the first block child.
func suite(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	if b := node.ChildByFieldName(field); b != nil {
		return b
	}
	return findChildByType(node, "block")
}

func isAsync(node *sitter.Node) bool {
	first := node.Child(0)
	return first != nil && first.Kind() == "async"
}

// stringLiteralValue strips the prefix and quotes of a string literal.
// Formatted and bytes literals are rejected.
func stringLiteralValue(literal string) (string, bool) {
	i := strings.IndexAny(literal, `"'`)
	if i < 0 {
		return "", false
	}
	if prefix := strings.ToLower(literal[:i]); strings.ContainsAny(prefix, "fbt") {
		return "", false
	}
	body := literal[i:]

	quote := body[:1]
	if strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, `'''`) {
		quote = body[:3]
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	return body[len(quote) : len(body)-len(quote)], true
}

// cleandoc normalizes docstring indentation: the first line is left-trimmed, the common
// indentation of the remaining lines is removed, and blank leading/trailing lines are dropped.
func cleandoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		if indent := len(line) - len(content); margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			spaces := 8 - col%8
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
