package parsers

// pyNode is one statement of a lowered Python syntax tree.
// Every statement lowers to exactly one pyNode so that body lengths match the source
// (an else branch holding only "pass" is still a non-empty branch).
type pyNode interface {
	lines() pySpan
	// blocks returns the nested statement lists in source order.
	blocks() [][]pyNode
}

// pySpan is a 1-indexed inclusive line range.
type pySpan struct {
	start int
	end   int
}

func (s pySpan) lines() pySpan { return s }

// pySimple is a statement with no construct of interest, such as "pass" or a call.
type pySimple struct {
	pySpan
}

func (n *pySimple) blocks() [][]pyNode { return nil }

// pyCompound is a compound statement without its own element, such as match or async for.
type pyCompound struct {
	pySpan
	body [][]pyNode
}

func (n *pyCompound) blocks() [][]pyNode { return n.body }

type pyFunction struct {
	pySpan
	name       string
	params     []string
	decorators []string
	docstring  *string
	async      bool
	body       []pyNode
}

func (n *pyFunction) blocks() [][]pyNode { return [][]pyNode{n.body} }

type pyClass struct {
	pySpan
	name       string
	bases      []string
	decorators []string
	docstring  *string
	body       []pyNode
}

func (n *pyClass) blocks() [][]pyNode { return [][]pyNode{n.body} }

type pyFor struct {
	pySpan
	body   []pyNode
	orelse []pyNode
}

func (n *pyFor) blocks() [][]pyNode { return [][]pyNode{n.body, n.orelse} }

type pyWhile struct {
	pySpan
	body   []pyNode
	orelse []pyNode
}

func (n *pyWhile) blocks() [][]pyNode { return [][]pyNode{n.body, n.orelse} }

// pyIf holds an if statement; elif chains are lowered into a single nested pyIf in orelse.
type pyIf struct {
	pySpan
	body   []pyNode
	orelse []pyNode
}

func (n *pyIf) blocks() [][]pyNode { return [][]pyNode{n.body, n.orelse} }

type pyTry struct {
	pySpan
	body      []pyNode
	handlers  [][]pyNode
	orelse    []pyNode
	finalbody []pyNode
}

func (n *pyTry) blocks() [][]pyNode {
	out := make([][]pyNode, 0, len(n.handlers)+3)
	out = append(out, n.body)
	out = append(out, n.handlers...)
	return append(out, n.orelse, n.finalbody)
}

type pyWith struct {
	pySpan
	items int
	body  []pyNode
}

func (n *pyWith) blocks() [][]pyNode { return [][]pyNode{n.body} }

// pyImport holds the dotted names an import statement brings in, already in output form.
type pyImport struct {
	pySpan
	names []string
}

func (n *pyImport) blocks() [][]pyNode { return nil }

// pyAssign holds the simple-name targets of a plain or annotated assignment.
type pyAssign struct {
	pySpan
	targets []string
}

func (n *pyAssign) blocks() [][]pyNode { return nil }

// walkPy walks statements depth-first in source order. enter is called before a node's
// children and may return false to skip them; leave, when non-nil, is called after.
func walkPy(nodes []pyNode, enter func(pyNode) bool, leave func(pyNode)) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !enter(n) {
			continue
		}
		for _, block := range n.blocks() {
			walkPy(block, enter, leave)
		}
		if leave != nil {
			leave(n)
		}
	}
}
