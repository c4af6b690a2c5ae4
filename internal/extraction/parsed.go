package extraction

import (
	"sort"
	"strings"
)

// keywordNames are element names that only repeat the construct keyword.
var keywordNames = map[string]bool{
	"for":   true,
	"while": true,
	"if":    true,
	"try":   true,
	"with":  true,
}

// GetLine returns the 1-indexed line n, or "" when n is out of range.
func (p *ParsedCode) GetLine(n int) string {
	if n < 1 || n > len(p.Lines) {
		return ""
	}
	return p.Lines[n-1]
}

// TotalLines returns the number of lines in the parsed source.
func (p *ParsedCode) TotalLines() int {
	return len(p.Lines)
}

// Summary flattens the structural model into counts.
func (p *ParsedCode) Summary() Summary {
	return Summary{
		Language:        p.Language,
		TotalLines:      len(p.Lines),
		NumFunctions:    len(p.Functions),
		NumClasses:      len(p.Classes),
		NumImports:      len(p.Imports),
		NumVariables:    len(p.Variables),
		ComplexityScore: p.ComplexityScore,
	}
}

// SortedElements returns a copy of the elements ordered by start line.
// Elements sharing a start line keep their discovery order.
func (p *ParsedCode) SortedElements() []*CodeElement {
	sorted := make([]*CodeElement, len(p.Elements))
	copy(sorted, p.Elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineStart < sorted[j].LineStart
	})
	return sorted
}

// LineAnnotations maps each element start line to human-readable labels
// such as "Function: main" or "For Loop".
func (p *ParsedCode) LineAnnotations() map[int][]string {
	annotations := make(map[int][]string)
	for _, el := range p.Elements {
		label := titleCase(strings.ReplaceAll(string(el.Type), "_", " "))
		if el.Name != "" && !keywordNames[el.Name] {
			label += ": " + el.Name
		}
		annotations[el.LineStart] = append(annotations[el.LineStart], label)
	}
	return annotations
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
