package parsers

import "github.com/mvp-joe/codelens/internal/extraction"

// extractResult accumulates everything a language extractor finds in one source.
type extractResult struct {
	Elements        []*extraction.CodeElement
	Functions       []*extraction.CodeElement
	Classes         []*extraction.CodeElement
	Imports         []string
	Variables       []string
	Comments        []string
	ComplexityScore int
}

func newExtractResult() *extractResult {
	return &extractResult{
		Elements:  []*extraction.CodeElement{},
		Functions: []*extraction.CodeElement{},
		Classes:   []*extraction.CodeElement{},
		Imports:   []string{},
		Variables: []string{},
		Comments:  []string{},
	}
}

// add records an element and its weight, filing functions and classes into their subsets.
func (r *extractResult) add(el *extraction.CodeElement, weight int) {
	r.Elements = append(r.Elements, el)
	switch el.Type {
	case extraction.ElementFunction, extraction.ElementAsyncFunction:
		r.Functions = append(r.Functions, el)
	case extraction.ElementClass:
		r.Classes = append(r.Classes, el)
	}
	r.ComplexityScore += weight
}

// toParsedCode assembles the final structural model.
func (r *extractResult) toParsedCode(lang extraction.Language, code string, lines []string) *extraction.ParsedCode {
	return &extraction.ParsedCode{
		Language:        lang,
		RawCode:         code,
		Lines:           lines,
		Elements:        r.Elements,
		Imports:         r.Imports,
		Functions:       r.Functions,
		Classes:         r.Classes,
		Variables:       dedupe(r.Variables),
		Comments:        r.Comments,
		ComplexityScore: r.ComplexityScore,
	}
}

// dedupe removes repeated names, keeping the first occurrence of each.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
