package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
)

// maxBlockScanLines bounds how far blockEnd looks for a closing brace.
const maxBlockScanLines = 5000

// controlKeywords are never reported as function names.
var controlKeywords = map[string]bool{
	"if":     true,
	"while":  true,
	"for":    true,
	"switch": true,
	"catch":  true,
}

var (
	forPattern   = regexp.MustCompile(`\bfor\s*\(`)
	whilePattern = regexp.MustCompile(`\bwhile\s*\(`)
	ifPattern    = regexp.MustCompile(`\bif\s*\(`)
)

// sourceLine is one line handed to the classifiers.
type sourceLine struct {
	num      int // 1-indexed
	text     string
	stripped string
	indent   int // bytes of leading whitespace removed by stripping
}

// lineClassifier inspects one line and records anything it recognizes.
// Classifiers are independent: a line may feed several of them.
type lineClassifier func(ln sourceLine, x *patternExtraction)

// patternExtraction is the per-call state shared by classifiers.
type patternExtraction struct {
	lines  []string
	result *extractResult
}

// patternExtractor runs an ordered list of line classifiers over every line.
type patternExtractor struct {
	language    extraction.Language
	classifiers []lineClassifier
}

// Extract classifies every line. It never fails; unmatched lines contribute nothing.
func (p *patternExtractor) Extract(lines []string) *extractResult {
	x := &patternExtraction{lines: lines, result: newExtractResult()}
	for i, text := range lines {
		stripped := strings.TrimSpace(text)
		ln := sourceLine{
			num:      i + 1,
			text:     text,
			stripped: stripped,
			indent:   strings.Index(text, stripped),
		}
		for _, classify := range p.classifiers {
			classify(ln, x)
		}
	}
	return x.result
}

// element builds an element starting at ln whose span extends over the brace block
// opened at or after column col of the stripped line.
func (x *patternExtraction) element(typ extraction.ElementType, name string, ln sourceLine, col int) *extraction.CodeElement {
	end := blockEnd(x.lines, ln.num, ln.indent+col)
	return &extraction.CodeElement{
		Type:        typ,
		Name:        name,
		LineStart:   ln.num,
		LineEnd:     end,
		CodeSnippet: extractLines(x.lines, ln.num, end),
	}
}

// classHeader reports a class element (+2) for the first pattern match.
// The pattern's first group must capture the class name.
func classHeader(pattern *regexp.Regexp) lineClassifier {
	return func(ln sourceLine, x *patternExtraction) {
		loc := pattern.FindStringSubmatchIndex(ln.stripped)
		if loc == nil {
			return
		}
		name := ln.stripped[loc[2]:loc[3]]
		x.result.add(x.element(extraction.ElementClass, name, ln, loc[0]), 2)
	}
}

// functionHeader reports a function element (+1). Lines that are class headers,
// mention "class" at all, or are rejected by skip are ignored, as are control keywords
// captured in the name position.
func functionHeader(pattern, classPattern *regexp.Regexp, skip func(stripped string) bool) lineClassifier {
	return func(ln sourceLine, x *patternExtraction) {
		if classPattern.MatchString(ln.stripped) || strings.Contains(ln.stripped, "class") {
			return
		}
		if skip != nil && skip(ln.stripped) {
			return
		}
		loc := pattern.FindStringSubmatchIndex(ln.stripped)
		if loc == nil {
			return
		}
		name := ln.stripped[loc[2]:loc[3]]
		if controlKeywords[name] {
			return
		}
		x.result.add(x.element(extraction.ElementFunction, name, ln, loc[0]), 1)
	}
}

// keyword reports a loop or conditional wherever pattern matches in the line.
func keyword(pattern *regexp.Regexp, typ extraction.ElementType, name string, weight int) lineClassifier {
	return func(ln sourceLine, x *patternExtraction) {
		loc := pattern.FindStringIndex(ln.stripped)
		if loc == nil {
			return
		}
		x.result.add(x.element(typ, name, ln, loc[0]), weight)
	}
}

// slashComment records "//" comments without the marker and block-comment lines verbatim.
func slashComment(ln sourceLine, x *patternExtraction) {
	switch {
	case strings.HasPrefix(ln.stripped, "//"):
		x.result.Comments = append(x.result.Comments, strings.TrimSpace(ln.stripped[2:]))
	case strings.Contains(ln.stripped, "/*") || strings.HasPrefix(ln.stripped, "*"):
		x.result.Comments = append(x.result.Comments, ln.stripped)
	}
}

// controlFlow are the loop and conditional classifiers shared by brace languages.
func controlFlow() []lineClassifier {
	return []lineClassifier{
		keyword(forPattern, extraction.ElementForLoop, "for", 1),
		keyword(whilePattern, extraction.ElementWhileLoop, "while", 2),
		keyword(ifPattern, extraction.ElementConditional, "if", 1),
	}
}

// blockEnd returns the line holding the brace that closes the block opened at or after
// column col of startLine. Text in string literals, character literals and comments is
// ignored. A statement terminator (outside parentheses) or a non-brace line before any
// block opens means there is no block, and startLine is returned.
func blockEnd(lines []string, startLine, col int) int {
	var (
		depth          int
		parens         int
		opened         bool
		inBlockComment bool
	)

	last := startLine
	for i := startLine - 1; i < len(lines) && i < startLine-1+maxBlockScanLines; i++ {
		text := lines[i]
		if i == startLine-1 {
			if col > len(text) {
				col = len(text)
			}
			text = text[col:]
		} else if !opened && !inBlockComment {
			trimmed := strings.TrimSpace(text)
			if trimmed != "" && !strings.HasPrefix(trimmed, "{") && parens == 0 {
				return startLine
			}
		}
		last = i + 1

		var quote byte
		for j := 0; j < len(text); j++ {
			c := text[j]
			switch {
			case inBlockComment:
				if c == '*' && j+1 < len(text) && text[j+1] == '/' {
					inBlockComment = false
					j++
				}
			case quote != 0:
				if c == '\\' {
					j++
				} else if c == quote {
					quote = 0
				}
			case c == '/' && j+1 < len(text) && text[j+1] == '/':
				j = len(text)
			case c == '/' && j+1 < len(text) && text[j+1] == '*':
				inBlockComment = true
				j++
			case c == '"' || c == '\'':
				quote = c
			case c == '(':
				parens++
			case c == ')':
				if parens > 0 {
					parens--
				}
			case c == ';' && !opened && parens == 0:
				return startLine
			case c == '{':
				depth++
				opened = true
			case c == '}' && opened:
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
	}

	if opened {
		return last
	}
	return startLine
}
