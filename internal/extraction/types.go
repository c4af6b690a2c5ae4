package extraction

import "strings"

// Language identifies a supported source language.
// The empty value means "no hint" and asks the parser to detect the language.
type Language string

const (
	Python  Language = "python"
	Java    Language = "java"
	Cpp     Language = "cpp"
	Unknown Language = "unknown"
)

// ParseLanguage maps a user-facing language name to a Language.
// Unrecognized names map to the empty Language so callers fall back to detection.
func ParseLanguage(name string) Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "python", "py":
		return Python
	case "java":
		return Java
	case "cpp", "c++", "c":
		return Cpp
	case "unknown":
		return Unknown
	default:
		return ""
	}
}

// ElementType tags the kind of construct a CodeElement describes.
type ElementType string

const (
	ElementFunction       ElementType = "function"
	ElementAsyncFunction  ElementType = "async_function"
	ElementClass          ElementType = "class"
	ElementForLoop        ElementType = "for_loop"
	ElementWhileLoop      ElementType = "while_loop"
	ElementConditional    ElementType = "conditional"
	ElementTryExcept      ElementType = "try_except"
	ElementContextManager ElementType = "context_manager"
)

// CodeElement represents one recognized syntactic construct.
type CodeElement struct {
	Type        ElementType    `json:"element_type" yaml:"element_type"`
	Name        string         `json:"name" yaml:"name"`
	LineStart   int            `json:"line_start" yaml:"line_start"` // 1-indexed, inclusive
	LineEnd     int            `json:"line_end" yaml:"line_end"`     // 1-indexed, inclusive
	CodeSnippet string         `json:"code_snippet" yaml:"code_snippet"`
	Children    []*CodeElement `json:"children,omitempty" yaml:"children,omitempty"`
	Metadata    Metadata       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ParsedCode is the structural model produced by a single parse.
// It is never mutated after construction; consumers must treat it as read-only.
type ParsedCode struct {
	Language        Language       `json:"language" yaml:"language"`
	RawCode         string         `json:"-" yaml:"-"`
	Lines           []string       `json:"-" yaml:"-"`
	Elements        []*CodeElement `json:"elements" yaml:"elements"`
	Imports         []string       `json:"imports" yaml:"imports"`
	Functions       []*CodeElement `json:"-" yaml:"-"`
	Classes         []*CodeElement `json:"-" yaml:"-"`
	Variables       []string       `json:"variables" yaml:"variables"`
	Comments        []string       `json:"comments" yaml:"comments"`
	ComplexityScore int            `json:"complexity_score" yaml:"complexity_score"`
}

// Summary is the flattened view of a ParsedCode used for lightweight display.
type Summary struct {
	Language        Language `json:"language" yaml:"language"`
	TotalLines      int      `json:"total_lines" yaml:"total_lines"`
	NumFunctions    int      `json:"num_functions" yaml:"num_functions"`
	NumClasses      int      `json:"num_classes" yaml:"num_classes"`
	NumImports      int      `json:"num_imports" yaml:"num_imports"`
	NumVariables    int      `json:"num_variables" yaml:"num_variables"`
	ComplexityScore int      `json:"complexity_score" yaml:"complexity_score"`
}
