package extraction

// Metadata holds construct-specific facts about a CodeElement.
// Each element type has exactly one metadata record; pattern-based extractors leave it nil.
type Metadata interface {
	// ElementType reports which construct the record belongs to.
	ElementType() ElementType
}

// FunctionMetadata describes a function or async function definition.
type FunctionMetadata struct {
	Args       []string `json:"args" yaml:"args"`
	Decorators []string `json:"decorators" yaml:"decorators"`
	Docstring  *string  `json:"docstring" yaml:"docstring"`
	IsAsync    bool     `json:"is_async" yaml:"is_async"`
}

func (m FunctionMetadata) ElementType() ElementType {
	if m.IsAsync {
		return ElementAsyncFunction
	}
	return ElementFunction
}

// ClassMetadata describes a class definition.
type ClassMetadata struct {
	Bases      []string `json:"bases" yaml:"bases"`
	Decorators []string `json:"decorators" yaml:"decorators"`
	Docstring  *string  `json:"docstring" yaml:"docstring"`
}

func (ClassMetadata) ElementType() ElementType { return ElementClass }

// LoopMetadata describes a for or while loop.
type LoopMetadata struct {
	While   bool `json:"-" yaml:"-"`
	HasElse bool `json:"has_else" yaml:"has_else"`
}

func (m LoopMetadata) ElementType() ElementType {
	if m.While {
		return ElementWhileLoop
	}
	return ElementForLoop
}

// ConditionalMetadata describes an if statement.
// HasElif is true only when the else branch is exactly one nested if statement.
type ConditionalMetadata struct {
	HasElse bool `json:"has_else" yaml:"has_else"`
	HasElif bool `json:"has_elif" yaml:"has_elif"`
}

func (ConditionalMetadata) ElementType() ElementType { return ElementConditional }

// TryMetadata describes a try/except block.
type TryMetadata struct {
	NumHandlers int  `json:"num_handlers" yaml:"num_handlers"`
	HasFinally  bool `json:"has_finally" yaml:"has_finally"`
	HasElse     bool `json:"has_else" yaml:"has_else"`
}

func (TryMetadata) ElementType() ElementType { return ElementTryExcept }

// ContextManagerMetadata describes a with block.
type ContextManagerMetadata struct {
	NumItems int `json:"num_items" yaml:"num_items"`
}

func (ContextManagerMetadata) ElementType() ElementType { return ElementContextManager }
