package extractor

import sitter "github.com/smacker/go-tree-sitter"

// TypeDefinition is a named type declaration located in a source file.
type TypeDefinition struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"` // struct, union, enum, class, typedef, alias
	StartLine   int     `json:"start_line"`
	EndLine     int     `json:"end_line"`
	Content     string  `json:"content"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Field is a struct/class member or an enumerator.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Excerpt is a plain line range of a source file.
type Excerpt struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// LanguageExtractor defines the interface that each language grammar must implement.
// The query must capture the declared name as @name and the declaration node
// under its kind (e.g. @struct).
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractType(kind string, node, nameNode *sitter.Node, sourceCode []byte) *TypeDefinition
}
