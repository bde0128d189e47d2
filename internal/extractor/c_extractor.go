package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

const cTypeQuery = `
	(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @struct
	(union_specifier name: (type_identifier) @name body: (field_declaration_list)) @union
	(enum_specifier name: (type_identifier) @name body: (enumerator_list)) @enum
	(type_definition declarator: (type_identifier) @name) @typedef
`

const cppTypeQuery = cTypeQuery + `
	(class_specifier name: (type_identifier) @name body: (field_declaration_list)) @class
	(alias_declaration name: (type_identifier) @name) @alias
`

// CExtractor implements LanguageExtractor for C, and for C++ when cpp is set.
type CExtractor struct {
	cpp bool
}

func (e *CExtractor) GetLanguage() *sitter.Language {
	if e.cpp {
		return cpp.GetLanguage()
	}
	return c.GetLanguage()
}

func (e *CExtractor) GetQuery() string {
	if e.cpp {
		return cppTypeQuery
	}
	return cTypeQuery
}

func (e *CExtractor) ExtractType(kind string, node, nameNode *sitter.Node, sourceCode []byte) *TypeDefinition {
	if node == nil || nameNode == nil {
		return nil
	}

	// A tagged struct inside a typedef is reported with the whole typedef.
	outer := node
	if parent := node.Parent(); parent != nil && parent.Type() == "type_definition" {
		outer = parent
	}

	def := &TypeDefinition{
		Name:        nameNode.Content(sourceCode),
		Kind:        kind,
		StartLine:   int(outer.StartPoint().Row + 1),
		EndLine:     int(outer.EndPoint().Row + 1),
		Content:     outer.Content(sourceCode),
		Description: extractDocComment(outer, sourceCode),
	}

	body := node.ChildByFieldName("body")
	if body == nil && kind == "typedef" {
		// typedef struct { ... } name;
		if t := node.ChildByFieldName("type"); t != nil {
			body = t.ChildByFieldName("body")
		}
	}
	if body != nil {
		def.Fields = extractFields(body, sourceCode)
	}
	return def
}

func extractFields(body *sitter.Node, sourceCode []byte) []Field {
	var fields []Field
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "enumerator":
			if n := child.ChildByFieldName("name"); n != nil {
				fields = append(fields, Field{Name: n.Content(sourceCode)})
			}
		case "field_declaration":
			var typ string
			if t := child.ChildByFieldName("type"); t != nil {
				typ = t.Content(sourceCode)
			}
			decl := child.ChildByFieldName("declarator")
			if decl == nil {
				// anonymous nested struct/union member
				fields = append(fields, Field{Type: typ})
				continue
			}
			fields = append(fields, Field{
				Name: declaratorName(decl, sourceCode),
				Type: strings.TrimSpace(typ + " " + declaratorSuffix(decl, sourceCode)),
			})
		}
	}
	return fields
}

// declaratorName unwraps pointer, array and function declarators down to the identifier.
func declaratorName(node *sitter.Node, sourceCode []byte) string {
	for node != nil {
		switch node.Type() {
		case "field_identifier", "identifier":
			return node.Content(sourceCode)
		}
		next := node.ChildByFieldName("declarator")
		if next == nil {
			break
		}
		node = next
	}
	if node == nil {
		return ""
	}
	return node.Content(sourceCode)
}

// declaratorSuffix returns the pointer decoration carried by a declarator ("*", "**").
func declaratorSuffix(node *sitter.Node, sourceCode []byte) string {
	var b strings.Builder
	for node != nil && node.Type() == "pointer_declarator" {
		b.WriteString("*")
		node = node.ChildByFieldName("declarator")
	}
	return b.String()
}

func extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/**")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		l = strings.TrimPrefix(l, "*")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
