package extractor

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

// Extractor locates type definitions using a language-specific grammar.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "c":
		langExt = &CExtractor{}
	case "cpp", "c++":
		lang = "cpp"
		langExt = &CExtractor{cpp: true}
	default:
		return nil, errors.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// ForPath picks the grammar for a source path. Only .c files use the C
// grammar; headers may be either language, and the C++ grammar accepts both.
func ForPath(path string) *Extractor {
	lang := "cpp"
	if strings.EqualFold(filepath.Ext(path), ".c") {
		lang = "c"
	}
	ext, _ := NewExtractor(lang)
	return ext
}

func (e *Extractor) Language() string {
	return e.langName
}

// FindType returns every definition in sourceCode declaring name, in source
// order. Qualified and elaborated names ("cv::Mat", "struct foo") match on
// their final identifier.
func (e *Extractor) FindType(ctx context.Context, sourceCode []byte, name string) ([]*TypeDefinition, error) {
	want := BaseName(name)
	if want == "" {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, errors.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, errors.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var defs []*TypeDefinition
	seen := make(map[[2]int]bool)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var kind string
		var node, nameNode *sitter.Node
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			if captureName == "name" {
				nameNode = c.Node
				continue
			}
			kind = captureName
			node = c.Node
		}
		if nameNode == nil || nameNode.Content(sourceCode) != want {
			continue
		}

		def := e.langExtractor.ExtractType(kind, node, nameNode, sourceCode)
		if def == nil {
			continue
		}
		span := [2]int{def.StartLine, def.EndLine}
		if seen[span] {
			continue
		}
		seen[span] = true
		defs = append(defs, def)
	}
	return defs, nil
}

// Best picks the most complete definition: the one with fields, then the
// widest span. Forward typedefs lose to the full body.
func Best(defs []*TypeDefinition) *TypeDefinition {
	var best *TypeDefinition
	for _, d := range defs {
		switch {
		case best == nil:
			best = d
		case len(d.Fields) > 0 && len(best.Fields) == 0:
			best = d
		case (len(d.Fields) > 0) == (len(best.Fields) > 0) && d.EndLine-d.StartLine > best.EndLine-best.StartLine:
			best = d
		}
	}
	return best
}

// BaseName strips an elaborated-type keyword, namespace qualifiers and
// template arguments from a type name.
func BaseName(name string) string {
	name = strings.TrimSpace(name)
	for _, kw := range []string{"struct ", "union ", "enum ", "class "} {
		name = strings.TrimPrefix(name, kw)
	}
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return strings.TrimSpace(name)
}

// LineWindow returns the lines within radius of the 1-based line. It reports
// false when line is outside the source.
func LineWindow(sourceCode []byte, line, radius int) (*Excerpt, bool) {
	lines := strings.Split(string(sourceCode), "\n")
	if line < 1 || line > len(lines) {
		return nil, false
	}
	if radius < 0 {
		radius = 0
	}
	start := max(line-radius, 1)
	end := min(line+radius, len(lines))
	return &Excerpt{
		StartLine: start,
		EndLine:   end,
		Content:   strings.Join(lines[start-1:end], "\n"),
	}, true
}
