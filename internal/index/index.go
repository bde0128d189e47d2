// Package index builds the name-keyed occurrence lists used for signature
// and type resolution. Both indexes are built once from decoded reports and
// are read-only afterwards, so they may be shared across goroutines.
package index

import (
	"encoding/json"
	"strings"

	"ctxprobe/internal/introspector"
)

// FunctionRecord is one occurrence of a function name in the summary report.
type FunctionRecord struct {
	Filename        string   `json:"filename"`
	RawArgs         []string `json:"args"`
	ArgNames        []string `json:"arg_names"`
	ArgTags         []string `json:"arg_tags"`
	RawArgTypes     []string `json:"raw_arg_types"`
	ReturnType      string   `json:"return_type"`
	ReturnTag       string   `json:"return_tag"`
	RawReturnType   string   `json:"raw_return_type"`
	MangledName     string   `json:"raw_function_name"`
	SourceLineBegin int      `json:"source_line_begin"`
	SourceLineEnd   int      `json:"source_line_end"`
	Callsites       any      `json:"callsites"`
}

// TypeRecord is one occurrence of a named type in the debug-type report.
type TypeRecord struct {
	Name       string          `json:"name"`
	SourceFile string          `json:"source_file"`
	SourceLine int             `json:"source_line"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// SplitTag separates a "tag.typename" string. Only a string with exactly one
// '.' is split; anything else is returned verbatim with an empty tag.
func SplitTag(raw string) (tag, typ string) {
	tokens := strings.Split(raw, ".")
	if len(tokens) == 2 {
		return tokens[0], tokens[1]
	}
	return "", raw
}

// FunctionIndex maps a function name to its occurrences in report order.
type FunctionIndex struct {
	byName map[string][]FunctionRecord
}

// BuildFunctionIndex indexes every summary entry. Same-named entries are
// appended, never merged.
func BuildFunctionIndex(doc *introspector.SummaryDoc) *FunctionIndex {
	idx := &FunctionIndex{byName: make(map[string][]FunctionRecord)}
	if doc == nil {
		return idx
	}

	for _, fn := range doc.Functions {
		argTags := make([]string, 0, len(fn.Args))
		rawArgTypes := make([]string, 0, len(fn.Args))
		for _, arg := range fn.Args {
			tag, typ := SplitTag(arg)
			argTags = append(argTags, tag)
			rawArgTypes = append(rawArgTypes, typ)
		}
		returnTag, rawReturnType := SplitTag(fn.ReturnType)

		idx.byName[fn.Name] = append(idx.byName[fn.Name], FunctionRecord{
			Filename:        fn.Filename,
			RawArgs:         fn.Args,
			ArgNames:        fn.ArgNames,
			ArgTags:         argTags,
			RawArgTypes:     rawArgTypes,
			ReturnType:      fn.ReturnType,
			ReturnTag:       returnTag,
			RawReturnType:   rawReturnType,
			MangledName:     fn.RawFunctionName,
			SourceLineBegin: fn.SourceLineBegin,
			SourceLineEnd:   fn.SourceLineEnd,
			Callsites:       fn.Callsites,
		})
	}
	return idx
}

// Lookup returns the occurrence list for name. The slice must not be modified.
func (idx *FunctionIndex) Lookup(name string) ([]FunctionRecord, bool) {
	recs, ok := idx.byName[name]
	return recs, ok
}

func (idx *FunctionIndex) Len() int {
	return len(idx.byName)
}

// TypeIndex maps a type name to its occurrences in report order.
type TypeIndex struct {
	byName map[string][]TypeRecord
}

// BuildTypeIndex indexes every debug-report type under its name as given.
func BuildTypeIndex(doc *introspector.DebugDoc) *TypeIndex {
	idx := &TypeIndex{byName: make(map[string][]TypeRecord)}
	if doc == nil {
		return idx
	}

	for _, t := range doc.Types {
		idx.byName[t.Name] = append(idx.byName[t.Name], TypeRecord{
			Name:       t.Name,
			SourceFile: t.Source.SourceFile,
			SourceLine: t.Source.SourceLine,
			Raw:        t.Raw,
		})
	}
	return idx
}

func (idx *TypeIndex) Lookup(name string) ([]TypeRecord, bool) {
	recs, ok := idx.byName[name]
	return recs, ok
}

func (idx *TypeIndex) Len() int {
	return len(idx.byName)
}
