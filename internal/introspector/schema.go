package introspector

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"

	"ctxprobe/internal/errdefs"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gitlab.com/tozd/go/errors"
)

// UnknownLine is the line number used when a report omits one.
const UnknownLine = -1

// SummaryDoc is the consumed part of summary.json.
type SummaryDoc struct {
	Functions []FunctionEntry
}

// FunctionEntry is one element of MergedProjectProfile.all-functions with
// optional fields already defaulted.
type FunctionEntry struct {
	Name            string
	Filename        string
	Args            []string
	ArgNames        []string
	ReturnType      string
	RawFunctionName string
	SourceLineBegin int
	SourceLineEnd   int
	Callsites       any
}

// DebugDoc is the consumed part of all_debug_info.json.
type DebugDoc struct {
	Types []TypeEntry
}

// TypeEntry is one element of all_types. Raw keeps the complete object.
type TypeEntry struct {
	Name   string
	Source TypeSource
	Raw    json.RawMessage
}

type TypeSource struct {
	SourceFile string
	SourceLine int
}

const (
	summarySchemaURL = "https://ctxprobe.local/schemas/summary.schema.json"
	debugSchemaURL   = "https://ctxprobe.local/schemas/debug_info.schema.json"
)

//go:embed schemas/summary.schema.json
var summarySchemaJSON string

//go:embed schemas/debug_info.schema.json
var debugSchemaJSON string

var (
	schemasOnce   sync.Once
	summarySchema *jsonschema.Schema
	debugSchema   *jsonschema.Schema
	schemasErr    error
)

// loadSchemas compiles both report schemas once per process. They only
// constrain required keys; optional fields are coerced leniently on decode.
func loadSchemas() error {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(summarySchemaURL, strings.NewReader(summarySchemaJSON)); err != nil {
			schemasErr = err
			return
		}
		if err := compiler.AddResource(debugSchemaURL, strings.NewReader(debugSchemaJSON)); err != nil {
			schemasErr = err
			return
		}
		if summarySchema, schemasErr = compiler.Compile(summarySchemaURL); schemasErr != nil {
			return
		}
		debugSchema, schemasErr = compiler.Compile(debugSchemaURL)
	})
	return schemasErr
}

// validate decodes raw generically and checks it against schema.
func validate(schema *jsonschema.Schema, raw []byte, report string) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errdefs.Structural(err, "%s", report)
	}
	if err := schema.Validate(v); err != nil {
		return errdefs.Structural(err, "%s", report)
	}
	return nil
}

type summaryWire struct {
	Profile struct {
		AllFunctions []functionWire `json:"all-functions"`
	} `json:"MergedProjectProfile"`
}

type functionWire struct {
	Name            string          `json:"Func name"`
	Args            []string        `json:"Args"`
	ArgNames        json.RawMessage `json:"ArgNames"`
	ReturnType      json.RawMessage `json:"return_type"`
	RawFunctionName json.RawMessage `json:"raw-function-name"`
	SourceLineBegin json.RawMessage `json:"source_line_begin"`
	SourceLineEnd   json.RawMessage `json:"source_line_end"`
	Callsites       any             `json:"callsites"`
	Filename        json.RawMessage `json:"Functions filename"`
}

type debugWire struct {
	AllTypes []json.RawMessage `json:"all_types"`
}

type typeWire struct {
	Name   string          `json:"name"`
	Source json.RawMessage `json:"source"`
}

type sourceWire struct {
	SourceFile json.RawMessage `json:"source_file"`
	SourceLine json.RawMessage `json:"source_line"`
}

// optLine reads an optional line number: a JSON integer, an integral float
// or a numeric string. Anything else, null included, is UnknownLine.
func optLine(raw json.RawMessage) int {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return UnknownLine
	}
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int(x)
		}
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return UnknownLine
}

// optString reads an optional string field; any other JSON type is "".
func optString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// optStrings reads an optional string list, dropping non-string elements.
func optStrings(raw json.RawMessage) []string {
	out := []string{}
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ParseSummary decodes summary.json.
func ParseSummary(raw []byte) (*SummaryDoc, error) {
	if err := loadSchemas(); err != nil {
		return nil, errors.Errorf("compiling summary schema: %w", err)
	}
	if err := validate(summarySchema, raw, "summary report"); err != nil {
		return nil, err
	}

	var wire summaryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errdefs.Structural(err, "summary report")
	}

	entries := wire.Profile.AllFunctions
	doc := &SummaryDoc{Functions: make([]FunctionEntry, 0, len(entries))}
	for _, fw := range entries {
		callsites := fw.Callsites
		if callsites == nil {
			callsites = []any{}
		}

		doc.Functions = append(doc.Functions, FunctionEntry{
			Name:            fw.Name,
			Filename:        optString(fw.Filename),
			Args:            fw.Args,
			ArgNames:        optStrings(fw.ArgNames),
			ReturnType:      optString(fw.ReturnType),
			RawFunctionName: optString(fw.RawFunctionName),
			SourceLineBegin: optLine(fw.SourceLineBegin),
			SourceLineEnd:   optLine(fw.SourceLineEnd),
			Callsites:       callsites,
		})
	}
	return doc, nil
}

// ParseDebugInfo decodes all_debug_info.json.
func ParseDebugInfo(raw []byte) (*DebugDoc, error) {
	if err := loadSchemas(); err != nil {
		return nil, errors.Errorf("compiling debug info schema: %w", err)
	}
	if err := validate(debugSchema, raw, "debug report"); err != nil {
		return nil, err
	}

	var wire debugWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errdefs.Structural(err, "debug report")
	}

	doc := &DebugDoc{Types: make([]TypeEntry, 0, len(wire.AllTypes))}
	for i, item := range wire.AllTypes {
		var tw typeWire
		if err := json.Unmarshal(item, &tw); err != nil {
			return nil, errdefs.Structural(err, "all_types[%d]", i)
		}

		entry := TypeEntry{
			Name:   tw.Name,
			Source: TypeSource{SourceLine: UnknownLine},
			Raw:    bytes.Clone(item),
		}
		var sw sourceWire
		if len(tw.Source) > 0 && json.Unmarshal(tw.Source, &sw) == nil {
			entry.Source.SourceFile = optString(sw.SourceFile)
			entry.Source.SourceLine = optLine(sw.SourceLine)
		}
		doc.Types = append(doc.Types, entry)
	}
	return doc, nil
}
