// Package resolver reconstructs a function's signature from the function
// index and resolves the named types it references against the type catalog.
package resolver

import (
	"context"
	"path"
	"strings"

	"ctxprobe/internal/errdefs"
	"ctxprobe/internal/extractor"
	"ctxprobe/internal/index"

	slogctx "github.com/veqryn/slog-context"
)

// SourceFetcher retrieves a source file by its absolute path.
type SourceFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

type ResolveStats struct {
	Attempted int `json:"attempted"`
	Resolved  int `json:"resolved"`
	Skipped   int `json:"skipped"`
}

// TypeContext is a referenced type found in the catalog.
type TypeContext struct {
	Name       string                    `json:"name"`
	Record     index.TypeRecord          `json:"record"`
	SourcePath string                    `json:"source_path,omitempty"`
	Definition *extractor.TypeDefinition `json:"definition,omitempty"`
	Excerpt    *extractor.Excerpt        `json:"excerpt,omitempty"`
}

// UnresolvedType is a referenced type that was skipped.
type UnresolvedType struct {
	Name   string           `json:"name"`
	Reason UnresolvedReason `json:"reason"`
	Err    error            `json:"-"`
}

// Resolution is the outcome of one ResolveTypes pass.
type Resolution struct {
	Types      []TypeContext    `json:"types"`
	Unresolved []UnresolvedType `json:"unresolved,omitempty"`
	Stats      ResolveStats     `json:"stats"`
}

type Resolver struct {
	functions    *index.FunctionIndex
	types        *index.TypeIndex
	policy       SelectionPolicy
	sources      SourceFetcher
	observer     Observer
	contextLines int
}

type Option func(*Resolver)

func WithPolicy(p SelectionPolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithSources enables fetching each resolved type's source file.
func WithSources(s SourceFetcher) Option {
	return func(r *Resolver) { r.sources = s }
}

func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// WithContextLines sets the excerpt radius used when no definition is found.
func WithContextLines(n int) Option {
	return func(r *Resolver) { r.contextLines = n }
}

func New(functions *index.FunctionIndex, types *index.TypeIndex, opts ...Option) *Resolver {
	r := &Resolver{
		functions:    functions,
		types:        types,
		policy:       FirstReportOrder,
		observer:     LogObserver{},
		contextLines: 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Function returns the occurrence of name chosen by the selection policy.
func (r *Resolver) Function(name string) (index.FunctionRecord, bool) {
	recs, _ := r.functions.Lookup(name)
	return pick(r.policy, recs)
}

// Signature renders "<ret> <name>(<arg>,<arg>)" from tag-stripped types, or
// returns "" when name is not in the function index.
func (r *Resolver) Signature(name string) string {
	fn, ok := r.Function(name)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(fn.RawReturnType)
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("(")
	b.WriteString(strings.Join(fn.RawArgTypes, ","))
	b.WriteString(")")
	return b.String()
}

// ReferencedTypes returns the desugared return and argument types of name
// that carry a non-empty tag. Untagged types (primitives) are excluded, and so
// are tagged types that desugar to nothing ("cv.*"), since no catalog name
// can match an empty key.
func (r *Resolver) ReferencedTypes(name string) (TypeSet, error) {
	fn, ok := r.Function(name)
	if !ok {
		return nil, errdefs.NotFound("function %q", name)
	}

	set := make(TypeSet)
	if fn.ReturnTag != "" {
		if key := Desugar(fn.RawReturnType); key != "" {
			set.add(key)
		}
	}
	for i, tag := range fn.ArgTags {
		if tag == "" {
			continue
		}
		if key := Desugar(fn.RawArgTypes[i]); key != "" {
			set.add(key)
		}
	}
	return set, nil
}

// ResolveTypes looks up every referenced type of name in the catalog and,
// when a source fetcher is configured, fetches and extracts its definition.
// Per-type failures are reported to the observer and skipped; only an
// unknown function name is an error.
func (r *Resolver) ResolveTypes(ctx context.Context, name string) (*Resolution, error) {
	set, err := r.ReferencedTypes(name)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Types: []TypeContext{}}
	for _, typeName := range set.Sorted() {
		res.Stats.Attempted++
		r.observer.TypeSearching(ctx, typeName)

		tc, unresolved := r.resolveType(ctx, typeName)
		if unresolved != nil {
			res.Stats.Skipped++
			res.Unresolved = append(res.Unresolved, *unresolved)
			r.observer.TypeUnresolved(ctx, *unresolved)
			continue
		}

		res.Stats.Resolved++
		res.Types = append(res.Types, *tc)
		r.observer.TypeResolved(ctx, tc)
	}
	return res, nil
}

func (r *Resolver) resolveType(ctx context.Context, typeName string) (*TypeContext, *UnresolvedType) {
	recs, _ := r.types.Lookup(typeName)
	rec, ok := pick(r.policy, recs)
	if !ok {
		return nil, &UnresolvedType{
			Name:   typeName,
			Reason: ReasonNotInCatalog,
			Err:    errdefs.Unresolved(nil, "type %q is not in the debug catalog", typeName),
		}
	}

	tc := &TypeContext{Name: typeName, Record: rec}
	if r.sources == nil {
		return tc, nil
	}
	if strings.TrimSpace(rec.SourceFile) == "" {
		return nil, &UnresolvedType{
			Name:   typeName,
			Reason: ReasonSourceMissing,
			Err:    errdefs.Unresolved(nil, "type %q has no source file", typeName),
		}
	}

	tc.SourcePath = AbsSourcePath(rec.SourceFile)
	src, err := r.sources.Fetch(ctx, tc.SourcePath)
	if err != nil {
		return nil, &UnresolvedType{
			Name:   typeName,
			Reason: ReasonFetchFailed,
			Err:    errdefs.Unresolved(err, "type %q: fetching %s", typeName, tc.SourcePath),
		}
	}

	defs, err := extractor.ForPath(tc.SourcePath).FindType(ctx, src, typeName)
	if err != nil {
		slogctx.Debug(ctx, "Definition lookup failed", "type", typeName, "source", tc.SourcePath, "error", err)
	}
	tc.Definition = extractor.Best(defs)
	if tc.Definition == nil {
		tc.Excerpt, _ = extractor.LineWindow(src, rec.SourceLine, r.contextLines)
	}
	return tc, nil
}

// AbsSourcePath roots a reported source path so it can be appended to the
// source-code mirror base: "src/lib/../x.h" -> "/src/x.h".
func AbsSourcePath(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}
