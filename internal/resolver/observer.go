package resolver

import (
	"context"

	slogctx "github.com/veqryn/slog-context"
)

type UnresolvedReason string

const (
	ReasonNotInCatalog  UnresolvedReason = "not_in_catalog"
	ReasonSourceMissing UnresolvedReason = "source_missing"
	ReasonFetchFailed   UnresolvedReason = "source_fetch_failed"
)

// Observer receives per-type diagnostics during ResolveTypes.
type Observer interface {
	TypeSearching(ctx context.Context, name string)
	TypeResolved(ctx context.Context, tc *TypeContext)
	TypeUnresolved(ctx context.Context, u UnresolvedType)
}

// LogObserver reports through the context logger.
type LogObserver struct{}

func (LogObserver) TypeSearching(ctx context.Context, name string) {
	slogctx.Debug(ctx, "Searching for type", "type", name)
}

func (LogObserver) TypeResolved(ctx context.Context, tc *TypeContext) {
	args := []any{"type", tc.Name, "source", tc.SourcePath}
	if tc.Definition != nil {
		args = append(args, "kind", tc.Definition.Kind, "start_line", tc.Definition.StartLine, "end_line", tc.Definition.EndLine)
	}
	slogctx.Info(ctx, "Resolved type", args...)
}

func (LogObserver) TypeUnresolved(ctx context.Context, u UnresolvedType) {
	slogctx.Warn(ctx, "Could not retrieve type", "type", u.Name, "reason", string(u.Reason), "error", u.Err)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) TypeSearching(context.Context, string)          {}
func (NopObserver) TypeResolved(context.Context, *TypeContext)     {}
func (NopObserver) TypeUnresolved(context.Context, UnresolvedType) {}
