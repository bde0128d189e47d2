// Package pipeline runs one probe invocation: it loads a project's reports,
// builds the indexes, renders the requested function's signature and
// resolves the types it references.
package pipeline

import (
	"context"
	"time"

	"ctxprobe/internal/config"
	"ctxprobe/internal/index"
	"ctxprobe/internal/introspector"
	"ctxprobe/internal/logger"
	"ctxprobe/internal/resolver"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	Config   *config.Config
	Project  string
	Function string

	// Fetcher defaults to an HTTP fetcher using Config's timeout.
	Fetcher introspector.Fetcher
	// Observer defaults to resolver.LogObserver.
	Observer resolver.Observer
}

// Result is everything one invocation produced.
type Result struct {
	Project      string                `json:"project"`
	Function     string                `json:"function"`
	SnapshotDate string                `json:"snapshot_date"`
	Signature    string                `json:"signature"`
	Found        bool                  `json:"found"`
	Record       *index.FunctionRecord `json:"record,omitempty"`
	Resolution   *resolver.Resolution  `json:"resolution,omitempty"`
}

type indexes struct {
	functions *index.FunctionIndex
	types     *index.TypeIndex
}

// Run executes the probe. An unknown function is reported through
// Result.Found, not as an error; transport and decode failures abort.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = introspector.NewHTTPFetcher(cfg.Introspector.Timeout)
	}

	ctx = slogctx.With(logger.WithComponent(ctx, "pipeline"), "project", opts.Project, "function", opts.Function)
	started := time.Now()

	loc, err := introspector.NewLocations(cfg.Introspector.BaseURL, opts.Project, cfg.Introspector.SnapshotDate)
	if err != nil {
		return nil, err
	}

	idx, err := loadStage(ctx, fetcher, loc)
	if err != nil {
		return nil, err
	}

	resolverOpts := []resolver.Option{
		resolver.WithSources(introspector.NewSourceClient(fetcher, loc.SourceBase)),
		resolver.WithContextLines(cfg.Output.ContextLines),
	}
	if opts.Observer != nil {
		resolverOpts = append(resolverOpts, resolver.WithObserver(opts.Observer))
	}
	r := resolver.New(idx.functions, idx.types, resolverOpts...)

	res := &Result{
		Project:      opts.Project,
		Function:     opts.Function,
		SnapshotDate: cfg.Introspector.SnapshotDate,
		Signature:    r.Signature(opts.Function),
	}
	if res.Signature == "" {
		slogctx.Warn(ctx, "Function not found in summary report")
		return res, nil
	}
	res.Found = true
	if rec, ok := r.Function(opts.Function); ok {
		res.Record = &rec
	}

	res.Resolution, err = r.ResolveTypes(ctx, opts.Function)
	if err != nil {
		return nil, err
	}

	slogctx.Info(ctx, "Probe finished",
		"resolved", res.Resolution.Stats.Resolved,
		"skipped", res.Resolution.Stats.Skipped,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return res, nil
}

func loadStage(ctx context.Context, fetcher introspector.Fetcher, loc introspector.Locations) (*indexes, error) {
	summary, debug, err := introspector.NewLoader(fetcher, loc).Load(ctx)
	if err != nil {
		return nil, errors.Errorf("loading reports: %w", err)
	}

	idx := &indexes{
		functions: index.BuildFunctionIndex(summary),
		types:     index.BuildTypeIndex(debug),
	}
	slogctx.Debug(ctx, "Indexes built", "functions", idx.functions.Len(), "types", idx.types.Len())
	return idx, nil
}
