package introspector

import (
	"context"

	"github.com/dustin/go-humanize"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

// Loader fetches and decodes both reports of one project snapshot.
type Loader struct {
	fetcher   Fetcher
	locations Locations
}

func NewLoader(f Fetcher, loc Locations) *Loader {
	return &Loader{fetcher: f, locations: loc}
}

// Load fetches the debug-type report and then the summary report. Any fetch
// or decode failure aborts; no partial document is returned.
func (l *Loader) Load(ctx context.Context) (*SummaryDoc, *DebugDoc, error) {
	rawDebug, err := l.fetch(ctx, "debug info", l.locations.DebugInfo)
	if err != nil {
		return nil, nil, err
	}
	debug, err := ParseDebugInfo(rawDebug)
	if err != nil {
		return nil, nil, errors.Errorf("decoding %s: %w", l.locations.DebugInfo, err)
	}

	rawSummary, err := l.fetch(ctx, "summary", l.locations.Summary)
	if err != nil {
		return nil, nil, err
	}
	summary, err := ParseSummary(rawSummary)
	if err != nil {
		return nil, nil, errors.Errorf("decoding %s: %w", l.locations.Summary, err)
	}

	slogctx.Debug(ctx, "Reports decoded", "functions", len(summary.Functions), "types", len(debug.Types))
	return summary, debug, nil
}

func (l *Loader) fetch(ctx context.Context, kind, url string) ([]byte, error) {
	slogctx.Debug(ctx, "Fetching report", "report", kind, "url", url)
	raw, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, errors.Errorf("fetching %s report: %w", kind, err)
	}
	slogctx.Info(ctx, "Fetched report", "report", kind, "size", humanize.Bytes(uint64(len(raw))))
	return raw, nil
}

// SourceClient fetches individual files from a snapshot's source-code mirror.
type SourceClient struct {
	fetcher Fetcher
	base    string
}

func NewSourceClient(f Fetcher, base string) *SourceClient {
	return &SourceClient{fetcher: f, base: base}
}

// URL returns the mirror location of an absolute source path.
func (c *SourceClient) URL(path string) string {
	return c.base + path
}

func (c *SourceClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	return c.fetcher.Fetch(ctx, c.URL(path))
}
