package introspector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ctxprobe/internal/errdefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestNewLocations(t *testing.T) {
	loc, err := NewLocations("https://storage.example/introspector/", "htslib", "20240131")
	require.NoError(t, err)

	base := "https://storage.example/introspector/htslib/inspector-report/20240131/"
	assert.Equal(t, base+"summary.json", loc.Summary)
	assert.Equal(t, base+"all_debug_info.json", loc.DebugInfo)
	assert.Equal(t, base+"source-code", loc.SourceBase)

	for _, tc := range []struct{ project, date string }{
		{"", "20240131"},
		{"a/b", "20240131"},
		{"htslib", "2024-01-31"},
		{"htslib", "240131"},
		{"htslib", ""},
	} {
		_, err := NewLocations("https://storage.example", tc.project, tc.date)
		assert.Error(t, err, "project=%q date=%q", tc.project, tc.date)
	}
}

// newReportServer serves testdata under the inspector-report layout and
// counts requests.
func newReportServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	summary := readTestdata(t, "summary.json")
	debug := readTestdata(t, "all_debug_info.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/proj/inspector-report/20240131/summary.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(summary)
	})
	mux.HandleFunc("/proj/inspector-report/20240131/all_debug_info.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(debug)
	})
	mux.HandleFunc("/proj/inspector-report/20240131/source-code/src/lib/foo.h", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("struct Foo { int x; };\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	var hits atomic.Int32
	srv := newReportServer(t, &hits)

	loc, err := NewLocations(srv.URL, "proj", "20240131")
	require.NoError(t, err)

	summary, debug, err := NewLoader(NewHTTPFetcher(time.Second), loc).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Functions, 5)
	assert.Len(t, debug.Types, 5)
	assert.Equal(t, int32(2), hits.Load(), "exactly two report requests")
}

func TestLoader_Failures(t *testing.T) {
	var hits atomic.Int32
	srv := newReportServer(t, &hits)
	ctx := context.Background()

	t.Run("Missing snapshot is a transport error", func(t *testing.T) {
		loc, err := NewLocations(srv.URL, "proj", "20230101")
		require.NoError(t, err)

		summary, debug, err := NewLoader(NewHTTPFetcher(time.Second), loc).Load(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errdefs.ErrTransport))
		assert.Nil(t, summary)
		assert.Nil(t, debug)
	})

	t.Run("Malformed report is a structural error", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"all_types": [`))
		}))
		defer bad.Close()

		loc, err := NewLocations(bad.URL, "proj", "20240131")
		require.NoError(t, err)

		_, _, err = NewLoader(NewHTTPFetcher(time.Second), loc).Load(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errdefs.ErrStructural))
	})
}

func TestHTTPFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("Non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "AccessDenied", http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(time.Second).Fetch(ctx, srv.URL+"/x.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errdefs.ErrTransport))
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "AccessDenied")
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(50*time.Millisecond).Fetch(ctx, srv.URL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errdefs.ErrTransport))
	})

	t.Run("Sends user agent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.UserAgent()))
		}))
		defer srv.Close()

		body, err := NewHTTPFetcher(time.Second).Fetch(ctx, srv.URL)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "ctxprobe"))
	})
}

func TestSourceClient(t *testing.T) {
	var hits atomic.Int32
	srv := newReportServer(t, &hits)

	loc, err := NewLocations(srv.URL, "proj", "20240131")
	require.NoError(t, err)
	sc := NewSourceClient(NewHTTPFetcher(time.Second), loc.SourceBase)

	assert.Equal(t, loc.SourceBase+"/src/lib/foo.h", sc.URL("/src/lib/foo.h"))

	body, err := sc.Fetch(context.Background(), "/src/lib/foo.h")
	require.NoError(t, err)
	assert.Contains(t, string(body), "struct Foo")

	_, err = sc.Fetch(context.Background(), "/src/lib/absent.h")
	assert.True(t, errors.Is(err, errdefs.ErrTransport))
}
