package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/descriptor"
	"github.com/matzehuels/loomviz/pkg/httputil"
)

const feed = `[{"method":"GET","path":"/users","type":"builder","nodes":[{"name":"load","required":true,"terminal":true}]}]`

var fastRetry = httputil.Policy{Attempts: 3, Delay: time.Millisecond}

func TestHTTPSource(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	src, err := NewHTTP(srv.URL, WithClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	apis, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(apis) != 1 || apis[0].Title() != "GET /users" {
		t.Errorf("apis = %+v", apis)
	}
	if gotPath != DefaultFeedPath {
		t.Errorf("path = %q, want %q", gotPath, DefaultFeedPath)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestHTTPSourceKeepsExplicitPath(t *testing.T) {
	src, err := NewHTTP("http://example.com/custom/feed")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name() != "http://example.com/custom/feed" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestNewHTTPRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com", "localhost:8080"} {
		if _, err := NewHTTP(u); err == nil {
			t.Errorf("NewHTTP(%q) should fail", u)
		}
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	src, _ := NewHTTP(srv.URL, WithPolicy(fastRetry))
	if _, err := src.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, "", httputil.ErrNotFound},
		{"bad request", http.StatusBadRequest, "", httputil.ErrNetwork},
		{"server error", http.StatusInternalServerError, "", httputil.ErrNetwork},
		{"malformed body", http.StatusOK, `{"nope"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src, _ := NewHTTP(srv.URL, WithPolicy(fastRetry))
			_, err := src.Load(context.Background())
			if err == nil {
				t.Fatal("Load should fail")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.json")
	if err := os.WriteFile(path, []byte(feed), 0o644); err != nil {
		t.Fatal(err)
	}
	src := File(path)
	apis, err := src.Load(context.Background())
	if err != nil || len(apis) != 1 {
		t.Fatalf("Load = %v, %v", apis, err)
	}
	if src.Name() != "file://"+path {
		t.Errorf("Name() = %q", src.Name())
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background()); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestStaticSourceCopies(t *testing.T) {
	src := Static(descriptor.API{Method: "GET", Path: "/a"})
	apis, _ := src.Load(context.Background())
	apis[0].Path = "/changed"

	again, _ := src.Load(context.Background())
	if again[0].Path != "/a" {
		t.Error("Load should return a copy of the static feed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx); err == nil {
		t.Error("Load should honour a cancelled context")
	}
}

type countingSource struct {
	Source
	calls int
	err   error
}

func (c *countingSource) Load(ctx context.Context) ([]descriptor.API, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.Source.Load(ctx)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingSource{Source: Static(descriptor.API{Method: "GET", Path: "/a"})}
	c := &Cached{Inner: inner, Cache: fc, TTL: time.Hour}

	for range 3 {
		apis, err := c.Load(ctx)
		if err != nil || len(apis) != 1 {
			t.Fatalf("Load = %v, %v", apis, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	c.Refresh = true
	if _, err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("Refresh should bypass the snapshot; inner calls = %d", inner.calls)
	}

	inner.err = errors.New("boom")
	if _, err := c.Load(ctx); err == nil {
		t.Error("Refresh with a failing source should fail")
	}
	c.Refresh = false
	if _, err := c.Load(ctx); err != nil {
		t.Errorf("snapshot should survive a failed refresh: %v", err)
	}
}
