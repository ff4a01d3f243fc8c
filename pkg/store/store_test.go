package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/source"
)

// scriptedSource returns the queued results in order, then repeats the last.
type scriptedSource struct {
	mu      sync.Mutex
	results []result
	calls   int
	gate    chan struct{} // when set, Load blocks until it is closed
}

type result struct {
	apis []descriptor.API
	err  error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Load(ctx context.Context) ([]descriptor.API, error) {
	s.mu.Lock()
	r := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.apis, r.err
}

func apis(paths ...string) []descriptor.API {
	out := make([]descriptor.API, len(paths))
	for i, p := range paths {
		out[i] = descriptor.API{Method: "GET", Path: p}
	}
	return out
}

func TestLoadAndGet(t *testing.T) {
	s := New(source.Static(apis("/a", "/b")...))
	if s.Loaded() || s.Version() != 0 {
		t.Fatal("new store should be empty")
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || s.Len() != 2 || !s.Loaded() || s.Version() != 1 {
		t.Fatalf("after Load: len %d, Len %d, Loaded %v, Version %d", len(got), s.Len(), s.Loaded(), s.Version())
	}

	api, err := s.Get(1)
	if err != nil || api.Path != "/b" {
		t.Errorf("Get(1) = %+v, %v", api, err)
	}
	for _, idx := range []int{-1, 2, 100} {
		if _, err := s.Get(idx); !errs.Is(err, errs.ErrCodeIndexOutOfRange) {
			t.Errorf("Get(%d) err = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
	}
}

func TestGetBeforeLoad(t *testing.T) {
	s := New(source.Static())
	if _, err := s.Get(0); !errs.Is(err, errs.ErrCodeIndexOutOfRange) {
		t.Errorf("Get(0) on empty store err = %v", err)
	}
}

func TestLoadEmptyFeed(t *testing.T) {
	s := New(&scriptedSource{results: []result{{apis: nil}}})
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 || !s.Loaded() {
		t.Errorf("empty feed: got %v, Loaded %v", got, s.Loaded())
	}
}

func TestFailedReloadKeepsPriorFeed(t *testing.T) {
	src := &scriptedSource{results: []result{
		{apis: apis("/a")},
		{err: errors.New("connection refused")},
	}}
	s := New(src)

	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load(context.Background())
	if !errs.Is(err, errs.ErrCodeFetch) {
		t.Fatalf("reload err = %v, want FETCH_ERROR", err)
	}
	if s.Len() != 1 || s.Version() != 1 {
		t.Errorf("failed reload changed the store: Len %d, Version %d", s.Len(), s.Version())
	}
	if api, _ := s.Get(0); api.Path != "/a" {
		t.Errorf("Get(0) = %+v", api)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := New(source.Static(apis("/a")...))
	s.Load(context.Background())

	all := s.All()
	all[0].Path = "/mutated"
	if api, _ := s.Get(0); api.Path != "/a" {
		t.Error("All should return a copy")
	}
}

func TestLoadsAreSerialized(t *testing.T) {
	var active, peak atomic.Int32
	src := &trackingSource{active: &active, peak: &peak}
	s := New(src)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Load(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if peak.Load() != 1 {
		t.Errorf("peak concurrent loads = %d, want 1", peak.Load())
	}
	if s.Version() != 8 {
		t.Errorf("Version = %d, want 8", s.Version())
	}
}

type trackingSource struct {
	active, peak *atomic.Int32
}

func (s *trackingSource) Name() string { return "tracking" }

func (s *trackingSource) Load(ctx context.Context) ([]descriptor.API, error) {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	s.active.Add(-1)
	return apis("/a"), nil
}

func TestWaitingLoadHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	src := &scriptedSource{results: []result{{apis: apis("/a")}}, gate: gate}
	s := New(src)

	done := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(done)
	}()
	waitFor(t, func() bool { src.mu.Lock(); defer src.mu.Unlock(); return src.calls == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Load(ctx); !errs.Is(err, errs.ErrCodeFetch) {
		t.Errorf("queued Load err = %v, want FETCH_ERROR", err)
	}

	close(gate)
	<-done
}

func TestLoadAfterClose(t *testing.T) {
	gate := make(chan struct{})
	src := &scriptedSource{results: []result{{apis: apis("/a")}}, gate: gate}
	s := New(src)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background())
		errc <- err
	}()
	waitFor(t, func() bool { src.mu.Lock(); defer src.mu.Unlock(); return src.calls == 1 })

	s.Close()
	close(gate)

	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Errorf("in-flight Load err = %v, want ErrClosed", err)
	}
	if s.Loaded() || s.Len() != 0 {
		t.Error("late load must not publish its result")
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close err = %v, want ErrClosed", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}
