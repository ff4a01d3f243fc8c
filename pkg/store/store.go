// Package store holds the descriptor feed currently shown by the viewer.
//
// A [Store] is loaded from a [source.Source] and then serves random access
// by index. Reloads replace the whole feed at once: readers see either the
// previous feed or the new one, never a mix, and a failed reload leaves the
// previous feed in place.
//
// Loads are serialized. A second Load waits for the first to finish and
// then performs its own fetch, so the last caller always observes a feed at
// least as new as its call.
package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/observability"
	"github.com/matzehuels/loomviz/pkg/source"
)

// ErrClosed is returned by operations on a closed store, including loads
// that were in flight when the store closed.
var ErrClosed = errors.New("store closed")

// Store is the in-memory descriptor feed. It is safe for concurrent use.
type Store struct {
	src    source.Source
	logger *log.Logger

	// loadMu serializes loads; it is a channel so waiting honours ctx.
	loadMu chan struct{}

	mu      sync.RWMutex
	apis    []descriptor.API
	loaded  bool
	version uint64
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store reading from src.
func New(src source.Source, opts ...Option) *Store {
	s := &Store{
		src:    src,
		logger: log.New(io.Discard),
		loadMu: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the store's source.
func (s *Store) Source() source.Source { return s.src }

// Load fetches the feed and replaces the stored one. Failures are returned
// as FETCH_ERROR and leave the stored feed untouched. The returned slice is
// a copy.
func (s *Store) Load(ctx context.Context) ([]descriptor.API, error) {
	select {
	case s.loadMu <- struct{}{}:
	case <-ctx.Done():
		return nil, errs.FetchError(s.src.Name(), ctx.Err())
	}
	defer func() { <-s.loadMu }()

	if s.isClosed() {
		return nil, ErrClosed
	}

	name := s.src.Name()
	hooks := observability.Load()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	apis, err := s.src.Load(ctx)
	if err != nil {
		err = errs.FetchError(name, err)
		hooks.OnLoadComplete(ctx, name, 0, time.Since(start), err)
		s.logger.Error("load descriptor feed", "source", name, "err", err)
		return nil, err
	}
	if apis == nil {
		apis = []descriptor.API{}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.apis = apis
	s.loaded = true
	s.version++
	version := s.version
	s.mu.Unlock()

	hooks.OnLoadComplete(ctx, name, len(apis), time.Since(start), nil)
	s.logger.Debug("loaded descriptor feed", "source", name, "apis", len(apis), "version", version)
	return clone(apis), nil
}

// Get returns the descriptor at index, or INDEX_OUT_OF_RANGE.
func (s *Store) Get(index int) (descriptor.API, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.apis) {
		return descriptor.API{}, errs.IndexError(index, len(s.apis))
	}
	return s.apis[index], nil
}

// All returns a copy of the stored feed.
func (s *Store) All() []descriptor.API {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.apis)
}

// Len returns the number of stored descriptors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apis)
}

// Loaded reports whether a load has ever succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Version is bumped by every successful load, starting at 1.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Close discards the feed. Loads completing afterwards return ErrClosed
// without publishing their result. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.apis = nil
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func clone(apis []descriptor.API) []descriptor.API {
	out := make([]descriptor.API, len(apis))
	copy(out, apis)
	return out
}
