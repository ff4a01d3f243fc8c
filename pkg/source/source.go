// Package source loads API descriptor feeds.
//
// A [Source] produces the complete, ordered descriptor list in one call. The
// store treats every call as a full reload; sources never return partial
// feeds.
//
// Implementations:
//   - [HTTPSource]: GET a running service's feed endpoint, with retries
//   - [FileSource]: read a JSON feed from disk
//   - [StaticSource]: a fixed in-memory feed
//   - [Cached]: wraps another source with a snapshot in a [cache.Cache]
package source

import (
	"context"

	"github.com/matzehuels/loomviz/pkg/descriptor"
)

// Source produces a descriptor feed.
type Source interface {
	// Load fetches the whole feed. The returned slice is owned by the caller.
	Load(ctx context.Context) ([]descriptor.API, error)

	// Name identifies the source in logs, hooks and cache keys.
	Name() string
}

// StaticSource serves a fixed feed.
type StaticSource struct {
	APIs  []descriptor.API
	Label string
}

// Static returns a source serving apis.
func Static(apis ...descriptor.API) *StaticSource {
	return &StaticSource{APIs: apis, Label: "static"}
}

func (s *StaticSource) Load(ctx context.Context) ([]descriptor.API, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]descriptor.API, len(s.APIs))
	copy(out, s.APIs)
	return out, nil
}

func (s *StaticSource) Name() string { return s.Label }

// FileSource reads a feed from a JSON file on every load.
type FileSource struct {
	Path string
}

// File returns a source reading path.
func File(path string) *FileSource { return &FileSource{Path: path} }

func (s *FileSource) Load(ctx context.Context) ([]descriptor.API, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return descriptor.ReadFile(s.Path)
}

func (s *FileSource) Name() string { return "file://" + s.Path }
