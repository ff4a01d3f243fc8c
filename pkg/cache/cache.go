// Package cache stores rendered artifacts and feed snapshots.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry TTL:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: shared cache for several viewer instances
//   - [MongoCache]: shared cache backed by a TTL-indexed collection
//
// [Open] picks a backend from a URL-like spec, which is how the
// LOOMVIZ_CACHE setting is interpreted.
//
// Keys come from a [Keyer] so every consumer derives them the same way.
package cache

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store. A miss is (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend named by spec:
//
//	""  or "none"               NullCache
//	"redis://host:6379/0"       RedisCache
//	"mongodb://host/db"         MongoCache (collection "artifacts")
//	"file:///path" or a path    FileCache
func Open(ctx context.Context, spec string) (Cache, error) {
	switch {
	case spec == "" || spec == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		return NewRedisCache(ctx, spec, DefaultRedisPrefix)
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		db := DefaultMongoDatabase
		if u, err := url.Parse(spec); err == nil && strings.Trim(u.Path, "/") != "" {
			db = strings.Trim(u.Path, "/")
		}
		return NewMongoCache(ctx, spec, db, DefaultMongoCollection)
	case strings.HasPrefix(spec, "file://"):
		return NewFileCache(filepath.FromSlash(strings.TrimPrefix(spec, "file://")))
	default:
		return NewFileCache(spec)
	}
}
