package source

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/descriptor"
)

// Cached serves a snapshot of Inner's feed from a cache. A live snapshot
// is returned without touching Inner. Errors from Inner are returned
// unchanged and leave the snapshot as it was.
//
// The CLI uses this so repeated list/show/render calls do not hit the
// service each time.
type Cached struct {
	Inner   Source
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Refresh bool // bypass the snapshot on read, still write it
	Logger  *log.Logger
}

func (c *Cached) Name() string { return c.Inner.Name() }

func (c *Cached) Load(ctx context.Context) ([]descriptor.API, error) {
	keyer := c.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.FeedKey(c.Inner.Name())

	if !c.Refresh {
		data, hit, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.warn("feed snapshot read failed", "err", err)
		} else if hit {
			if apis, err := descriptor.Unmarshal(data); err == nil {
				return apis, nil
			}
			c.warn("discarding unreadable feed snapshot", "source", c.Inner.Name())
		}
	}

	apis, err := c.Inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := descriptor.Marshal(apis); err == nil {
		if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
			c.warn("feed snapshot write failed", "err", err)
		}
	}
	return apis, nil
}

func (c *Cached) warn(msg string, kv ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, kv...)
	}
}
