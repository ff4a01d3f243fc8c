package observability

import (
	"context"
	"time"
)

// AllHooks implements every hook category.
type AllHooks interface {
	LoadHooks
	SelectionHooks
	LayoutHooks
	CacheHooks
	HTTPHooks
}

// RegisterAll installs h for every category.
func RegisterAll(h AllHooks) {
	SetLoadHooks(h)
	SetSelectionHooks(h)
	SetLayoutHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

// Multi fans each event out to hs in order.
type Multi []AllHooks

var _ AllHooks = Multi(nil)

func (m Multi) OnLoadStart(ctx context.Context, source string) {
	for _, h := range m {
		h.OnLoadStart(ctx, source)
	}
}

func (m Multi) OnLoadComplete(ctx context.Context, source string, count int, d time.Duration, err error) {
	for _, h := range m {
		h.OnLoadComplete(ctx, source, count, d, err)
	}
}

func (m Multi) OnSelect(ctx context.Context, index int, title string, d time.Duration, err error) {
	for _, h := range m {
		h.OnSelect(ctx, index, title, d, err)
	}
}

func (m Multi) OnLayoutStart(ctx context.Context, engine string, nodeCount int) {
	for _, h := range m {
		h.OnLayoutStart(ctx, engine, nodeCount)
	}
}

func (m Multi) OnLayoutComplete(ctx context.Context, engine string, d time.Duration, err error) {
	for _, h := range m {
		h.OnLayoutComplete(ctx, engine, d, err)
	}
}

func (m Multi) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheHit(ctx, keyType)
	}
}

func (m Multi) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (m Multi) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (m Multi) OnRequest(ctx context.Context, method, host, path string) {
	for _, h := range m {
		h.OnRequest(ctx, method, host, path)
	}
}

func (m Multi) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	for _, h := range m {
		h.OnResponse(ctx, method, host, path, status, d)
	}
}

func (m Multi) OnError(ctx context.Context, method, host, path string, err error) {
	for _, h := range m {
		h.OnError(ctx, method, host, path, err)
	}
}
