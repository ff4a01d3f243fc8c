package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger. Failures are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// RegisterLogHooks installs l-backed hooks for all event categories.
func RegisterLogHooks(l *log.Logger) {
	RegisterAll(LogHooks{Logger: l})
}

func (h LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("loading descriptors", "source", source)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, count int, d time.Duration, err error) {
	h.done("descriptors loaded", err, "source", source, "apis", count, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnSelect(_ context.Context, index int, title string, d time.Duration, err error) {
	h.done("api selected", err, "index", index, "api", title, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.Logger.Debug("layout", "engine", engine, "nodes", nodeCount)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	h.done("layout done", err, "engine", engine, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
