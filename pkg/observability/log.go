package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements all
// three hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// Install registers h for resolve, cache and HTTP events.
func (h LogHooks) Install() {
	SetResolveHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnResolveStart(_ context.Context, name, version string) {
	h.Logger.Debug("resolve start", "pkg", name, "version", version)
}

func (h LogHooks) OnResolveComplete(_ context.Context, name, version string, nodes, failed int, d time.Duration) {
	h.Logger.Debug("resolve done", "pkg", name, "version", version, "nodes", nodes, "failed", failed, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnRegistryQuery(_ context.Context, registry, name string, found bool) {
	h.Logger.Debug("registry query", "registry", registry, "pkg", name, "found", found)
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
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ ResolveHooks = LogHooks{}
	_ CacheHooks   = LogHooks{}
	_ HTTPHooks    = LogHooks{}
)
