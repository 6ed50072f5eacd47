package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports engine, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnScan(_ context.Context, root string, keys int, d time.Duration) {
	h.logger.Debug("store indexed", "root", root, "keys", keys, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnCollect(_ context.Context, dir string, moved, discarded int, err error) {
	if err != nil {
		h.logger.Debug("collect failed", "dir", dir, "err", err)
		return
	}
	h.logger.Debug("collected", "dir", dir, "moved", moved, "discarded", discarded)
}

func (h *logHooks) OnFetchStart(_ context.Context, deps int) {
	h.logger.Debug("fetch started", "deps", deps)
}

func (h *logHooks) OnFetchComplete(_ context.Context, deps int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "deps", deps, "took", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("fetch finished", "deps", deps, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnLink(_ context.Context, dest, target string, created bool) {
	if created {
		h.logger.Debug("linked", "path", dest, "target", target)
	}
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
