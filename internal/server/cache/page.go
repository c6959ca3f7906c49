// Package cache short-circuits repeated GET requests with a previously
// rendered response. Entries live in patrickmn/go-cache with a TTL.
package cache

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
)

// HeaderCache reports whether a response was served from the cache.
const HeaderCache = "X-Cache"

type entry struct {
	status  int
	header  http.Header
	content string
}

// PageCache is a pipeline aggregate. On route it answers cached GET
// requests before the router runs; on finish it stores successful GET
// responses.
type PageCache struct {
	store   *gocache.Cache
	handles []*events.Handle
}

// New creates a page cache. ttl is the entry lifetime and cleanup the
// interval at which expired entries are evicted.
func New(ttl, cleanup time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	if cleanup <= 0 {
		cleanup = constants.DefaultCacheCleanup
	}
	return &PageCache{store: gocache.New(ttl, cleanup)}
}

// Attach implements mvc.Aggregate.
func (c *PageCache) Attach(bus *mvc.Manager) {
	c.handles = append(c.handles,
		bus.Attach(mvc.EventRoute, c.OnRoute, constants.PriorityPageCache),
		bus.Attach(mvc.EventFinish, c.OnFinish, constants.PrioritySend+1),
	)
}

// Detach removes the listeners added by Attach.
func (c *PageCache) Detach(bus *mvc.Manager) {
	for _, h := range c.handles {
		bus.Detach(h)
	}
	c.handles = nil
}

// OnRoute returns a cached response for the request, if any.
func (c *PageCache) OnRoute(ctx context.Context, e *mvc.Event) (any, error) {
	key, ok := cacheKey(e.Request())
	if !ok {
		return nil, nil
	}
	v, found := c.store.Get(key)
	if !found {
		return nil, nil
	}
	cached := v.(*entry)

	resp := message.NewHTTPResponse()
	resp.SetStatusCode(cached.status)
	for name, values := range cached.header {
		resp.Header()[name] = append([]string(nil), values...)
	}
	resp.Header().Set(HeaderCache, "HIT")
	resp.SetContent(cached.content)

	logging.FromContext(ctx).Debug().Str("key", key).Msg("Page cache hit")
	return resp, nil
}

// OnFinish stores the response when it is a plain 200 answer to a GET.
func (c *PageCache) OnFinish(ctx context.Context, e *mvc.Event) (any, error) {
	if e.IsError() {
		return nil, nil
	}
	key, ok := cacheKey(e.Request())
	if !ok {
		return nil, nil
	}
	resp, ok := e.Response().(*message.HTTPResponse)
	if !ok || resp.StatusCode() != http.StatusOK {
		return nil, nil
	}
	if resp.Header().Get(HeaderCache) == "HIT" || resp.Header().Get("Cache-Control") == "no-store" {
		return nil, nil
	}

	resp.Header().Set(HeaderCache, "MISS")
	c.store.SetDefault(key, &entry{
		status:  resp.StatusCode(),
		header:  resp.Header().Clone(),
		content: resp.Content(),
	})
	logging.FromContext(ctx).Debug().Str("key", key).Msg("Page cached")
	return nil, nil
}

// ItemCount returns the number of cached pages, including expired ones
// not yet evicted.
func (c *PageCache) ItemCount() int {
	return c.store.ItemCount()
}

// Clear drops every cached page.
func (c *PageCache) Clear() {
	c.store.Flush()
}

func cacheKey(req message.Request) (string, bool) {
	r, ok := req.(*message.HTTPRequest)
	if !ok || r.Method() != http.MethodGet {
		return "", false
	}
	return r.Raw().URL.RequestURI() + "|" + r.Header().Get("Accept"), true
}
