package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type queryEntry struct {
	value     interface{}
	fetchedAt time.Time
}

// QueryClient caches GET results for ttl and collapses concurrent identical
// fetches into one round trip.
type QueryClient struct {
	client  *Client
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]queryEntry
	group   singleflight.Group
	now     func() time.Time
}

func NewQueryClient(c *Client, ttl time.Duration) *QueryClient {
	return &QueryClient{
		client:  c,
		ttl:     ttl,
		entries: make(map[string]queryEntry),
		now:     time.Now,
	}
}

// Query returns a cached value for the request when fresh, otherwise fetches it.
// Cancelling ctx returns immediately with ctx.Err(). The shared fetch keeps
// running for the other waiters and is bounded by the client timeout.
func Query[Resp any](ctx context.Context, q *QueryClient, req Request[NoBody]) (Resp, error) {
	var zero Resp
	req.Method = http.MethodGet

	target, err := q.client.BuildURL(req.Path, req.PathParams, req.Query)
	if err != nil {
		return zero, err
	}
	key := target + "#" + req.ResultPath

	q.mu.Lock()
	e, ok := q.entries[key]
	q.mu.Unlock()
	if ok && q.now().Sub(e.fetchedAt) < q.ttl {
		if v, ok := e.value.(Resp); ok {
			return v, nil
		}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := q.group.DoChan(key, func() (interface{}, error) {
		v, err := Do[NoBody, Resp](fetchCtx, q.client, req)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		q.entries[key] = queryEntry{value: v, fetchedAt: q.now()}
		q.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(Resp)
		if !ok {
			return zero, fmt.Errorf("apiclient: cached value for %s has type %T", key, res.Val)
		}
		return v, nil
	}
}

// Invalidate drops every cached entry whose URL starts with the given path prefix.
func (q *QueryClient) Invalidate(pathPrefix string) {
	prefix := q.client.baseURL.String() + pathPrefix
	q.mu.Lock()
	defer q.mu.Unlock()
	for k := range q.entries {
		if strings.HasPrefix(k, prefix) {
			delete(q.entries, k)
		}
	}
}

// Len reports how many entries are cached.
func (q *QueryClient) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
