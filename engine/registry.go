package engine

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
)

// inflight is the cancellation handle for one outstanding hint request.
// The registry owns it for the request's lifetime; superseding the request
// cancels it and installs a fresh one.
type inflight struct {
	cancel context.CancelFunc
}

// registry tracks at most one in-flight request per document. Supersession
// is the only way an earlier request gets invalidated, which is what keeps
// a slow stale response from ever reaching the renderer.
type registry struct {
	mu       sync.Mutex
	requests map[protocol.DocumentURI]*inflight
}

func newRegistry() *registry {
	return &registry{requests: make(map[protocol.DocumentURI]*inflight)}
}

// supersede cancels any request currently registered for uri and registers
// a fresh one, returning its context and handle.
func (r *registry) supersede(parent context.Context, uri protocol.DocumentURI) (context.Context, *inflight) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.requests[uri]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	in := &inflight{cancel: cancel}
	r.requests[uri] = in

	return ctx, in
}

// release removes the registration iff in is still the current one, and
// reports whether it was. A request that has been superseded (or swept by
// cancelAll) gets false and must discard its result.
func (r *registry) release(uri protocol.DocumentURI, in *inflight) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.requests[uri] != in {
		return false
	}

	in.cancel()
	delete(r.requests, uri)

	return true
}

// cancelAll cancels and discards every registered request.
func (r *registry) cancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uri, in := range r.requests {
		in.cancel()
		delete(r.requests, uri)
	}
}
