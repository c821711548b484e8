// Package engine keeps rendered inlay hints in step with document,
// visibility, and configuration changes.
//
// Three independent event sources feed one coordinator. Every event that
// can invalidate what is on screen triggers a refresh of the visible
// documents; each document's refresh supersedes any still-running fetch for
// that document, so only the newest request can ever reach the renderer.
package engine

import (
	"context"
	"errors"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/hintsync/hintsync"
	"github.com/hintsync/hintsync/dispatch"
)

// Engine is the update coordinator. The zero configuration is disabled;
// call SetEnabled to start rendering.
type Engine struct {
	service hintsync.Service
	host    hintsync.Host
	logger  *zap.Logger

	registry *registry

	// mu guards cfg and rendered, and serializes rendering against
	// teardown so a fetch that slips past cancellation still cannot
	// paint a cleared document.
	mu       sync.Mutex
	cfg      hintsync.Hints
	rendered map[protocol.DocumentURI]struct{}

	wg sync.WaitGroup
}

// New creates an Engine in the disabled state.
func New(service hintsync.Service, host hintsync.Host, logger *zap.Logger) *Engine {
	return &Engine{
		service:  service,
		host:     host,
		logger:   logger,
		registry: newRegistry(),
		rendered: make(map[protocol.DocumentURI]struct{}),
	}
}

// SetEnabled adopts a new hint configuration. A configuration equal to the
// current one is a no-op. Disabling cancels every in-flight fetch and blanks
// every rendered document; enabling (or changing categories while enabled)
// refreshes all visible documents.
func (e *Engine) SetEnabled(ctx context.Context, cfg hintsync.Hints) {
	e.mu.Lock()

	if cfg == e.cfg {
		e.mu.Unlock()

		return
	}

	e.cfg = cfg

	if !cfg.Enabled {
		e.registry.cancelAll()
		e.clearLocked()
		e.mu.Unlock()

		return
	}

	e.mu.Unlock()

	e.logger.Debug("hints enabled",
		zap.Bool("types", cfg.TypeHints),
		zap.Bool("parameters", cfg.ParameterHints))

	e.Refresh(ctx)
}

// Refresh re-fetches hints for every currently visible document. Documents
// fan out concurrently; each one supersedes its own prior fetch. A no-op
// while disabled.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	enabled := e.cfg.Enabled
	e.mu.Unlock()

	if !enabled {
		return
	}

	for _, uri := range e.host.VisibleDocuments() {
		e.wg.Add(1)

		go func(uri protocol.DocumentURI) {
			defer e.wg.Done()
			e.refreshDocument(ctx, uri)
		}(uri)
	}
}

// DidEdit reacts to a document-change notification carrying the number of
// content changes. An empty change set is ignored, so no-op events cannot
// cause refresh storms.
func (e *Engine) DidEdit(ctx context.Context, changes int) {
	if changes == 0 {
		return
	}

	e.Refresh(ctx)
}

// VisibilityChanged reacts to the set of visible documents changing.
func (e *Engine) VisibilityChanged(ctx context.Context) {
	e.Refresh(ctx)
}

// Clear tears the engine down: every in-flight fetch is cancelled, every
// tracked document is blanked, and the engine returns to the disabled state
// until SetEnabled is called again.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.registry.cancelAll()
	e.clearLocked()
	e.cfg = hintsync.Hints{}
}

// Wait blocks until every in-flight refresh has settled. Used on teardown
// and in tests; refreshes triggered after Wait returns are not covered.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// refreshDocument runs one document's pipeline: supersede, fetch, render.
func (e *Engine) refreshDocument(ctx context.Context, uri protocol.DocumentURI) {
	reqCtx, in := e.registry.supersede(ctx, uri)

	hints, err := e.service.InlayHints(reqCtx, uri)
	if err != nil {
		// A failed fetch never touches what is already rendered: the
		// document keeps its last good annotations this round.
		e.registry.release(uri, in)
		e.logFetchFailure(uri, err)

		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Superseded or torn down while the response was in flight: the
	// result belongs to a request nobody cares about anymore.
	if !e.registry.release(uri, in) {
		return
	}

	if !e.cfg.Enabled {
		return
	}

	e.applyLocked(uri, hints)
}

// applyLocked replaces the rendered set for every category of uri. Enabled
// categories get their freshly filtered hints; disabled ones get the empty
// set, so nothing of a newly switched-off category lingers.
func (e *Engine) applyLocked(uri protocol.DocumentURI, hints []hintsync.InlayHint) {
	for _, kind := range hintsync.Kinds() {
		var decs []hintsync.Decoration
		if e.cfg.Enables(kind) {
			decs = decorations(hints, kind)
		}

		e.host.SetDecorations(uri, kind, decs)
	}

	e.rendered[uri] = struct{}{}
}

func (e *Engine) clearLocked() {
	for uri := range e.rendered {
		for _, kind := range hintsync.Kinds() {
			e.host.SetDecorations(uri, kind, nil)
		}

		delete(e.rendered, uri)
	}
}

func (e *Engine) logFetchFailure(uri protocol.DocumentURI, err error) {
	switch {
	case dispatch.IsCancelled(err):
		// Expected whenever a newer request supersedes this one.
		e.logger.Debug("hint fetch superseded", zap.String("uri", string(uri)))
	case errors.Is(err, dispatch.ErrRetriesExhausted):
		e.logger.Warn("hint fetch gave up after retries",
			zap.String("uri", string(uri)), zap.Error(err))
	default:
		e.logger.Error("hint fetch failed",
			zap.String("uri", string(uri)), zap.Error(err))
	}
}
