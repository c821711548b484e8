// Package client speaks the Language Server Protocol from the editor side:
// lifecycle handshake, full-sync document notifications, and the inlay-hint
// request issued through the retrying dispatcher.
package client

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/hintsync/hintsync"
	"github.com/hintsync/hintsync/dispatch"
)

// Client is an LSP client bound to one server connection. It implements
// hintsync.Service.
type Client struct {
	conn       jsonrpc2.Conn
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*document
}

// document tracks what the server has been told about an open file.
type document struct {
	version int32
	span    protocol.Range // full-document range for hint requests
}

// New creates a Client over an established connection.
func New(conn jsonrpc2.Conn, logger *zap.Logger) *Client {
	return &Client{
		conn:       conn,
		dispatcher: dispatch.New(conn, logger),
		logger:     logger,
		documents:  make(map[protocol.DocumentURI]*document),
	}
}

// Initialize runs the initialize/initialized handshake.
func (c *Client) Initialize(ctx context.Context, root protocol.DocumentURI) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()), //nolint:gosec // G115: PIDs fit in int32
		ClientInfo: &protocol.ClientInfo{
			Name:    "hintsync",
			Version: "0.1.0",
		},
		RootURI:      root,
		Capabilities: protocol.ClientCapabilities{},
	}

	var result protocol.InitializeResult

	_, err := c.conn.Call(ctx, protocol.MethodInitialize, params, &result)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if result.ServerInfo != nil {
		c.logger.Info("Connected to language server",
			zap.String("name", result.ServerInfo.Name),
			zap.String("version", result.ServerInfo.Version))
	}

	return c.conn.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{})
}

// Shutdown runs the shutdown/exit sequence.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.conn.Call(ctx, protocol.MethodShutdown, nil, nil)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return c.conn.Notify(ctx, protocol.MethodExit, nil)
}

// DidOpen announces a document and starts tracking it.
func (c *Client) DidOpen(ctx context.Context, uri protocol.DocumentURI, languageID, text string) error {
	c.mu.Lock()
	c.documents[uri] = &document{version: 1, span: fullRange(text)}
	c.mu.Unlock()

	return c.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    1,
			Text:       text,
		},
	})
}

// DidChange sends the full new content of an open document. Only full
// document sync is supported.
func (c *Client) DidChange(ctx context.Context, uri protocol.DocumentURI, text string) error {
	c.mu.Lock()

	doc, ok := c.documents[uri]
	if !ok {
		c.mu.Unlock()

		return fmt.Errorf("document not open: %s", uri)
	}

	doc.version++
	doc.span = fullRange(text)
	version := doc.version
	c.mu.Unlock()

	return c.conn.Notify(ctx, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: text},
		},
	})
}

// DidClose stops tracking a document.
func (c *Client) DidClose(ctx context.Context, uri protocol.DocumentURI) error {
	c.mu.Lock()
	delete(c.documents, uri)
	c.mu.Unlock()

	return c.conn.Notify(ctx, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
}

// InlayHints requests hints for the full range of an open document. The
// dispatcher absorbs content-modified races; cancellation and fatal errors
// come back unchanged.
func (c *Client) InlayHints(ctx context.Context, uri protocol.DocumentURI) ([]hintsync.InlayHint, error) {
	c.mu.RLock()
	doc, ok := c.documents[uri]

	var span protocol.Range
	if ok {
		span = doc.span
	}
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}

	params := &hintsync.InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Range:        span,
	}

	var hints []hintsync.InlayHint

	err := c.dispatcher.Send(ctx, hintsync.MethodTextDocumentInlayHint, params, &hints)
	if err != nil {
		return nil, err
	}

	return hints, nil
}
