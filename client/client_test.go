package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/hintsync/hintsync"
	"github.com/hintsync/hintsync/dispatch"
)

const testURI = protocol.DocumentURI("file:///main.go")

type rpcCall struct {
	method string
	params interface{}
}

// fakeConn implements jsonrpc2.Conn, recording traffic and scripting
// responses per call.
type fakeConn struct {
	mu            sync.Mutex
	calls         []rpcCall
	notifications []rpcCall

	hints    []hintsync.InlayHint
	callErrs []error
	nCalls   int
}

func (f *fakeConn) Call(_ context.Context, method string, params, result interface{}) (jsonrpc2.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, rpcCall{method: method, params: params})

	var err error
	if f.nCalls < len(f.callErrs) {
		err = f.callErrs[f.nCalls]
	}

	f.nCalls++

	if err != nil {
		return jsonrpc2.ID{}, err
	}

	switch out := result.(type) {
	case *[]hintsync.InlayHint:
		*out = f.hints
	case *protocol.InitializeResult:
		*out = protocol.InitializeResult{
			ServerInfo: &protocol.ServerInfo{Name: "fake-ls", Version: "0.0.1"},
		}
	}

	return jsonrpc2.ID{}, nil
}

func (f *fakeConn) Notify(_ context.Context, method string, params interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = append(f.notifications, rpcCall{method: method, params: params})

	return nil
}

func (f *fakeConn) Go(context.Context, jsonrpc2.Handler) {}
func (f *fakeConn) Close() error                        { return nil }
func (f *fakeConn) Done() <-chan struct{}               { return nil }
func (f *fakeConn) Err() error                          { return nil }

func newTestClient(t *testing.T, conn *fakeConn) *Client {
	t.Helper()

	return New(conn, zap.NewNop())
}

func TestClient_Initialize(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	c := newTestClient(t, conn)

	err := c.Initialize(context.Background(), protocol.DocumentURI("file:///workspace"))
	require.NoError(t, err)

	require.Len(t, conn.calls, 1)
	assert.Equal(t, protocol.MethodInitialize, conn.calls[0].method)

	require.Len(t, conn.notifications, 1)
	assert.Equal(t, protocol.MethodInitialized, conn.notifications[0].method)
}

func TestClient_DidOpenAndChange(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	c := newTestClient(t, conn)
	ctx := context.Background()

	require.NoError(t, c.DidOpen(ctx, testURI, "go", "x := 1\n"))
	require.NoError(t, c.DidChange(ctx, testURI, "x := 1\ny := 2\n"))

	require.Len(t, conn.notifications, 2)
	assert.Equal(t, protocol.MethodTextDocumentDidOpen, conn.notifications[0].method)
	assert.Equal(t, protocol.MethodTextDocumentDidChange, conn.notifications[1].method)

	change, ok := conn.notifications[1].params.(*protocol.DidChangeTextDocumentParams)
	require.True(t, ok)
	assert.Equal(t, int32(2), change.TextDocument.Version)
	require.Len(t, change.ContentChanges, 1)
	assert.Equal(t, "x := 1\ny := 2\n", change.ContentChanges[0].Text)
}

func TestClient_DidChangeUnknownDocument(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	c := newTestClient(t, conn)

	err := c.DidChange(context.Background(), testURI, "text")
	require.Error(t, err)
	assert.Empty(t, conn.notifications)
}

func TestClient_InlayHints(t *testing.T) {
	t.Parallel()

	want := []hintsync.InlayHint{
		{Kind: hintsync.KindType, Label: "int"},
	}
	conn := &fakeConn{hints: want}
	c := newTestClient(t, conn)
	ctx := context.Background()

	require.NoError(t, c.DidOpen(ctx, testURI, "go", "x := 1\ny := 2"))

	hints, err := c.InlayHints(ctx, testURI)
	require.NoError(t, err)
	assert.Equal(t, want, hints)

	require.Len(t, conn.calls, 1)
	assert.Equal(t, hintsync.MethodTextDocumentInlayHint, conn.calls[0].method)

	params, ok := conn.calls[0].params.(*hintsync.InlayHintParams)
	require.True(t, ok)
	assert.Equal(t, testURI, params.TextDocument.URI)

	// Full-document range: two lines, six characters on the last.
	assert.Equal(t, uint32(1), params.Range.End.Line)
	assert.Equal(t, uint32(6), params.Range.End.Character)
}

func TestClient_InlayHintsUnopenedDocument(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	c := newTestClient(t, conn)

	_, err := c.InlayHints(context.Background(), testURI)
	require.Error(t, err)
	assert.Empty(t, conn.calls)
}

func TestClient_InlayHintsRetriesContentModified(t *testing.T) {
	t.Parallel()

	want := []hintsync.InlayHint{{Kind: hintsync.KindParameter, Label: "n"}}
	conn := &fakeConn{
		hints: want,
		callErrs: []error{
			jsonrpc2.NewError(dispatch.CodeContentModified, "content modified"),
		},
	}
	c := newTestClient(t, conn)
	ctx := context.Background()

	require.NoError(t, c.DidOpen(ctx, testURI, "go", "f(1)"))

	hints, err := c.InlayHints(ctx, testURI)
	require.NoError(t, err)
	assert.Equal(t, want, hints)
	assert.Len(t, conn.calls, 2)
}
