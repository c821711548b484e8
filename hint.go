// Package hintsync keeps editor-rendered inlay hints in sync with a set of
// open documents by talking to a language server over JSON-RPC.
//
// The package root holds the shared wire types and the two collaborator
// interfaces (Service for the analysis side, Host for the rendering side).
// The moving parts live in the subpackages: dispatch sends requests with
// bounded retry, engine coordinates per-document refreshes, client speaks
// the protocol, and termhost renders into a terminal.
package hintsync

import (
	"context"

	"go.lsp.dev/protocol"
)

// MethodTextDocumentInlayHint is the LSP 3.17 request for inlay hints.
//
// go.lsp.dev/protocol v0.12.0 predates LSP 3.17, so the method name and the
// types below are declared here rather than imported.
const MethodTextDocumentInlayHint = "textDocument/inlayHint"

// InlayHintKind is the category of an inlay hint.
type InlayHintKind int32

const (
	// KindType marks a trailing type annotation (rendered after its range).
	KindType InlayHintKind = 1
	// KindParameter marks a leading parameter-name annotation (rendered
	// before its range).
	KindParameter InlayHintKind = 2
)

// Kinds lists every hint category, in rendering order.
func Kinds() []InlayHintKind {
	return []InlayHintKind{KindType, KindParameter}
}

func (k InlayHintKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// InlayHint is a single annotation produced by the analysis service,
// anchored at a range in the document. Consumed read-only.
type InlayHint struct {
	Range protocol.Range `json:"range"`
	Kind  InlayHintKind  `json:"kind"`
	Label string         `json:"label"`
}

// InlayHintParams requests hints for a document range.
type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// Service is the analysis-service collaborator: one request type, "get
// inlay hints for document". Implementations absorb transport concerns;
// cancellation of ctx must abort the call.
type Service interface {
	InlayHints(ctx context.Context, uri protocol.DocumentURI) ([]InlayHint, error)
}
