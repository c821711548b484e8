package hintsync

import "go.lsp.dev/protocol"

// Decoration is one visual marker handed to the host: a label anchored at a
// source range, shown before the range for parameter hints and after it for
// type hints.
type Decoration struct {
	Range  protocol.Range
	Label  string
	Before bool
}

// Host is the editor collaborator. It enumerates the documents currently on
// screen and owns the rendering primitive.
//
// SetDecorations replaces the full set for (uri, kind) in one call; the
// engine never patches incrementally, so a category can never show a mix of
// old and new markers.
type Host interface {
	VisibleDocuments() []protocol.DocumentURI
	SetDecorations(uri protocol.DocumentURI, kind InlayHintKind, decorations []Decoration)
}
