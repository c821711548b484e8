package termhost

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.lsp.dev/protocol"

	"github.com/hintsync/hintsync"
)

// Plain is a non-interactive host: documents go in, hint-annotated text
// comes out. Colors are used only when the writer is a terminal.
type Plain struct {
	w      io.Writer
	styles *Styles
	color  bool
	store  *docStore
}

var _ hintsync.Host = (*Plain)(nil)

// NewPlain creates a plain host writing to w.
func NewPlain(w io.Writer) *Plain {
	color := false
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		color = true
	}

	return &Plain{
		w:      w,
		styles: DefaultStyles(),
		color:  color,
		store:  newDocStore(),
	}
}

// Open registers a document as visible.
func (p *Plain) Open(uri protocol.DocumentURI, text string) {
	p.store.open(uri, text)
}

// Update replaces an open document's text.
func (p *Plain) Update(uri protocol.DocumentURI, text string) {
	p.store.update(uri, text)
}

// Close removes a document from the visible set.
func (p *Plain) Close(uri protocol.DocumentURI) {
	p.store.close(uri)
}

// VisibleDocuments implements hintsync.Host.
func (p *Plain) VisibleDocuments() []protocol.DocumentURI {
	return p.store.visible()
}

// SetDecorations implements hintsync.Host.
func (p *Plain) SetDecorations(uri protocol.DocumentURI, kind hintsync.InlayHintKind, decs []hintsync.Decoration) {
	p.store.set(uri, kind, decs)
}

// Render returns one document's text with its hints spliced in.
func (p *Plain) Render(uri protocol.DocumentURI) string {
	lines, decs := p.store.snapshot(uri)
	if lines == nil {
		return ""
	}

	header := fmt.Sprintf("%s  %d hints", uri, len(decs))
	if p.color {
		header = p.styles.SymbolPointer + " " + p.styles.Path.Render(string(uri)) +
			p.styles.Dim.Render(fmt.Sprintf("  %d hints", len(decs)))
	}

	body := renderLines(lines, decs, p.styles, p.color)

	return header + "\n" + strings.Join(body, "\n") + "\n"
}

// Print writes every visible document's rendering to the host writer.
func (p *Plain) Print() {
	for _, uri := range p.store.visible() {
		fmt.Fprintln(p.w, p.Render(uri))
	}
}
