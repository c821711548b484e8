// Package termhost renders inlay hints into a terminal. It provides two
// implementations of hintsync.Host: Plain, which splices hints into document
// text for one-shot printing, and TUI, an interactive bubbletea view with
// live category toggles.
package termhost

import (
	"strings"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/hintsync/hintsync"
)

// docStore holds the open documents and their rendered decoration sets.
// Both hosts keep one; the TUI additionally mirrors it into the tea model.
type docStore struct {
	mu    sync.Mutex
	order []protocol.DocumentURI
	lines map[protocol.DocumentURI][]string
	decs  map[protocol.DocumentURI]map[hintsync.InlayHintKind][]hintsync.Decoration
}

func newDocStore() *docStore {
	return &docStore{
		lines: make(map[protocol.DocumentURI][]string),
		decs:  make(map[protocol.DocumentURI]map[hintsync.InlayHintKind][]hintsync.Decoration),
	}
}

func (s *docStore) open(uri protocol.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[uri]; !ok {
		s.order = append(s.order, uri)
	}

	s.lines[uri] = strings.Split(text, "\n")
}

func (s *docStore) update(uri protocol.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[uri]; !ok {
		return
	}

	s.lines[uri] = strings.Split(text, "\n")
}

func (s *docStore) close(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, uri)
	delete(s.decs, uri)

	for i, u := range s.order {
		if u == uri {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}
}

func (s *docStore) visible() []protocol.DocumentURI {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]protocol.DocumentURI(nil), s.order...)
}

func (s *docStore) set(uri protocol.DocumentURI, kind hintsync.InlayHintKind, decs []hintsync.Decoration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.decs[uri] == nil {
		s.decs[uri] = make(map[hintsync.InlayHintKind][]hintsync.Decoration)
	}

	s.decs[uri][kind] = decs
}

// snapshot copies one document's lines and decorations for rendering.
func (s *docStore) snapshot(uri protocol.DocumentURI) ([]string, []hintsync.Decoration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.lines[uri]
	if !ok {
		return nil, nil
	}

	var decs []hintsync.Decoration
	for _, kind := range hintsync.Kinds() {
		decs = append(decs, s.decs[uri][kind]...)
	}

	return append([]string(nil), lines...), decs
}
