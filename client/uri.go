package client

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"
)

// URIToPath converts a document URI to a file system path.
func URIToPath(uri protocol.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		// Fallback: strip file:// prefix
		return strings.TrimPrefix(string(uri), "file://")
	}

	if u.Scheme == "file" {
		return u.Path
	}

	return string(uri)
}

// PathToURI converts a file system path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI("file://" + path)
}

// fullRange computes the whole-document range used for hint requests.
// Character offsets are counted in runes, which matches UTF-16 code units
// for everything outside the astral planes.
func fullRange(text string) protocol.Range {
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]

	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End: protocol.Position{
			Line:      uint32(len(lines) - 1),       //nolint:gosec // G115: line counts are small
			Character: uint32(len([]rune(last))),    //nolint:gosec // G115: column counts are small
		},
	}
}
