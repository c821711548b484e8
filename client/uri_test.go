package client

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"
)

func TestURIToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		uri      protocol.DocumentURI
		expected string
	}{
		{
			name:     "standard file URI",
			uri:      "file:///home/user/main.go",
			expected: "/home/user/main.go",
		},
		{
			name:     "URI with spaces",
			uri:      "file:///home/user/my%20project/main.go",
			expected: "/home/user/my project/main.go",
		},
		{
			name:     "non-file URI passes through",
			uri:      "untitled:Untitled-1",
			expected: "untitled:Untitled-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := URIToPath(tt.uri)
			if result != tt.expected {
				t.Errorf("URIToPath(%q) = %q, want %q", tt.uri, result, tt.expected)
			}
		})
	}
}

func TestPathToURI(t *testing.T) {
	t.Parallel()

	got := PathToURI("/home/user/main.go")
	want := protocol.DocumentURI("file:///home/user/main.go")

	if got != want {
		t.Errorf("PathToURI() = %q, want %q", got, want)
	}
}

func TestFullRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want protocol.Range
	}{
		{
			name: "empty document",
			text: "",
			want: protocol.Range{},
		},
		{
			name: "single line without newline",
			text: "x := 1",
			want: protocol.Range{End: protocol.Position{Line: 0, Character: 6}},
		},
		{
			name: "trailing newline ends on empty line",
			text: "x := 1\n",
			want: protocol.Range{End: protocol.Position{Line: 1, Character: 0}},
		},
		{
			name: "multibyte runes counted once",
			text: "s := \"héllo\"",
			want: protocol.Range{End: protocol.Position{Line: 0, Character: 12}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fullRange(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fullRange() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
