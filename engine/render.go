package engine

import (
	"github.com/hintsync/hintsync"
)

// decorations maps one category's subset of hints to host decorations.
// Parameter hints sit before their range as "name:"; type hints sit after
// their range as ": T".
func decorations(hints []hintsync.InlayHint, kind hintsync.InlayHintKind) []hintsync.Decoration {
	var decs []hintsync.Decoration

	for _, h := range hints {
		if h.Kind != kind {
			continue
		}

		switch kind {
		case hintsync.KindParameter:
			decs = append(decs, hintsync.Decoration{
				Range:  h.Range,
				Label:  h.Label + ":",
				Before: true,
			})
		case hintsync.KindType:
			decs = append(decs, hintsync.Decoration{
				Range: h.Range,
				Label: ": " + h.Label,
			})
		}
	}

	return decs
}
