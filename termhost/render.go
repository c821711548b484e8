package termhost

import (
	"sort"

	"github.com/hintsync/hintsync"
)

// insertion is one label to splice into a line at a rune column.
type insertion struct {
	col    int
	label  string
	before bool
}

// renderLines splices decoration labels into document text. Before-hints
// anchor at the start of their range, after-hints at the end. Insertions on
// a line are applied right-to-left so earlier columns stay valid.
func renderLines(lines []string, decs []hintsync.Decoration, styles *Styles, color bool) []string {
	byLine := make(map[int][]insertion)

	for _, d := range decs {
		var line, col uint32
		if d.Before {
			line, col = d.Range.Start.Line, d.Range.Start.Character
		} else {
			line, col = d.Range.End.Line, d.Range.End.Character
		}

		byLine[int(line)] = append(byLine[int(line)], insertion{
			col:    int(col),
			label:  d.Label,
			before: d.Before,
		})
	}

	out := make([]string, len(lines))

	for i, line := range lines {
		ins := byLine[i]
		if len(ins) == 0 {
			out[i] = line

			continue
		}

		sort.SliceStable(ins, func(a, b int) bool {
			return ins[a].col > ins[b].col
		})

		runes := []rune(line)
		for _, in := range ins {
			col := in.col
			if col > len(runes) {
				col = len(runes)
			}

			label := in.label
			if color {
				if in.before {
					label = styles.ParameterHint.Render(label)
				} else {
					label = styles.TypeHint.Render(label)
				}
			}

			spliced := make([]rune, 0, len(runes)+len(label))
			spliced = append(spliced, runes[:col]...)
			spliced = append(spliced, []rune(label)...)
			spliced = append(spliced, runes[col:]...)
			runes = spliced
		}

		out[i] = string(runes)
	}

	return out
}
