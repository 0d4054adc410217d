package board

import (
	"strconv"
	"strings"
)

// renderBoard is the Renderer component (§4.2): a pure function from a
// consistent snapshot (rows, cols, cards) plus a viewing player to the
// textual format
//
//	<rows>x<cols>
//	<cell-1>
//	...
//	<cell-N>
//
// with one line per row-major cell and no trailing newline. It never
// inspects any player's turn state — only the card array — so it has no
// way to observe an inconsistent board as long as the caller holds the
// board mutex for the duration of the call.
func renderBoard(rows, cols int, cards []Card, viewer string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(rows))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(cols))
	for _, c := range cards {
		b.WriteByte('\n')
		b.WriteString(renderCell(c, viewer))
	}
	return b.String()
}

func renderCell(c Card, viewer string) string {
	switch {
	case !c.OnBoard:
		return "none"
	case !c.FaceUp:
		return "down"
	case c.controlledBy(viewer):
		return "my " + c.Value
	default:
		return "up " + c.Value
	}
}
