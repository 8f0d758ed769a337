package canvasrenderer

import (
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/bgarrigues-troff/paragraph/layout"
)

// lineCollector implements linebreak.Writer, accumulating the words and
// spaces of the current line into a layout.TextLine each time the engine
// calls BreakHere.
type lineCollector struct {
	face  *canvas.FontFace
	lines []layout.TextLine

	current strings.Builder
	width   int
	// pendingSpace is the width of spaces written since the last word; it
	// joins width only when another word follows, so trailing spaces (like
	// the trailing blanks trimmed from Content) do not count.
	pendingSpace int
}

func newLineCollector(face *canvas.FontFace) *lineCollector {
	return &lineCollector{face: face}
}

func (c *lineCollector) WriteWord(word any) {
	w, ok := word.(shapedWord)
	if !ok {
		return
	}
	c.current.WriteString(w.text)
	c.width += c.pendingSpace + w.Width()
	c.pendingSpace = 0
}

func (c *lineCollector) WriteSpace(width int) {
	c.current.WriteByte(' ')
	c.pendingSpace += width
}

func (c *lineCollector) BreakHere(lineNumber int) {
	c.lines = append(c.lines, layout.TextLine{
		Content: strings.TrimRight(c.current.String(), " "),
		Width:   fromMilliUnits(c.width),
	})
	c.current.Reset()
	c.width = 0
	c.pendingSpace = 0
}
