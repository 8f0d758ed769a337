package canvasrenderer

import (
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/bgarrigues-troff/paragraph/linebreak"
)

// shapedWord adapts a run of shaped text to linebreak.WordBox, measuring
// its width via the canvas font face that will eventually draw it and
// deriving the space that follows it from the word's own trailing rune,
// the same punctuation-sensitive rule the algorithm's original word
// provider used.
type shapedWord struct {
	text string
	face *canvas.FontFace
}

func newShapedWord(text string, face *canvas.FontFace) shapedWord {
	return shapedWord{text: text, face: face}
}

func (w shapedWord) Width() int {
	return toMilliUnits(w.face.TextWidth(w.text))
}

func (w shapedWord) TrailingGlue() (width, stretch, shrink int) {
	spaceWidth := toMilliUnits(w.face.TextWidth(" "))
	if spaceWidth <= 0 {
		spaceWidth = 1
	}
	switch trailingRune(w.text) {
	case ',':
		return spaceWidth, spaceWidth * 2 / 3, spaceWidth / 3
	case ';':
		return spaceWidth, spaceWidth * 2 / 3, spaceWidth / 6
	case '.', '!', '?':
		return spaceWidth * 4 / 3, spaceWidth, spaceWidth / 6
	default:
		return spaceWidth, spaceWidth / 2, spaceWidth / 3
	}
}

func trailingRune(s string) rune {
	if s == "" {
		return 0
	}
	r := []rune(s)
	return r[len(r)-1]
}

// milliUnitsPerMm scales the engine's integer atom widths so that a
// millimetre of real text carries enough precision for the Knuth-Plass
// arithmetic (which works in integers) without rounding whole words away.
const milliUnitsPerMm = 1000.0

func toMilliUnits(mm float64) int {
	v := int(mm*milliUnitsPerMm + 0.5)
	if v < 0 {
		return 0
	}
	return v
}

func fromMilliUnits(v int) float64 {
	return float64(v) / milliUnitsPerMm
}

// splitWords breaks content into runs separated by spaces and tabs,
// returning each explicit newline as its own "\n" token. knuthPlassWrap
// splits content on newlines before calling it, so the segments it
// passes here contain no newline.
func splitWords(content string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for _, r := range content {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			words = append(words, "\n")
			continue
		}
		if r == ' ' || r == '\t' {
			flush()
			continue
		}
		b.WriteRune(r)
	}
	flush()
	return words
}
