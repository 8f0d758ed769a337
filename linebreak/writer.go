package linebreak

// Writer is the read-out contract the engine offers a renderer: a
// streaming walk over a formatted paragraph's atoms invokes these
// callbacks in order.
type Writer interface {
	// WriteWord is called for every box encountered, in the order the
	// atoms were appended. It is also called for an optional-hyphen
	// penalty's carried glyph when that penalty is the chosen break for
	// the current line.
	WriteWord(word any)

	// WriteSpace is called for every glue encountered that is not the
	// current line's chosen break, with the effective (stretched or
	// shrunk) width for the line currently being emitted.
	WriteSpace(width int)

	// BreakHere is called when the walk reaches the atom chosen to end
	// lineNumber.
	BreakHere(lineNumber int)
}

// ErrNilWriter is returned by WriteText when sink is nil.
var ErrNilWriter = errWriterMisuse("linebreak: WriteText 调用时 sink 为 nil")

type errWriterMisuse string

func (e errWriterMisuse) Error() string { return string(e) }

// WriteText drives sink over the paragraph's atoms using the break
// positions recorded in r. It must be called after a successful
// Format; r's lines are assumed to be in ascending atom-index order.
func (p *Paragraph) WriteText(r *Result, sink Writer) error {
	if sink == nil {
		return ErrNilWriter
	}
	if r == nil || len(r.lines) == 0 {
		return ErrNotFormatted
	}

	lineIdx := 0
	ratio := r.lines[0].AdjustRatio

	for i, a := range p.atoms {
		switch a.Kind {
		case KindBox:
			sink.WriteWord(a.Word)
		case KindGlue:
			isBreak := lineIdx < len(r.lines) && r.lines[lineIdx].BreakAtomIndex == i
			if !isBreak {
				sink.WriteSpace(effectiveGlueWidth(a, ratio))
			}
		case KindPenalty:
			// 未被选中的罚值不产生任何可见输出。
		}

		if lineIdx < len(r.lines) && r.lines[lineIdx].BreakAtomIndex == i {
			if a.Kind == KindPenalty && a.Cost > 0 && a.Word != nil {
				sink.WriteWord(a.Word)
			}
			sink.BreakHere(lineIdx + 1)
			lineIdx++
			if lineIdx < len(r.lines) {
				ratio = r.lines[lineIdx].AdjustRatio
			}
		}
	}

	return nil
}

// effectiveGlueWidth computes a glue's rendered width given the
// adjustment ratio of the line it falls on: w + r·stretch when r ≥ 0,
// w + r·shrink when r < 0 (r is negative there, so the glue narrows).
func effectiveGlueWidth(a Atom, ratio float64) int {
	if ratio >= 0 {
		return a.Width + int(ratio*float64(a.Stretch))
	}
	return a.Width + int(ratio*float64(a.Shrink))
}
