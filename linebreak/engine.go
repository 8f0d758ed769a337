package linebreak

import "fmt"

// LineResult is one entry of a formatted paragraph's result: the
// breakpoint chosen to end a line, together with the metrics computed
// for the line that ends there.
type LineResult struct {
	// BreakAtomIndex is the index, in the paragraph's atom sequence, of
	// the atom chosen as this line's break.
	BreakAtomIndex int
	AdjustRatio    float64
	TotalDemerits  int64
	Fitness        FitnessClass
}

// Result is the outcome of formatting a paragraph: an ordered sequence
// of line breaks plus enough bookkeeping to drive a Writer.
type Result struct {
	lines []LineResult
	atoms []Atom
}

// NumberOfLines returns the number of lines in the formatted result.
func (r *Result) NumberOfLines() int {
	if r == nil {
		return 0
	}
	return len(r.lines)
}

// AdjustRatio returns the adjustment ratio used for the given 1-based
// line number, or RatioPlusInfinity if out of range.
func (r *Result) AdjustRatio(line int) float64 {
	lr, ok := r.lineAt(line)
	if !ok {
		return RatioPlusInfinity
	}
	return lr.AdjustRatio
}

// TotalDemerits returns the cumulative demerits through the given
// 1-based line number, or demeritsInfinity if out of range.
func (r *Result) TotalDemerits(line int) int64 {
	lr, ok := r.lineAt(line)
	if !ok {
		return demeritsInfinity
	}
	return lr.TotalDemerits
}

// FitnessClassOf returns the fitness class of the given 1-based line
// number, or fitnessMax if out of range.
func (r *Result) FitnessClassOf(line int) FitnessClass {
	lr, ok := r.lineAt(line)
	if !ok {
		return fitnessMax
	}
	return lr.Fitness
}

func (r *Result) lineAt(line int) (LineResult, bool) {
	if r == nil || line < 1 || line > len(r.lines) {
		return LineResult{}, false
	}
	return r.lines[line-1], true
}

// Debug returns one diagnostic line per formatted line, in the style of
// the breakpoint trace troff's PRINT_BP dump produces: the atom index
// chosen as the break, its adjustment ratio and badness, the cumulative
// demerits through that line, and its fitness class. It is pure data, no
// I/O — callers decide whether and where to print it.
func (r *Result) Debug() []string {
	if r == nil {
		return nil
	}
	lines := make([]string, len(r.lines))
	for i, lr := range r.lines {
		lines[i] = fmt.Sprintf(
			"line %d: break@%d ratio=%.3f badness=%.1f demerits=%d fitness=%s",
			i+1, lr.BreakAtomIndex, lr.AdjustRatio, computeBadness(lr.AdjustRatio),
			lr.TotalDemerits, lr.Fitness,
		)
	}
	return lines
}

// Format runs the Knuth-Plass forward sweep over the paragraph's atom
// sequence and reconstructs the optimal break sequence for cfg. The
// paragraph must have had Finish called on it. Re-formatting the same
// paragraph with a different Config is allowed and rebuilds the
// breakpoint graph from scratch; it does not mutate the atom sequence.
func (p *Paragraph) Format(cfg Config) (*Result, error) {
	if !p.finished {
		return nil, ErrNotFinished
	}
	if len(p.atoms) == 0 {
		return nil, ErrEmptyParagraph
	}

	nonAdjacent := cfg.NonAdjacentFitnessDemerits
	if !cfg.UseFitnessClass {
		nonAdjacent = 0
	}

	nodes := []breakNode{{
		atomIndex:   -1,
		lineNumber:  0,
		fitness:     fitnessMax,
		predecessor: -1,
	}}
	active := []int{0}

	var W, Y, Z int

	for i := range p.atoms {
		c := p.atoms[i]
		if legalBreakAt(p.atoms, i) {
			var bestPred [4]int
			var bestDemerits [4]int64
			var bestRatio [4]float64
			var haveBest [4]bool
			for k := range bestDemerits {
				bestDemerits[k] = demeritsInfinity
			}

			forced := c.IsForcedBreak()
			stillActive := active[:0:0]

			for _, aIdx := range active {
				a := &nodes[aIdx]
				m := computeLineMetrics(p.atoms, a, i, W, Y, Z, cfg.LineLength, cfg.Tolerance)

				if !(forced || m.deactivate) {
					stillActive = append(stillActive, aIdx)
				}

				if !m.feasible {
					continue
				}

				badness := computeBadness(m.ratio)
				dem := computeDemerits(badness, c.penalty(), a.fitnessFlagged(p.atoms), c.Flagged, cfg)
				dem += int64(adjacencyPenalty(a.fitness, m.fitness, nonAdjacent))

				total := a.totalDemerits + dem
				f := int(m.fitness)
				if !haveBest[f] || total < bestDemerits[f] {
					haveBest[f] = true
					bestDemerits[f] = total
					bestPred[f] = aIdx
					bestRatio[f] = m.ratio
				}
			}

			active = stillActive

			minTotal := demeritsInfinity
			for f := range bestDemerits {
				if haveBest[f] && bestDemerits[f] < minTotal {
					minTotal = bestDemerits[f]
				}
			}

			if minTotal < demeritsInfinity {
				threshold := minTotal + int64(nonAdjacent)
				for f := range bestDemerits {
					if !haveBest[f] || bestDemerits[f] > threshold {
						continue
					}
					pred := bestPred[f]
					nodes = append(nodes, breakNode{
						atomIndex:     i,
						lineNumber:    nodes[pred].lineNumber + 1,
						fitness:       FitnessClass(f),
						cumWidth:      W,
						cumStretch:    Y,
						cumShrink:     Z,
						ratio:         bestRatio[f],
						totalDemerits: bestDemerits[f],
						predecessor:   pred,
					})
					active = append(active, len(nodes)-1)
				}
			}

			if len(active) == 0 {
				return reconstructPartial(p.atoms, nodes), &FormatError{Err: ErrNoFeasibleBreaks, AtomIndex: i}
			}
		}

		if c.penalty() <= 0 {
			W += c.Width
		}
		Y += c.Stretch
		Z += c.Shrink
	}

	return reconstructPartial(p.atoms, nodes), nil
}

// fitnessFlagged 报告该断点节点对应的原子是否为带标记罚值；起始伪节点
// （atomIndex < 0）恒为 false。
func (n *breakNode) fitnessFlagged(atoms []Atom) bool {
	if n.atomIndex < 0 {
		return false
	}
	return atoms[n.atomIndex].Flagged
}

// reconstructPartial 实现 §4.5：从最后插入的节点（即终止于段落末尾强制
// 断点的那个节点）沿 predecessor 链回溯，产出正向排列的结果数组。
func reconstructPartial(atoms []Atom, nodes []breakNode) *Result {
	if len(nodes) == 0 {
		return &Result{atoms: atoms}
	}
	final := &nodes[len(nodes)-1]
	if final.atomIndex < 0 {
		return &Result{atoms: atoms}
	}

	lines := make([]LineResult, final.lineNumber)
	for n := final; n.atomIndex >= 0; n = &nodes[n.predecessor] {
		lines[n.lineNumber-1] = LineResult{
			BreakAtomIndex: n.atomIndex,
			AdjustRatio:    n.ratio,
			TotalDemerits:  n.totalDemerits,
			Fitness:        n.fitness,
		}
	}
	return &Result{lines: lines, atoms: atoms}
}
