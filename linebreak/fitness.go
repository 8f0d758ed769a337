package linebreak

// FitnessClass 把一行的调整比例归入四个“松紧”桶之一，用于惩罚相邻两行
// 松紧差异过大的观感（例如一行被拉得很松、紧接着一行被压得很紧）。
type FitnessClass int

const (
	// FitnessTight 表示该行被压缩（调整比例 < -0.5）。
	FitnessTight FitnessClass = iota
	// FitnessNormal 表示该行的调整比例落在 [-0.5, 0.5] 之间。
	FitnessNormal
	// FitnessLoose 表示该行被拉伸（调整比例落在 (0.5, 1] 之间）。
	FitnessLoose
	// FitnessVeryLoose 表示该行被拉伸得超过一个胶水单位（调整比例 > 1）。
	FitnessVeryLoose
	// fitnessMax 是一个不对应真实行的哨兵值，只在算法起始的伪断点节点
	// 上使用，代表"尚无前一行可比较"。它不参与、也不会触发相邻档位的
	// 额外劣质度。
	fitnessMax
)

// String 实现 fmt.Stringer，主要用于调试输出。
func (f FitnessClass) String() string {
	switch f {
	case FitnessTight:
		return "tight"
	case FitnessNormal:
		return "normal"
	case FitnessLoose:
		return "loose"
	case FitnessVeryLoose:
		return "very-loose"
	case fitnessMax:
		return "start"
	default:
		return "unknown"
	}
}

// classify 把一个调整比例映射到对应的松紧档位。
func classify(ratio float64) FitnessClass {
	switch {
	case ratio < -0.5:
		return FitnessTight
	case ratio <= 0.5:
		return FitnessNormal
	case ratio <= 1.0:
		return FitnessLoose
	default:
		return FitnessVeryLoose
	}
}

// adjacencyPenalty 返回相邻两行松紧档位差异过大时应追加的额外劣质度。
// prev 为 fitnessMax（段落起始的伪节点）时，不存在“上一行”可比较，
// 恒不追加惩罚——这是对起始伪节点的显式豁免，而非对四个真实档位
// 两两比较逻辑的特例。
func adjacencyPenalty(prev, cur FitnessClass, nonAdjacentDemerits int) int {
	if prev == fitnessMax {
		return 0
	}
	diff := int(prev) - int(cur)
	if diff < 0 {
		diff = -diff
	}
	if diff >= 2 {
		return nonAdjacentDemerits
	}
	return 0
}
